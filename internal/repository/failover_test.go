package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *mockRepo) SetState(ctx context.Context, state *models.UserState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockRepo) ClearState(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, userID, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverStateRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := NewMemoryStateRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStateRepository(primary, fallback, &logger)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimaryHealthy", func(t *testing.T) {
		state := &models.UserState{UserID: 1, CurrentStep: "awaiting_name"}
		primary.On("GetState", ctx, int64(1)).Return(state, nil).Once()

		got, err := repo.GetState(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, state, got)
		assert.False(t, repo.IsDegraded())
	})

	t.Run("PrimaryFailsUsesFallback", func(t *testing.T) {
		state := &models.UserState{UserID: 2, CurrentStep: "awaiting_age"}
		primary.On("SetState", ctx, state).Return(errors.New("connection refused")).Once()

		require.NoError(t, repo.SetState(ctx, state))
		assert.True(t, repo.IsDegraded())

		got, err := repo.GetState(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "awaiting_age", got.CurrentStep)
	})

	t.Run("RateLimitFallsBack", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, 2, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("RecoversAfterInterval", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("GetState", ctx, int64(3)).Return(nil, nil).Once()

		got, err := repo.GetState(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, repo.IsDegraded())
	})

	t.Run("ClearRemovesFallbackCopy", func(t *testing.T) {
		primary.On("ClearState", ctx, int64(2)).Return(nil).Once()
		require.NoError(t, repo.ClearState(ctx, 2))

		got, err := fallback.GetState(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	primary.AssertExpectations(t)
}
