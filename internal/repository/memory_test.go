package repository

import (
	"context"
	"testing"
	"time"

	"marafon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{
			UserID:      123,
			CurrentStep: "awaiting_age",
			Data:        models.FlowData{FullName: "Aziz Aliyev"},
		}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "awaiting_age", got.CurrentStep)
		assert.Equal(t, "Aziz Aliyev", got.Data.FullName)
	})

	t.Run("ReturnedStateIsCopy", func(t *testing.T) {
		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		got.CurrentStep = "mutated"

		again, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, "awaiting_age", again.CurrentStep)
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.ClearState(ctx, 123))
		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: "awaiting_name"}))
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 2, CurrentStep: "awaiting_weight"}))

		a, _ := repo.GetState(ctx, 1)
		b, _ := repo.GetState(ctx, 2)
		assert.Equal(t, "awaiting_name", a.CurrentStep)
		assert.Equal(t, "awaiting_weight", b.CurrentStep)
	})
}

func TestMemoryStateRepository_Expiry(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 1, CurrentStep: "awaiting_phone"}))

	now = now.Add(59 * time.Minute)
	got, err := repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = repo.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStateRepository_RateLimit(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := repo.CheckRateLimit(ctx, 1, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _ = repo.CheckRateLimit(ctx, 2, 3, time.Minute)
	assert.True(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, err = repo.CheckRateLimit(ctx, 1, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
