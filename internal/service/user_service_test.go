package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marafon/internal/database"
	"marafon/internal/domain"
	"marafon/internal/events"
	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUserService(repo *MockRepository, pub domain.EventPublisher) *UserService {
	logger := zerolog.Nop()
	return NewUserService(repo, []int64{1, 2, 1}, pub, &logger)
}

func TestUserService_IsAdmin(t *testing.T) {
	s := newTestUserService(new(MockRepository), nil)

	assert.True(t, s.IsAdmin(1))
	assert.True(t, s.IsAdmin(2))
	assert.False(t, s.IsAdmin(3))
	assert.Equal(t, []int64{1, 2}, s.AdminIDs())
}

func TestUserService_GetUser(t *testing.T) {
	repo := new(MockRepository)
	s := newTestUserService(repo, nil)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		user := &models.UserProfile{UserID: 10, FullName: "Ali"}
		repo.On("GetUser", ctx, int64(10)).Return(user, nil).Once()

		got, err := s.GetUser(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo.On("GetUser", ctx, int64(11)).Return(nil, database.ErrNotFound).Once()

		got, err := s.GetUser(ctx, 11)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Error", func(t *testing.T) {
		repo.On("GetUser", ctx, int64(12)).Return(nil, errors.New("disk I/O")).Once()

		got, err := s.GetUser(ctx, 12)
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishesEvent", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestUserService(repo, pub)
		profile := &models.UserProfile{UserID: 10, FullName: "Ali", Region: "Toshkent"}

		repo.On("UpsertUser", ctx, profile).Return(nil).Once()
		pub.On("PublishJSON", events.EventUserRegistered, mock.MatchedBy(func(p events.UserEventPayload) bool {
			return p.UserID == 10 && p.Region == "Toshkent"
		})).Return(nil).Once()

		require.NoError(t, s.Register(ctx, profile))
		assert.False(t, profile.RegisteredAt.IsZero())
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("KeepsGivenTimestamp", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestUserService(repo, nil)
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		profile := &models.UserProfile{UserID: 10, RegisteredAt: at}

		repo.On("UpsertUser", ctx, profile).Return(nil).Once()
		require.NoError(t, s.Register(ctx, profile))
		assert.Equal(t, at, profile.RegisteredAt)
	})

	t.Run("StoreError", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestUserService(repo, pub)
		profile := &models.UserProfile{UserID: 10}

		repo.On("UpsertUser", ctx, profile).Return(errors.New("locked")).Once()
		assert.Error(t, s.Register(ctx, profile))
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})
}

func TestUserService_ListUserIDs(t *testing.T) {
	repo := new(MockRepository)
	s := newTestUserService(repo, nil)
	ctx := context.Background()

	repo.On("ListUserIDs", ctx).Return([]int64{5, 3, 5, 7, 3}, nil).Once()

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 7}, ids)
}

func TestUserService_RecentUsers(t *testing.T) {
	repo := new(MockRepository)
	s := newTestUserService(repo, nil)
	ctx := context.Background()

	users := []*models.UserProfile{{UserID: 1}, {UserID: 2}}
	repo.On("ListRecentUsers", ctx, models.RecentUsersLimit).Return(users, nil).Once()

	got, err := s.RecentUsers(ctx, models.RecentUsersLimit)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
