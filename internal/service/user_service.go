package service

import (
	"context"
	"errors"
	"time"

	"marafon/internal/database"
	"marafon/internal/domain"
	"marafon/internal/events"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo     domain.Repository
	events   domain.EventPublisher
	logger   *zerolog.Logger
	adminIDs []int64
	admins   map[int64]bool
}

func NewUserService(repo domain.Repository, adminIDs []int64, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	admins := make(map[int64]bool, len(adminIDs))
	ids := make([]int64, 0, len(adminIDs))
	for _, id := range adminIDs {
		if admins[id] {
			continue
		}
		admins[id] = true
		ids = append(ids, id)
	}

	return &UserService{
		repo:     repo,
		events:   eventBus,
		logger:   logger,
		adminIDs: ids,
		admins:   admins,
	}
}

func (s *UserService) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

func (s *UserService) AdminIDs() []int64 {
	out := make([]int64, len(s.adminIDs))
	copy(out, s.adminIDs)
	return out
}

// GetUser returns nil without error when the user is not registered.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
		return nil, err
	}
	return user, nil
}

func (s *UserService) Register(ctx context.Context, profile *models.UserProfile) error {
	if profile.RegisteredAt.IsZero() {
		profile.RegisteredAt = time.Now()
	}
	if err := s.repo.UpsertUser(ctx, profile); err != nil {
		s.logger.Error().Err(err).Int64("user_id", profile.UserID).Msg("failed to save user")
		return err
	}

	if s.events != nil {
		payload := events.UserEventPayload{UserID: profile.UserID, Region: profile.Region, At: time.Now()}
		if err := s.events.PublishJSON(events.EventUserRegistered, payload); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", profile.UserID).Msg("failed to publish user event")
		}
	}
	return nil
}

// ListUserIDs returns registered user ids without duplicates.
func (s *UserService) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list user ids")
		return nil, err
	}

	seen := make(map[int64]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func (s *UserService) RecentUsers(ctx context.Context, limit int) ([]*models.UserProfile, error) {
	users, err := s.repo.ListRecentUsers(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list recent users")
		return nil, err
	}
	return users, nil
}
