package service

import (
	"context"
	"time"

	"marafon/internal/domain"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

// StateService stores where each user is in the funnel. A state without a
// step means "no active flow" and is never persisted.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &StateService{stateRepo: stateRepo, logger: logger}
}

func (s *StateService) GetUserState(ctx context.Context, userID int64) (*models.UserState, error) {
	state, err := s.stateRepo.GetState(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user state")
		return nil, err
	}
	if state == nil || state.CurrentStep == "" {
		return nil, nil
	}
	return state, nil
}

// SetUserState saves the step with the collected data; an empty step clears
// the user's state instead.
func (s *StateService) SetUserState(ctx context.Context, userID int64, step string, data models.FlowData) error {
	if step == "" {
		return s.ClearUserState(ctx, userID)
	}

	state := &models.UserState{
		UserID:      userID,
		CurrentStep: step,
		Data:        data,
		UpdatedAt:   time.Now(),
	}
	if err := s.stateRepo.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("step", step).Msg("failed to set user state")
		return err
	}
	return nil
}

func (s *StateService) ClearUserState(ctx context.Context, userID int64) error {
	if err := s.stateRepo.ClearState(ctx, userID); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear user state")
		return err
	}
	return nil
}

// CheckRateLimit reports whether the user may send another message. A
// non-positive limit disables the check.
func (s *StateService) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	return s.stateRepo.CheckRateLimit(ctx, userID, limit, window)
}
