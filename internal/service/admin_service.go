package service

import (
	"context"
	"time"
	"unicode/utf8"

	"marafon/internal/domain"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

// AdminService serves the admin panel reads and the audit log.
type AdminService struct {
	repo     domain.Repository
	location *time.Location
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewAdminService(repo domain.Repository, location *time.Location, logger *zerolog.Logger) *AdminService {
	if location == nil {
		location = time.UTC
	}
	return &AdminService{
		repo:     repo,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// LogAction appends an audit entry; failures are logged only.
func (s *AdminService) LogAction(ctx context.Context, adminID int64, actionType string, target *int64, details string) {
	action := &models.AdminAction{
		AdminID:      adminID,
		ActionType:   actionType,
		TargetUserID: target,
		Details:      TruncateRunes(details, models.AuditDetailsLimit),
		CreatedAt:    s.now(),
	}
	if err := s.repo.AppendAuditLog(ctx, action); err != nil {
		s.logger.Error().Err(err).Int64("admin_id", adminID).Str("action", actionType).Msg("failed to append audit log")
	}
}

// Statistics are computed by the store on every call; "today" and "this
// month" follow the configured timezone.
func (s *AdminService) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats, err := s.repo.GetStatistics(ctx, s.now().In(s.location))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get statistics")
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := s.repo.ListUsersForExport(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list export rows")
		return nil, err
	}
	return rows, nil
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
