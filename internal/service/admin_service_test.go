package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminService_LogAction(t *testing.T) {
	repo := new(MockRepository)
	logger := zerolog.Nop()
	s := NewAdminService(repo, time.UTC, &logger)
	ctx := context.Background()
	target := int64(10)

	long := strings.Repeat("ж", 150)
	repo.On("AppendAuditLog", ctx, mock.MatchedBy(func(a *models.AdminAction) bool {
		return a.AdminID == 1 &&
			a.ActionType == models.ActionSendMessage &&
			*a.TargetUserID == 10 &&
			len([]rune(a.Details)) == models.AuditDetailsLimit
	})).Return(nil).Once()

	s.LogAction(ctx, 1, models.ActionSendMessage, &target, long)
	repo.AssertExpectations(t)

	repo.On("AppendAuditLog", ctx, mock.Anything).Return(errors.New("locked")).Once()
	assert.NotPanics(t, func() { s.LogAction(ctx, 1, models.ActionBroadcast, nil, "Sent to 3 users") })
}

func TestAdminService_StatisticsUsesLocation(t *testing.T) {
	repo := new(MockRepository)
	logger := zerolog.Nop()
	loc := time.FixedZone("UZT", 5*60*60)
	s := NewAdminService(repo, loc, &logger)
	fixed := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	stats := &models.Statistics{TotalUsers: 3}
	repo.On("GetStatistics", ctx, mock.MatchedBy(func(now time.Time) bool {
		return now.Location() == loc && now.Equal(fixed)
	})).Return(stats, nil).Once()

	got, err := s.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalUsers)
}

func TestAdminService_ExportRows(t *testing.T) {
	repo := new(MockRepository)
	logger := zerolog.Nop()
	s := NewAdminService(repo, nil, &logger)
	ctx := context.Background()

	repo.On("ListUsersForExport", ctx).Return(nil, errors.New("boom")).Once()
	_, err := s.ExportRows(ctx)
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "Сал", TruncateRunes("Салом", 3))
	assert.Equal(t, "", TruncateRunes("x", 0))
}
