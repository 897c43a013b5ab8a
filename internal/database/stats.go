package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marafon/internal/models"
)

// StartOfDay and StartOfMonth are computed in now's location and converted to
// UTC, the zone timestamps are stored in.
func StartOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UTC()
}

func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).UTC()
}

// GetStatistics aggregates users and approved revenue relative to now.
func (db *DB) GetStatistics(ctx context.Context, now time.Time) (*models.Statistics, error) {
	dayStart := sql.Named("day_start", StartOfDay(now))
	monthStart := sql.Named("month_start", StartOfMonth(now))
	approved := sql.Named("approved", string(models.PaymentApproved))

	var stats models.Statistics

	err := db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN registered_at >= @day_start THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN registered_at >= @month_start THEN 1 ELSE 0 END), 0)
        FROM users`, dayStart, monthStart).
		Scan(&stats.TotalUsers, &stats.TodayUsers, &stats.MonthUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	err = db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = @approved THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = @approved THEN amount ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = @approved AND decided_at >= @day_start THEN amount ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status = @approved AND decided_at >= @month_start THEN amount ELSE 0 END), 0)
        FROM payments`, approved, dayStart, monthStart).
		Scan(
			&stats.TotalPayments,
			&stats.PendingPayments,
			&stats.ApprovedPayments,
			&stats.RejectedPayments,
			&stats.TotalRevenue,
			&stats.TodayRevenue,
			&stats.MonthRevenue,
		)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
        SELECT course_key, COUNT(*), COALESCE(SUM(amount), 0)
        FROM payments
        WHERE status = @approved
        GROUP BY course_key
        ORDER BY course_key`, approved)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs models.CourseStat
		if err := rows.Scan(&cs.CourseKey, &cs.Count, &cs.Revenue); err != nil {
			return nil, err
		}
		stats.CourseStats = append(stats.CourseStats, cs)
	}
	return &stats, rows.Err()
}
