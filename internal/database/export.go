package database

import (
	"context"
	"database/sql"
	"fmt"

	"marafon/internal/models"
)

// ListUsersForExport returns every user joined with each of their payments;
// users without payments appear once with empty payment columns.
func (db *DB) ListUsersForExport(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT u.user_id, u.phone, u.full_name, u.age, u.region, u.height, u.weight,
               u.registered_at, u.is_subscribed,
               p.course_key, p.amount, p.status, p.submitted_at
        FROM users u
        LEFT JOIN payments p ON p.user_id = u.user_id
        ORDER BY u.registered_at DESC, u.user_id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list export rows: %w", err)
	}
	defer rows.Close()

	var out []models.ExportRow
	for rows.Next() {
		var (
			r           models.ExportRow
			courseKey   sql.NullString
			amount      sql.NullInt64
			status      sql.NullString
			submittedAt sql.NullTime
		)
		err := rows.Scan(
			&r.UserID, &r.Phone, &r.FullName, &r.Age, &r.Region, &r.Height, &r.Weight,
			&r.RegisteredAt, &r.IsSubscribed,
			&courseKey, &amount, &status, &submittedAt,
		)
		if err != nil {
			return nil, err
		}
		r.CourseKey = courseKey.String
		r.Status = status.String
		if amount.Valid {
			v := amount.Int64
			r.Amount = &v
		}
		if submittedAt.Valid {
			t := submittedAt.Time
			r.SubmittedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
