package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marafon/internal/models"
)

func (db *DB) AppendAuditLog(ctx context.Context, action *models.AdminAction) error {
	createdAt := action.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var target interface{}
	if action.TargetUserID != nil {
		target = *action.TargetUserID
	}

	res, err := db.ExecContext(ctx, `
        INSERT INTO admin_actions (admin_id, action_type, target_user_id, details, created_at)
        VALUES (@admin_id, @action_type, @target_user_id, @details, @created_at)`,
		sql.Named("admin_id", action.AdminID),
		sql.Named("action_type", action.ActionType),
		sql.Named("target_user_id", target),
		sql.Named("details", action.Details),
		sql.Named("created_at", createdAt.UTC()),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		action.ID = id
	}
	action.CreatedAt = createdAt
	return nil
}

// ListAuditLog returns the newest audit entries first.
func (db *DB) ListAuditLog(ctx context.Context, limit int) ([]*models.AdminAction, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, admin_id, action_type, target_user_id, details, created_at
        FROM admin_actions
        ORDER BY id DESC
        LIMIT @limit`, sql.Named("limit", limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	var actions []*models.AdminAction
	for rows.Next() {
		var (
			a      models.AdminAction
			target sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.AdminID, &a.ActionType, &target, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		if target.Valid {
			v := target.Int64
			a.TargetUserID = &v
		}
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}
