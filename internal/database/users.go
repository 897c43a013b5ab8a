package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marafon/internal/models"
)

const userColumns = `user_id, phone, full_name, age, region, height, weight, registered_at, is_subscribed`

// UpsertUser inserts a profile or overwrites the mutable fields of an existing
// one. The first registration time is kept.
func (db *DB) UpsertUser(ctx context.Context, user *models.UserProfile) error {
	query := `INSERT INTO users (` + userColumns + `)
              VALUES (@user_id, @phone, @full_name, @age, @region, @height, @weight, @registered_at, @is_subscribed)
              ON CONFLICT(user_id) DO UPDATE SET
                phone = excluded.phone,
                full_name = excluded.full_name,
                age = excluded.age,
                region = excluded.region,
                height = excluded.height,
                weight = excluded.weight,
                is_subscribed = excluded.is_subscribed`

	registeredAt := user.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	_, err := db.ExecContext(ctx, query,
		sql.Named("user_id", user.UserID),
		sql.Named("phone", user.Phone),
		sql.Named("full_name", user.FullName),
		sql.Named("age", user.Age),
		sql.Named("region", user.Region),
		sql.Named("height", user.Height),
		sql.Named("weight", user.Weight),
		sql.Named("registered_at", registeredAt.UTC()),
		sql.Named("is_subscribed", user.IsSubscribed),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.UserID, err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = @user_id`
	row := db.QueryRowContext(ctx, query, sql.Named("user_id", userID))

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// ListUserIDs returns every registered user id once.
func (db *DB) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListRecentUsers returns the newest registrations first.
func (db *DB) ListRecentUsers(ctx context.Context, limit int) ([]*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users
              ORDER BY registered_at DESC, user_id DESC
              LIMIT @limit`
	rows, err := db.QueryContext(ctx, query, sql.Named("limit", limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*models.UserProfile, error) {
	var user models.UserProfile
	err := s.Scan(
		&user.UserID,
		&user.Phone,
		&user.FullName,
		&user.Age,
		&user.Region,
		&user.Height,
		&user.Weight,
		&user.RegisteredAt,
		&user.IsSubscribed,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
