package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marafon/internal/database"
	"marafon/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store implements the same gateway as database.DB on top of a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewStore(pool *pgxpool.Pool, logger *zerolog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const userColumns = `user_id, phone, full_name, age, region, height, weight, registered_at, is_subscribed`

func (s *Store) UpsertUser(ctx context.Context, user *models.UserProfile) error {
	registeredAt := user.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES (@user_id, @phone, @full_name, @age, @region, @height, @weight, @registered_at, @is_subscribed)
        ON CONFLICT (user_id) DO UPDATE SET
            phone = EXCLUDED.phone,
            full_name = EXCLUDED.full_name,
            age = EXCLUDED.age,
            region = EXCLUDED.region,
            height = EXCLUDED.height,
            weight = EXCLUDED.weight,
            is_subscribed = EXCLUDED.is_subscribed`,
		pgx.NamedArgs{
			"user_id":       user.UserID,
			"phone":         user.Phone,
			"full_name":     user.FullName,
			"age":           user.Age,
			"region":        user.Region,
			"height":        user.Height,
			"weight":        user.Weight,
			"registered_at": registeredAt,
			"is_subscribed": user.IsSubscribed,
		})
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", user.UserID, err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.UserProfile, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID})

	var u models.UserProfile
	err := row.Scan(&u.UserID, &u.Phone, &u.FullName, &u.Age, &u.Region, &u.Height, &u.Weight, &u.RegisteredAt, &u.IsSubscribed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan user ids: %w", err)
	}
	return ids, nil
}

func (s *Store) ListRecentUsers(ctx context.Context, limit int) ([]*models.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT `+userColumns+` FROM users
        ORDER BY registered_at DESC, user_id DESC
        LIMIT @limit`, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		var u models.UserProfile
		if err := rows.Scan(&u.UserID, &u.Phone, &u.FullName, &u.Age, &u.Region, &u.Height, &u.Weight, &u.RegisteredAt, &u.IsSubscribed); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

func (s *Store) InsertPayment(ctx context.Context, p *models.Payment) (int64, error) {
	submittedAt := p.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	kind := p.ReceiptKind
	if kind == "" {
		kind = models.ReceiptPhoto
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
        INSERT INTO payments (user_id, course_key, amount, status, receipt_file_id, receipt_kind, submitted_at)
        VALUES (@user_id, @course_key, @amount, @status, @receipt_file_id, @receipt_kind, @submitted_at)
        RETURNING id`,
		pgx.NamedArgs{
			"user_id":         p.UserID,
			"course_key":      p.CourseKey,
			"amount":          p.Amount,
			"status":          string(models.PaymentPending),
			"receipt_file_id": p.ReceiptFileID,
			"receipt_kind":    kind,
			"submitted_at":    submittedAt,
		}).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert payment for user %d: %w", p.UserID, err)
	}

	p.ID = id
	p.Status = models.PaymentPending
	p.ReceiptKind = kind
	p.SubmittedAt = submittedAt
	return id, nil
}

const paymentSelect = `
    SELECT p.id, p.user_id, p.course_key, p.amount, p.status,
           p.receipt_file_id, p.receipt_kind, p.submitted_at,
           p.decided_at, p.admin_id, p.rejection_reason,
           COALESCE(u.full_name, ''), COALESCE(u.phone, '')
    FROM payments p
    LEFT JOIN users u ON u.user_id = p.user_id`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p      models.Payment
		status string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CourseKey, &p.Amount, &status,
		&p.ReceiptFileID, &p.ReceiptKind, &p.SubmittedAt,
		&p.DecidedAt, &p.AdminID, &p.RejectionReason,
		&p.FullName, &p.Phone,
	)
	if err != nil {
		return nil, err
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

func (s *Store) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	p, err := scanPayment(s.pool.QueryRow(ctx, paymentSelect+` WHERE p.id = @id`, pgx.NamedArgs{"id": id}))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListPendingPayments(ctx context.Context) ([]*models.Payment, error) {
	rows, err := s.pool.Query(ctx, paymentSelect+` WHERE p.status = @status ORDER BY p.submitted_at DESC, p.id DESC`,
		pgx.NamedArgs{"status": string(models.PaymentPending)})
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}

// DecidePayment locks the payment row and applies the decision only while
// it is still pending.
func (s *Store) DecidePayment(ctx context.Context, id int64, status models.PaymentStatus, adminID int64, reason string) error {
	if !status.IsFinal() {
		return fmt.Errorf("%w: %s", database.ErrInvalidStatus, status)
	}

	var rejection *string
	if reason != "" {
		rejection = &reason
	}

	return WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT status FROM payments WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": id}).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return database.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock payment %d: %w", id, err)
		}
		if current != string(models.PaymentPending) {
			return database.ErrAlreadyDecided
		}

		_, err = tx.Exec(ctx, `
            UPDATE payments
            SET status = @status, admin_id = @admin_id, decided_at = @decided_at, rejection_reason = @reason
            WHERE id = @id`,
			pgx.NamedArgs{
				"status":     string(status),
				"admin_id":   adminID,
				"decided_at": time.Now(),
				"reason":     rejection,
				"id":         id,
			})
		if err != nil {
			return fmt.Errorf("decide payment %d: %w", id, err)
		}
		return nil
	})
}

func (s *Store) AppendAuditLog(ctx context.Context, action *models.AdminAction) error {
	createdAt := action.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := s.pool.QueryRow(ctx, `
        INSERT INTO admin_actions (admin_id, action_type, target_user_id, details, created_at)
        VALUES (@admin_id, @action_type, @target_user_id, @details, @created_at)
        RETURNING id`,
		pgx.NamedArgs{
			"admin_id":       action.AdminID,
			"action_type":    action.ActionType,
			"target_user_id": action.TargetUserID,
			"details":        action.Details,
			"created_at":     createdAt,
		}).Scan(&action.ID)
	if err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	action.CreatedAt = createdAt
	return nil
}

func (s *Store) GetStatistics(ctx context.Context, now time.Time) (*models.Statistics, error) {
	args := pgx.NamedArgs{
		"day_start":   database.StartOfDay(now),
		"month_start": database.StartOfMonth(now),
		"approved":    string(models.PaymentApproved),
	}

	var stats models.Statistics
	err := s.pool.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE registered_at >= @day_start),
               COUNT(*) FILTER (WHERE registered_at >= @month_start)
        FROM users`, args).
		Scan(&stats.TotalUsers, &stats.TodayUsers, &stats.MonthUsers)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'pending'),
               COUNT(*) FILTER (WHERE status = @approved),
               COUNT(*) FILTER (WHERE status = 'rejected'),
               COALESCE(SUM(amount) FILTER (WHERE status = @approved), 0)::bigint,
               COALESCE(SUM(amount) FILTER (WHERE status = @approved AND decided_at >= @day_start), 0)::bigint,
               COALESCE(SUM(amount) FILTER (WHERE status = @approved AND decided_at >= @month_start), 0)::bigint
        FROM payments`, args).
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
		return nil, fmt.Errorf("aggregate payments: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
        SELECT course_key, COUNT(*), COALESCE(SUM(amount), 0)::bigint
        FROM payments
        WHERE status = @approved
        GROUP BY course_key
        ORDER BY course_key`, args)
	if err != nil {
		return nil, fmt.Errorf("aggregate courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs models.CourseStat
		if err := rows.Scan(&cs.CourseKey, &cs.Count, &cs.Revenue); err != nil {
			return nil, fmt.Errorf("scan course stat: %w", err)
		}
		stats.CourseStats = append(stats.CourseStats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course stats: %w", err)
	}
	return &stats, nil
}

func (s *Store) ListUsersForExport(ctx context.Context) ([]models.ExportRow, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT u.user_id, u.phone, u.full_name, u.age, u.region, u.height, u.weight,
               u.registered_at, u.is_subscribed,
               COALESCE(p.course_key, ''), p.amount, COALESCE(p.status, ''), p.submitted_at
        FROM users u
        LEFT JOIN payments p ON p.user_id = u.user_id
        ORDER BY u.registered_at DESC, u.user_id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("list export rows: %w", err)
	}
	defer rows.Close()

	var out []models.ExportRow
	for rows.Next() {
		var r models.ExportRow
		err := rows.Scan(
			&r.UserID, &r.Phone, &r.FullName, &r.Age, &r.Region, &r.Height, &r.Weight,
			&r.RegisteredAt, &r.IsSubscribed,
			&r.CourseKey, &r.Amount, &r.Status, &r.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}
	return out, nil
}
