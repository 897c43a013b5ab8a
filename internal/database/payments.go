package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marafon/internal/models"
)

const paymentSelect = `SELECT p.id, p.user_id, p.course_key, p.amount, p.status,
                   p.receipt_file_id, p.receipt_kind, p.submitted_at,
                   p.decided_at, p.admin_id, p.rejection_reason,
                   COALESCE(u.full_name, ''), COALESCE(u.phone, '')
            FROM payments p
            LEFT JOIN users u ON u.user_id = p.user_id`

// InsertPayment stores a new pending payment and returns its id. The id is
// also written back into p.
func (db *DB) InsertPayment(ctx context.Context, p *models.Payment) (int64, error) {
	query := `INSERT INTO payments (user_id, course_key, amount, status, receipt_file_id, receipt_kind, submitted_at)
              VALUES (@user_id, @course_key, @amount, @status, @receipt_file_id, @receipt_kind, @submitted_at)`

	submittedAt := p.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	kind := p.ReceiptKind
	if kind == "" {
		kind = models.ReceiptPhoto
	}

	res, err := db.ExecContext(ctx, query,
		sql.Named("user_id", p.UserID),
		sql.Named("course_key", p.CourseKey),
		sql.Named("amount", p.Amount),
		sql.Named("status", string(models.PaymentPending)),
		sql.Named("receipt_file_id", p.ReceiptFileID),
		sql.Named("receipt_kind", kind),
		sql.Named("submitted_at", submittedAt.UTC()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payment for user %d: %w", p.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read payment id: %w", err)
	}

	p.ID = id
	p.Status = models.PaymentPending
	p.ReceiptKind = kind
	p.SubmittedAt = submittedAt
	return id, nil
}

func (db *DB) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	row := db.QueryRowContext(ctx, paymentSelect+` WHERE p.id = @id`, sql.Named("id", id))
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}
	return p, nil
}

// ListPendingPayments returns pending payments, newest first.
func (db *DB) ListPendingPayments(ctx context.Context) ([]*models.Payment, error) {
	query := paymentSelect + ` WHERE p.status = @status ORDER BY p.submitted_at DESC, p.id DESC`
	rows, err := db.QueryContext(ctx, query, sql.Named("status", string(models.PaymentPending)))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// DecidePayment moves a pending payment to approved or rejected. Only the
// first decision wins: a payment that is no longer pending yields
// ErrAlreadyDecided and is left untouched.
func (db *DB) DecidePayment(ctx context.Context, id int64, status models.PaymentStatus, adminID int64, reason string) error {
	if !status.IsFinal() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var rejection interface{}
	if reason != "" {
		rejection = reason
	}

	res, err := db.ExecContext(ctx, `
        UPDATE payments
        SET status = @status,
            admin_id = @admin_id,
            decided_at = @decided_at,
            rejection_reason = @reason
        WHERE id = @id AND status = @pending`,
		sql.Named("status", string(status)),
		sql.Named("admin_id", adminID),
		sql.Named("decided_at", time.Now().UTC()),
		sql.Named("reason", rejection),
		sql.Named("id", id),
		sql.Named("pending", string(models.PaymentPending)),
	)
	if err != nil {
		return fmt.Errorf("failed to decide payment %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decide payment %d: %w", id, err)
	}
	if affected == 1 {
		return nil
	}

	var current string
	err = db.QueryRowContext(ctx, `SELECT status FROM payments WHERE id = @id`, sql.Named("id", id)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check payment %d: %w", id, err)
	}
	return ErrAlreadyDecided
}

func scanPayment(s scanner) (*models.Payment, error) {
	var (
		p         models.Payment
		status    string
		decidedAt sql.NullTime
		adminID   sql.NullInt64
		reason    sql.NullString
	)
	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.CourseKey,
		&p.Amount,
		&status,
		&p.ReceiptFileID,
		&p.ReceiptKind,
		&p.SubmittedAt,
		&decidedAt,
		&adminID,
		&reason,
		&p.FullName,
		&p.Phone,
	)
	if err != nil {
		return nil, err
	}

	p.Status = models.PaymentStatus(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		p.DecidedAt = &t
	}
	if adminID.Valid {
		v := adminID.Int64
		p.AdminID = &v
	}
	if reason.Valid {
		v := reason.String
		p.RejectionReason = &v
	}
	return &p, nil
}
