package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marafon/internal/database"
	"marafon/internal/domain"
	"marafon/internal/events"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownCourse = errors.New("unknown course")
	ErrUnknownReason = errors.New("unknown rejection reason")
	ErrNotRegistered = errors.New("user is not registered")
)

type PaymentService struct {
	repo    domain.Repository
	courses *models.CourseCatalog
	events  domain.EventPublisher
	logger  *zerolog.Logger
}

func NewPaymentService(repo domain.Repository, courses *models.CourseCatalog, eventBus domain.EventPublisher, logger *zerolog.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		courses: courses,
		events:  eventBus,
		logger:  logger,
	}
}

// Submit records a pending payment for the tier price. The returned payment
// carries the id assigned by the store.
func (s *PaymentService) Submit(ctx context.Context, userID int64, courseKey, fileID, kind string) (*models.Payment, error) {
	tier, ok := s.courses.Get(courseKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, courseKey)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user for payment")
		return nil, err
	}

	payment := &models.Payment{
		UserID:        userID,
		CourseKey:     tier.Key,
		Amount:        tier.Price,
		ReceiptFileID: fileID,
		ReceiptKind:   kind,
		SubmittedAt:   time.Now(),
	}
	if _, err := s.repo.InsertPayment(ctx, payment); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Str("course", courseKey).Msg("failed to save payment")
		return nil, err
	}
	payment.FullName = user.FullName
	payment.Phone = user.Phone

	s.publish(events.EventPaymentSubmitted, payment)
	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		s.logger.Error().Err(err).Int64("payment_id", id).Msg("failed to get payment")
	}
	return payment, err
}

func (s *PaymentService) Approve(ctx context.Context, id, adminID int64) (*models.Payment, error) {
	return s.decide(ctx, id, adminID, models.PaymentApproved, "")
}

// Reject decides the payment with the catalogue reason at reasonIdx.
func (s *PaymentService) Reject(ctx context.Context, id, adminID int64, reasonIdx int) (*models.Payment, error) {
	reason, ok := models.RejectionReason(reasonIdx)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReason, reasonIdx)
	}
	return s.decide(ctx, id, adminID, models.PaymentRejected, reason)
}

func (s *PaymentService) decide(ctx context.Context, id, adminID int64, status models.PaymentStatus, reason string) (*models.Payment, error) {
	l := s.logger.With().Int64("payment_id", id).Int64("admin_id", adminID).Str("status", string(status)).Logger()

	if err := s.repo.DecidePayment(ctx, id, status, adminID, reason); err != nil {
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, database.ErrAlreadyDecided) {
			l.Warn().Err(err).Msg("payment decision refused")
		} else {
			l.Error().Err(err).Msg("failed to decide payment")
		}
		return nil, err
	}

	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		l.Error().Err(err).Msg("failed to reload decided payment")
		return nil, err
	}

	actionType, details := models.ActionApprovePayment, fmt.Sprintf("Payment ID: %d", id)
	if status == models.PaymentRejected {
		actionType, details = models.ActionRejectPayment, fmt.Sprintf("Payment ID: %d, Reason: %s", id, reason)
	}
	target := payment.UserID
	s.appendAudit(ctx, &models.AdminAction{AdminID: adminID, ActionType: actionType, TargetUserID: &target, Details: details})

	eventType := events.EventPaymentApproved
	if status == models.PaymentRejected {
		eventType = events.EventPaymentRejected
	}
	s.publish(eventType, payment)

	l.Info().Int64("user_id", payment.UserID).Msg("payment decided")
	return payment, nil
}

func (s *PaymentService) PendingPayments(ctx context.Context) ([]*models.Payment, error) {
	payments, err := s.repo.ListPendingPayments(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pending payments")
		return nil, err
	}
	return payments, nil
}

func (s *PaymentService) appendAudit(ctx context.Context, action *models.AdminAction) {
	if err := s.repo.AppendAuditLog(ctx, action); err != nil {
		s.logger.Error().Err(err).Int64("admin_id", action.AdminID).Str("action", action.ActionType).Msg("failed to append audit log")
	}
}

func (s *PaymentService) publish(eventType string, p *models.Payment) {
	if s.events == nil {
		return
	}
	payload := events.PaymentEventPayload{
		PaymentID: p.ID,
		UserID:    p.UserID,
		FullName:  p.FullName,
		Phone:     p.Phone,
		CourseKey: p.CourseKey,
		Amount:    p.Amount,
		Status:    string(p.Status),
		At:        time.Now(),
	}
	if p.AdminID != nil {
		payload.AdminID = *p.AdminID
	}
	if p.RejectionReason != nil {
		payload.Reason = *p.RejectionReason
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Int64("payment_id", p.ID).Msg("failed to publish payment event")
	}
}
