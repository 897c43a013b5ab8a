package service

import (
	"context"
	"errors"
	"testing"

	"marafon/internal/database"
	"marafon/internal/events"
	"marafon/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPaymentService(repo *MockRepository, pub *MockPublisher) *PaymentService {
	logger := zerolog.Nop()
	return NewPaymentService(repo, models.NewCourseCatalog(models.DefaultCourses()), pub, &logger)
}

func TestPaymentService_Submit(t *testing.T) {
	ctx := context.Background()
	user := &models.UserProfile{UserID: 10, FullName: "Ali Valiyev", Phone: "+998901234567"}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)

		repo.On("GetUser", ctx, int64(10)).Return(user, nil).Once()
		repo.On("InsertPayment", ctx, mock.MatchedBy(func(p *models.Payment) bool {
			return p.UserID == 10 && p.CourseKey == "premium" && p.Amount == 397000 && p.ReceiptKind == models.ReceiptPhoto
		})).Return(int64(77), nil).Once()
		pub.On("PublishJSON", events.EventPaymentSubmitted, mock.MatchedBy(func(p events.PaymentEventPayload) bool {
			return p.PaymentID == 77 && p.FullName == "Ali Valiyev"
		})).Return(nil).Once()

		payment, err := s.Submit(ctx, 10, "premium", "file-1", models.ReceiptPhoto)
		require.NoError(t, err)
		assert.Equal(t, int64(77), payment.ID)
		assert.Equal(t, models.PaymentPending, payment.Status)
		assert.Equal(t, "+998901234567", payment.Phone)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("UnknownCourse", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestPaymentService(repo, new(MockPublisher))

		_, err := s.Submit(ctx, 10, "gold", "file-1", models.ReceiptPhoto)
		assert.ErrorIs(t, err, ErrUnknownCourse)
		repo.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
	})

	t.Run("NotRegistered", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestPaymentService(repo, new(MockPublisher))
		repo.On("GetUser", ctx, int64(11)).Return(nil, database.ErrNotFound).Once()

		_, err := s.Submit(ctx, 11, "vip", "file-1", models.ReceiptDocument)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("InsertError", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)
		repo.On("GetUser", ctx, int64(10)).Return(user, nil).Once()
		repo.On("InsertPayment", ctx, mock.Anything).Return(int64(0), errors.New("locked")).Once()

		payment, err := s.Submit(ctx, 10, "vip", "file-1", models.ReceiptDocument)
		assert.Error(t, err)
		assert.Nil(t, payment)
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)
		adminID := int64(1)
		decided := &models.Payment{ID: 5, UserID: 10, CourseKey: "vip", Amount: 597000, Status: models.PaymentApproved, AdminID: &adminID}

		repo.On("DecidePayment", ctx, int64(5), models.PaymentApproved, adminID, "").Return(nil).Once()
		repo.On("GetPayment", ctx, int64(5)).Return(decided, nil).Once()
		repo.On("AppendAuditLog", ctx, mock.MatchedBy(func(a *models.AdminAction) bool {
			return a.ActionType == models.ActionApprovePayment && a.Details == "Payment ID: 5" && *a.TargetUserID == 10
		})).Return(nil).Once()
		pub.On("PublishJSON", events.EventPaymentApproved, mock.MatchedBy(func(p events.PaymentEventPayload) bool {
			return p.PaymentID == 5 && p.AdminID == 1 && p.Status == "approved"
		})).Return(nil).Once()

		got, err := s.Approve(ctx, 5, adminID)
		require.NoError(t, err)
		assert.Equal(t, decided, got)
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)

		repo.On("DecidePayment", ctx, int64(5), models.PaymentApproved, int64(1), "").Return(database.ErrAlreadyDecided).Once()

		got, err := s.Approve(ctx, 5, 1)
		assert.ErrorIs(t, err, database.ErrAlreadyDecided)
		assert.Nil(t, got)
		repo.AssertNotCalled(t, "AppendAuditLog", mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("AuditFailureDoesNotFail", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)

		repo.On("DecidePayment", ctx, int64(6), models.PaymentApproved, int64(1), "").Return(nil).Once()
		repo.On("GetPayment", ctx, int64(6)).Return(&models.Payment{ID: 6, UserID: 10, Status: models.PaymentApproved}, nil).Once()
		repo.On("AppendAuditLog", ctx, mock.Anything).Return(errors.New("disk full")).Once()
		pub.On("PublishJSON", events.EventPaymentApproved, mock.Anything).Return(nil).Once()

		_, err := s.Approve(ctx, 6, 1)
		assert.NoError(t, err)
	})
}

func TestPaymentService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("WithReason", func(t *testing.T) {
		repo := new(MockRepository)
		pub := new(MockPublisher)
		s := newTestPaymentService(repo, pub)
		reason := models.RejectionReasons[1]

		repo.On("DecidePayment", ctx, int64(5), models.PaymentRejected, int64(1), reason).Return(nil).Once()
		repo.On("GetPayment", ctx, int64(5)).Return(&models.Payment{ID: 5, UserID: 10, Status: models.PaymentRejected, RejectionReason: &reason}, nil).Once()
		repo.On("AppendAuditLog", ctx, mock.MatchedBy(func(a *models.AdminAction) bool {
			return a.ActionType == models.ActionRejectPayment && a.Details == "Payment ID: 5, Reason: "+reason
		})).Return(nil).Once()
		pub.On("PublishJSON", events.EventPaymentRejected, mock.MatchedBy(func(p events.PaymentEventPayload) bool {
			return p.Reason == reason
		})).Return(nil).Once()

		got, err := s.Reject(ctx, 5, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, reason, *got.RejectionReason)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidReason", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestPaymentService(repo, new(MockPublisher))

		for _, idx := range []int{-1, len(models.RejectionReasons)} {
			_, err := s.Reject(ctx, 5, 1, idx)
			assert.ErrorIs(t, err, ErrUnknownReason)
		}
		repo.AssertNotCalled(t, "DecidePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		s := newTestPaymentService(repo, new(MockPublisher))
		repo.On("DecidePayment", ctx, int64(99), models.PaymentRejected, int64(1), models.RejectionReasons[0]).Return(database.ErrNotFound).Once()

		_, err := s.Reject(ctx, 99, 1, 0)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestPaymentService_PendingPayments(t *testing.T) {
	repo := new(MockRepository)
	s := newTestPaymentService(repo, new(MockPublisher))
	ctx := context.Background()

	repo.On("ListPendingPayments", ctx).Return([]*models.Payment{{ID: 2}, {ID: 1}}, nil).Once()

	got, err := s.PendingPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got[0].ID)
}
