package bot

import (
	"context"

	"marafon/internal/flow"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

// tier resolves the course key carried in callback data. Unknown keys are
// answered with the invalid input alert.
func (b *Bot) tier(ctx context.Context, r *request) (models.CourseTier, bool) {
	tier, ok := b.courses.Get(r.payload())
	if !ok {
		zerolog.Ctx(ctx).Warn().Str("course", r.payload()).Msg("Unknown course in callback")
		b.alert(ctx, r, msgInvalidInput)
	}
	return tier, ok
}

func (b *Bot) handleShowCourse(ctx context.Context, r *request) flow.Outcome {
	tier, ok := b.tier(ctx, r)
	if !ok {
		return flow.Rejected
	}
	kb := courseCardKeyboard(tier.Key)
	b.answer(ctx, r, "")
	b.edit(ctx, r, courseCardText(tier), &kb)
	return flow.Done
}

func (b *Bot) handleBackToCourses(ctx context.Context, r *request) flow.Outcome {
	kb := coursesKeyboard(b.courses)
	b.answer(ctx, r, "")
	b.edit(ctx, r, msgSelectCourse, &kb)
	return flow.Done
}

func (b *Bot) handlePay(ctx context.Context, r *request) flow.Outcome {
	tier, ok := b.tier(ctx, r)
	if !ok {
		return flow.Rejected
	}
	kb := paymentKeyboard(tier.Key)
	b.answer(ctx, r, "")
	b.edit(ctx, r, paymentInfoText(b.config.Funnel.PaymentCard, b.config.Funnel.CardOwner, tier.Price), &kb)
	return flow.Done
}

func (b *Bot) handleCopyCard(ctx context.Context, r *request) flow.Outcome {
	b.alert(ctx, r, msgCardCopied+"\n\n"+b.config.Funnel.PaymentCard)
	return flow.Done
}

func (b *Bot) handleSendReceipt(ctx context.Context, r *request) flow.Outcome {
	tier, ok := b.tier(ctx, r)
	if !ok {
		return flow.Rejected
	}
	r.data.CourseKey = tier.Key
	b.answer(ctx, r, "")
	b.edit(ctx, r, msgSendReceipt, nil)
	return flow.Done
}

// handleReceipt сохраняет чек и рассылает его всем администраторам.
func (b *Bot) handleReceipt(ctx context.Context, r *request) flow.Outcome {
	fileID, kind := receiptFile(r)
	if fileID == "" {
		b.send(ctx, r.chatID, msgInvalidInput)
		return flow.Rejected
	}

	payment, err := b.paymentService.Submit(ctx, r.userID, r.data.CourseKey, fileID, kind)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("course", r.data.CourseKey).Msg("Failed to submit receipt")
		b.send(ctx, r.chatID, submitErrorMessage(err))
		return flow.Rejected
	}
	if b.metrics != nil {
		b.metrics.PaymentsSubmitted.WithLabelValues(payment.CourseKey).Inc()
	}

	b.send(ctx, r.chatID, msgReceiptReceived)
	b.send(ctx, r.chatID, msgPaymentPending)
	b.notifyAdmins(ctx, payment)
	return flow.Done
}

func (b *Bot) handlePendingPayment(ctx context.Context, r *request) flow.Outcome {
	b.send(ctx, r.chatID, msgPaymentPending)
	return flow.Done
}

func receiptFile(r *request) (string, string) {
	msg := r.message
	switch {
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID, models.ReceiptPhoto
	case msg.Document != nil:
		return msg.Document.FileID, models.ReceiptDocument
	}
	return "", ""
}

// notifyAdmins пересылает чек каждому администратору; ошибки отдельных
// отправок только логируются.
func (b *Bot) notifyAdmins(ctx context.Context, p *models.Payment) {
	caption := adminReceiptCaption(p, b.courses.Name(p.CourseKey), b.location)
	kb := adminDecisionKeyboard(p.ID)

	for _, adminID := range b.userService.AdminIDs() {
		var err error
		if p.ReceiptKind == models.ReceiptDocument {
			_, err = b.tgService.SendDocument(adminID, p.ReceiptFileID, caption, &kb)
		} else {
			_, err = b.tgService.SendPhoto(adminID, p.ReceiptFileID, caption, &kb)
		}
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("admin_id", adminID).Int64("payment_id", p.ID).Msg("Failed to notify admin")
		}
	}
}
