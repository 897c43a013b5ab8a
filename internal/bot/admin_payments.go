package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"marafon/internal/flow"
	"marafon/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleApprove(ctx context.Context, r *request) flow.Outcome {
	id, ok := parseID(r.payload())
	if !ok {
		b.alert(ctx, r, msgPaymentNotFound)
		return flow.Rejected
	}

	payment, err := b.paymentService.Approve(ctx, id, r.userID)
	if err != nil {
		b.alert(ctx, r, decisionErrorMessage(err))
		return flow.Rejected
	}
	if b.metrics != nil {
		b.metrics.PaymentsDecided.WithLabelValues(string(models.PaymentApproved)).Inc()
	}

	caption := msgAdminApprovedPrefix + "\n\n" + r.caption()
	if err := b.sendInvite(ctx, payment); err != nil {
		// платёж уже одобрен: даём администратору повторить выдачу ссылки
		kb := reinviteKeyboard(payment.ID)
		b.editCaption(ctx, r, caption, &kb)
		b.alert(ctx, r, msgInviteFailed)
		return flow.Done
	}

	b.editCaption(ctx, r, caption, nil)
	b.answer(ctx, r, msgAdminApprovedPrefix)
	return flow.Done
}

// handleReinvite re-issues the channel link for an approved payment whose
// first invite could not be created or delivered.
func (b *Bot) handleReinvite(ctx context.Context, r *request) flow.Outcome {
	id, ok := parseID(r.payload())
	if !ok {
		b.alert(ctx, r, msgPaymentNotFound)
		return flow.Rejected
	}

	payment, err := b.paymentService.GetPayment(ctx, id)
	if err != nil {
		b.alert(ctx, r, decisionErrorMessage(err))
		return flow.Rejected
	}
	if payment.Status != models.PaymentApproved {
		b.alert(ctx, r, msgNotApproved)
		return flow.Rejected
	}

	if err := b.sendInvite(ctx, payment); err != nil {
		b.alert(ctx, r, msgInviteFailed)
		return flow.Rejected
	}

	b.adminService.LogAction(ctx, r.userID, models.ActionReinvite, int64Ptr(payment.UserID), fmt.Sprintf("Payment ID: %d", payment.ID))
	b.editCaption(ctx, r, r.caption(), nil)
	b.alert(ctx, r, msgInviteResent)
	return flow.Done
}

// sendInvite создаёт одноразовую ссылку в канал тарифа и отправляет её
// пользователю.
func (b *Bot) sendInvite(ctx context.Context, p *models.Payment) error {
	logger := zerolog.Ctx(ctx).With().Int64("payment_id", p.ID).Logger()

	tier, ok := b.courses.Get(p.CourseKey)
	if !ok {
		logger.Error().Str("course", p.CourseKey).Msg("Approved payment has unknown course")
		return fmt.Errorf("unknown course %q", p.CourseKey)
	}

	name := fmt.Sprintf("User_%d", p.UserID)
	link, err := b.tgService.CreateInviteLink(tier.ChannelID, name, b.now().Add(models.InviteLinkTTL), models.InviteMemberLimit)
	if err != nil {
		logger.Error().Err(err).Str("channel", tier.ChannelID).Msg("Failed to create invite link")
		return err
	}

	if _, err := b.tgService.SendMessage(p.UserID, approvalText(tier, link)); err != nil {
		logger.Error().Err(err).Int64("target_user_id", p.UserID).Msg("Failed to deliver invite link")
		return err
	}
	return nil
}

func (b *Bot) handleRejectMenu(ctx context.Context, r *request) flow.Outcome {
	id, ok := parseID(r.payload())
	if !ok {
		b.alert(ctx, r, msgPaymentNotFound)
		return flow.Rejected
	}

	if _, err := b.tgService.EditKeyboard(r.chatID, r.messageID(), rejectionKeyboard(id)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("payment_id", id).Msg("Failed to show rejection reasons")
	}
	b.answer(ctx, r, "")
	return flow.Done
}

func (b *Bot) handleRejectReason(ctx context.Context, r *request) flow.Outcome {
	id, idx, ok := parseRejection(r.payload())
	if !ok {
		b.alert(ctx, r, msgInvalidReason)
		return flow.Rejected
	}

	payment, err := b.paymentService.Reject(ctx, id, r.userID, idx)
	if err != nil {
		b.alert(ctx, r, decisionErrorMessage(err))
		return flow.Rejected
	}
	if b.metrics != nil {
		b.metrics.PaymentsDecided.WithLabelValues(string(models.PaymentRejected)).Inc()
	}

	reason, _ := models.RejectionReason(idx)
	if payment.RejectionReason != nil {
		reason = *payment.RejectionReason
	}

	if _, err := b.tgService.SendMessage(payment.UserID, fmt.Sprintf(msgPaymentRejected, reason)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("target_user_id", payment.UserID).Msg("Failed to notify user about rejection")
	}

	b.editCaption(ctx, r, fmt.Sprintf(msgAdminRejectedPrefix, reason)+"\n\n"+r.caption(), nil)
	b.answer(ctx, r, "")
	return flow.Done
}

// parseRejection разбирает "<payment_id>:<reason_index>".
func parseRejection(payload string) (int64, int, bool) {
	rawID, rawIdx, found := strings.Cut(payload, ":")
	if !found {
		return 0, 0, false
	}
	id, ok := parseID(rawID)
	if !ok {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(rawIdx)
	if err != nil {
		return 0, 0, false
	}
	return id, idx, true
}

func (b *Bot) editCaption(ctx context.Context, r *request, caption string, kb *tgbotapi.InlineKeyboardMarkup) {
	if r.messageID() == 0 {
		return
	}
	if _, err := b.tgService.EditCaption(r.chatID, r.messageID(), caption, kb); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to edit admin message")
	}
}
