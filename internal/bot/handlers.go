package bot

import (
	"context"

	"marafon/internal/flow"

	"github.com/rs/zerolog"
)

func (b *Bot) actionHandlers() map[flow.Action]handlerFunc {
	return map[flow.Action]handlerFunc{
		flow.ActionStart:             b.handleStart,
		flow.ActionCancel:            b.handleCancel,
		flow.ActionCheckSubscription: b.handleCheckSubscription,
		flow.ActionRestart:           b.handleRestart,

		flow.ActionPhone:  b.handlePhone,
		flow.ActionName:   b.handleName,
		flow.ActionAge:    b.handleAge,
		flow.ActionRegion: b.handleRegion,
		flow.ActionHeight: b.handleHeight,
		flow.ActionWeight: b.handleWeight,

		flow.ActionShowCourse:     b.handleShowCourse,
		flow.ActionBackToCourses:  b.handleBackToCourses,
		flow.ActionPay:            b.handlePay,
		flow.ActionCopyCard:       b.handleCopyCard,
		flow.ActionSendReceipt:    b.handleSendReceipt,
		flow.ActionReceipt:        b.handleReceipt,
		flow.ActionPendingPayment: b.handlePendingPayment,

		flow.ActionAdminPanel:   b.handleAdminPanel,
		flow.ActionApprove:      b.handleApprove,
		flow.ActionRejectMenu:   b.handleRejectMenu,
		flow.ActionRejectReason: b.handleRejectReason,
		flow.ActionReinvite:     b.handleReinvite,

		flow.ActionAdminStats:    b.handleAdminStats,
		flow.ActionAdminUsers:    b.handleAdminUsers,
		flow.ActionAdminPayments: b.handleAdminPayments,
		flow.ActionAdminExport:   b.handleAdminExport,

		flow.ActionAdminMessage:       b.handleAdminMessage,
		flow.ActionAdminBroadcast:     b.handleAdminBroadcast,
		flow.ActionAdminTargetUser:    b.handleAdminTargetUser,
		flow.ActionAdminSendMessage:   b.handleAdminSendMessage,
		flow.ActionAdminSendBroadcast: b.handleAdminSendBroadcast,

		flow.ActionUnknown:      b.handleUnknown,
		flow.ActionInvalidInput: b.handleInvalidInput,
	}
}

func (b *Bot) handleUnknown(ctx context.Context, r *request) flow.Outcome {
	if r.callback != nil {
		// устаревшая кнопка без активного сценария
		b.answer(ctx, r, "")
	}
	b.sendInline(ctx, r.chatID, msgUnknownCommand, restartKeyboard())
	return flow.Rejected
}

func (b *Bot) handleInvalidInput(ctx context.Context, r *request) flow.Outcome {
	if r.callback != nil {
		b.alert(ctx, r, msgInvalidInput)
		return flow.Rejected
	}
	b.send(ctx, r.chatID, msgInvalidInput)

	// повторяем клавиатуру шага, если ответ ждём кнопкой
	switch r.step {
	case flow.StepAwaitingSubscription:
		b.sendInline(ctx, r.chatID, msgSubscriptionRequired, subscriptionKeyboard(b.config.Funnel.MandatoryChannel))
	case flow.StepAwaitingPhone:
		if _, err := b.tgService.SendWithKeyboard(r.chatID, msgWelcome, phoneKeyboard()); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to repeat phone prompt")
		}
	case flow.StepAwaitingRegion:
		b.sendInline(ctx, r.chatID, msgRequestRegion, regionsKeyboard())
	case flow.StepCourseSelection:
		b.sendInline(ctx, r.chatID, msgSelectCourse, coursesKeyboard(b.courses))
	case flow.StepAwaitingReceipt:
		b.send(ctx, r.chatID, msgSendReceipt)
	}
	return flow.Rejected
}

func (b *Bot) handleCancel(ctx context.Context, r *request) flow.Outcome {
	if _, err := b.tgService.SendRemoveKeyboard(r.chatID, msgCancelled); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to send cancel confirmation")
	}
	return flow.Done
}
