package bot

import (
	"context"
	"fmt"

	"marafon/internal/flow"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

func (b *Bot) handleAdminMessage(ctx context.Context, r *request) flow.Outcome {
	r.data = models.FlowData{}
	b.answer(ctx, r, "")
	b.edit(ctx, r, msgAskUserID, nil)
	return flow.Done
}

func (b *Bot) handleAdminBroadcast(ctx context.Context, r *request) flow.Outcome {
	r.data = models.FlowData{}
	b.answer(ctx, r, "")
	b.edit(ctx, r, msgAskBroadcast, nil)
	return flow.Done
}

func (b *Bot) handleAdminTargetUser(ctx context.Context, r *request) flow.Outcome {
	id, ok := parseID(r.message.Text)
	if !ok {
		b.send(ctx, r.chatID, msgInvalidUserID)
		return flow.Rejected
	}

	user, err := b.userService.GetUser(ctx, id)
	if err != nil {
		b.send(ctx, r.chatID, msgDatabaseError)
		return flow.Abort
	}
	if user == nil {
		b.send(ctx, r.chatID, msgUserNotFound)
		return flow.Abort
	}

	r.data.TargetUserID = id
	b.send(ctx, r.chatID, fmt.Sprintf(msgUserFound, user.FullName))
	return flow.Done
}

func (b *Bot) handleAdminSendMessage(ctx context.Context, r *request) flow.Outcome {
	target := r.data.TargetUserID
	if target == 0 {
		b.send(ctx, r.chatID, msgUserNotFound)
		return flow.Abort
	}

	out := outbound(r.message)
	if err := b.broadcaster.Deliver(ctx, target, headerAdminMessage, out); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("target_user_id", target).Msg("Failed to deliver admin message")
		b.send(ctx, r.chatID, msgMessageFailed)
		return flow.Done
	}

	b.send(ctx, r.chatID, msgMessageSent)
	b.adminService.LogAction(ctx, r.userID, models.ActionSendMessage, int64Ptr(target), out.Text)
	return flow.Done
}

// handleAdminSendBroadcast запускает рассылку в фоне: она идёт до конца
// независимо от таймаута обновления.
func (b *Bot) handleAdminSendBroadcast(ctx context.Context, r *request) flow.Outcome {
	ids, err := b.userService.ListUserIDs(ctx)
	if err != nil {
		b.send(ctx, r.chatID, msgDatabaseError)
		return flow.Abort
	}
	if len(ids) == 0 {
		b.send(ctx, r.chatID, msgNoUsers)
		return flow.Done
	}

	total := len(ids)
	status, err := b.tgService.SendMessage(r.chatID, fmt.Sprintf(msgBroadcastProgress, 0, total))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to send broadcast status")
	}

	adminID, chatID, statusID := r.userID, r.chatID, status.MessageID
	out := outbound(r.message)

	b.goBackground(ctx, func(ctx context.Context) {
		progress := func(done, n int) {
			if statusID != 0 {
				b.updateStatus(ctx, chatID, statusID, fmt.Sprintf(msgBroadcastProgress, done, n))
			}
		}

		res := b.broadcaster.Broadcast(ctx, ids, headerBroadcast, out, progress)

		if b.metrics != nil {
			b.metrics.BroadcastDeliveries.WithLabelValues("sent").Add(float64(res.Sent))
			b.metrics.BroadcastDeliveries.WithLabelValues("failed").Add(float64(res.Failed))
		}

		b.updateStatus(ctx, chatID, statusID, fmt.Sprintf(msgBroadcastDone, res.Sent, res.Failed))
		b.adminService.LogAction(ctx, adminID, models.ActionBroadcast, nil, fmt.Sprintf("Sent to %d users", res.Sent))
	})

	return flow.Done
}

// updateStatus правит сообщение о ходе рассылки, а без него шлёт новое.
func (b *Bot) updateStatus(ctx context.Context, chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.send(ctx, chatID, text)
		return
	}
	if _, err := b.tgService.EditMessage(chatID, messageID, text, nil); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to update broadcast status")
	}
}
