package bot

import (
	"context"
	"errors"
	"fmt"

	"marafon/internal/export"
	"marafon/internal/flow"
	"marafon/internal/models"

	"github.com/rs/zerolog"
)

func (b *Bot) handleAdminPanel(ctx context.Context, r *request) flow.Outcome {
	b.sendInline(ctx, r.chatID, msgAdminPanel, adminKeyboard())
	return flow.Done
}

func (b *Bot) handleAdminStats(ctx context.Context, r *request) flow.Outcome {
	stats, err := b.adminService.Statistics(ctx)
	if err != nil {
		b.alert(ctx, r, msgStatsFailed)
		return flow.Rejected
	}

	kb := adminKeyboard()
	b.answer(ctx, r, "")
	b.edit(ctx, r, statisticsText(stats, b.courses), &kb)
	return flow.Done
}

func (b *Bot) handleAdminUsers(ctx context.Context, r *request) flow.Outcome {
	ids, err := b.userService.ListUserIDs(ctx)
	if err != nil {
		b.alert(ctx, r, msgDatabaseError)
		return flow.Rejected
	}
	users, err := b.userService.RecentUsers(ctx, models.RecentUsersLimit)
	if err != nil {
		b.alert(ctx, r, msgDatabaseError)
		return flow.Rejected
	}

	kb := adminKeyboard()
	b.answer(ctx, r, "")
	b.edit(ctx, r, recentUsersText(len(ids), users, b.location), &kb)
	return flow.Done
}

func (b *Bot) handleAdminPayments(ctx context.Context, r *request) flow.Outcome {
	payments, err := b.paymentService.PendingPayments(ctx)
	if err != nil {
		b.alert(ctx, r, msgDatabaseError)
		return flow.Rejected
	}

	kb := adminKeyboard()
	b.answer(ctx, r, "")
	b.edit(ctx, r, pendingPaymentsText(payments, b.courses, b.location), &kb)
	return flow.Done
}

// handleAdminExport отправляет администратору xlsx со всеми пользователями.
// При настроенной Google-таблице те же строки уходят и туда.
func (b *Bot) handleAdminExport(ctx context.Context, r *request) flow.Outcome {
	logger := zerolog.Ctx(ctx)

	rows, err := b.adminService.ExportRows(ctx)
	if err != nil {
		b.alert(ctx, r, msgExportFailed)
		return flow.Rejected
	}
	if len(rows) == 0 {
		b.alert(ctx, r, msgExportEmpty)
		return flow.Rejected
	}

	data, err := b.exporter.Export(rows)
	if err != nil {
		logger.Error().Err(err).Int("rows", len(rows)).Msg("Failed to build export")
		if errors.Is(err, export.ErrNoRows) {
			b.alert(ctx, r, msgExportEmpty)
		} else {
			b.alert(ctx, r, msgExportFailed)
		}
		return flow.Rejected
	}

	now := b.now().In(b.location)
	caption := fmt.Sprintf(msgExportCaption, now.Format(displayTimeLayout))
	if _, err := b.tgService.SendFile(r.userID, export.FileName(now), data, caption); err != nil {
		logger.Error().Err(err).Msg("Failed to send export")
		b.alert(ctx, r, msgExportFailed)
		return flow.Rejected
	}

	b.adminService.LogAction(ctx, r.userID, models.ActionExport, nil, fmt.Sprintf("Exported %d records", len(rows)))

	if b.sheetsWorker != nil {
		if err := b.sheetsWorker.EnqueueUsers(ctx, rows); err != nil {
			logger.Warn().Err(err).Msg("Failed to queue users for Google Sheets")
		}
	}

	b.answer(ctx, r, "")
	return flow.Done
}
