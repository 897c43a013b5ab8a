package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Ошибки исходящих вызовов не фатальны: логируем и продолжаем.

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if _, err := b.tgService.SendMessage(chatID, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (b *Bot) sendInline(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, kb); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// edit заменяет текст сообщения с кнопкой; если сообщения нет, отправляет новое.
func (b *Bot) edit(ctx context.Context, r *request, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if id := r.messageID(); id != 0 {
		_, err := b.tgService.EditMessage(r.chatID, id, text, kb)
		if err == nil {
			return
		}
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Edit failed, sending new message")
	}
	if kb != nil {
		b.sendInline(ctx, r.chatID, text, *kb)
		return
	}
	b.send(ctx, r.chatID, text)
}

func (b *Bot) answer(ctx context.Context, r *request, text string) {
	if r.callback == nil {
		return
	}
	r.answered = true
	if err := b.tgService.AnswerCallback(r.callback.ID, text); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to answer callback")
	}
}

// alert отвечает на нажатие всплывающим окном; для сообщений шлёт текст.
func (b *Bot) alert(ctx context.Context, r *request, text string) {
	if r.callback == nil {
		b.send(ctx, r.chatID, text)
		return
	}
	r.answered = true
	if err := b.tgService.AnswerCallbackAlert(r.callback.ID, text); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("Failed to answer callback")
	}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func int64Ptr(v int64) *int64 {
	return &v
}
