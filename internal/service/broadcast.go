package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marafon/internal/domain"
	"marafon/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrEmptyMessage is returned for content without text or media.
var ErrEmptyMessage = errors.New("empty message")

type profileReader interface {
	GetUser(ctx context.Context, userID int64) (*models.UserProfile, error)
}

// Broadcaster delivers admin-authored content with a personalized greeting.
type Broadcaster struct {
	tg      domain.TelegramService
	users   profileReader
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func NewBroadcaster(tg domain.TelegramService, users profileReader, interval time.Duration, logger *zerolog.Logger) *Broadcaster {
	if interval <= 0 {
		interval = models.BroadcastInterval
	}
	return &Broadcaster{
		tg:      tg,
		users:   users,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// ComposeMessage builds "Salom, <name>!" followed by the header and content.
func ComposeMessage(name, header, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Salom, %s!\n\n%s", name, header)
	if content = strings.TrimSpace(content); content != "" {
		b.WriteString("\n\n")
		b.WriteString(content)
	}
	return b.String()
}

// Deliver sends one message to a registered user.
func (b *Broadcaster) Deliver(ctx context.Context, userID int64, header string, msg models.OutboundMessage) error {
	if msg.IsEmpty() {
		return ErrEmptyMessage
	}

	user, err := b.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotRegistered
	}

	text := ComposeMessage(user.FullName, header, msg.Text)
	switch {
	case msg.PhotoFileID != "":
		_, err = b.tg.SendPhoto(userID, msg.PhotoFileID, text, nil)
	case msg.VideoFileID != "":
		_, err = b.tg.SendVideo(userID, msg.VideoFileID, text)
	default:
		_, err = b.tg.SendMessage(userID, text)
	}
	return err
}

// Broadcast delivers to every id in order, waiting on the limiter between
// sends. Unregistered ids are skipped without counting as failures. progress
// is called every BroadcastProgressEvery recipients.
func (b *Broadcaster) Broadcast(
	ctx context.Context,
	userIDs []int64,
	header string,
	msg models.OutboundMessage,
	progress func(done, total int),
) models.BroadcastResult {
	result := models.BroadcastResult{Total: len(userIDs)}

	for i, userID := range userIDs {
		if err := b.limiter.Wait(ctx); err != nil {
			b.logger.Warn().Err(err).Int("done", i).Msg("broadcast interrupted")
			result.Failed += len(userIDs) - i
			return result
		}

		err := b.Deliver(ctx, userID, header, msg)
		switch {
		case err == nil:
			result.Sent++
		case errors.Is(err, ErrNotRegistered):
			b.logger.Debug().Int64("user_id", userID).Msg("broadcast skipped unknown user")
		default:
			result.Failed++
			b.logger.Warn().Err(err).Int64("user_id", userID).Msg("broadcast delivery failed")
		}

		if progress != nil && (i+1)%models.BroadcastProgressEvery == 0 {
			progress(i+1, len(userIDs))
		}
	}

	b.logger.Info().Int("total", result.Total).Int("sent", result.Sent).Int("failed", result.Failed).Msg("broadcast finished")
	return result
}
