package bot

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// withRecovery keeps one broken update from taking the loop down. The panic
// is logged with the update's request id.
func (b *Bot) withRecovery(ctx context.Context, handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			zerolog.Ctx(ctx).Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

// goBackground runs job detached from the update deadline and tracks it for
// Wait. The job context keeps the update's logger.
func (b *Bot) goBackground(ctx context.Context, job func(ctx context.Context)) {
	jobCtx := context.WithoutCancel(ctx)
	b.background.Add(1)
	go func() {
		defer b.background.Done()
		b.withRecovery(jobCtx, func() { job(jobCtx) })
	}()
}
