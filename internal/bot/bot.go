package bot

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"marafon/internal/config"
	"marafon/internal/domain"
	"marafon/internal/flow"
	"marafon/internal/logging"
	"marafon/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const updateTimeout = 30 * time.Second

// Dependencies are the collaborators of the funnel. SheetsWorker is optional.
type Dependencies struct {
	Telegram     domain.TelegramService
	State        domain.StateManager
	Users        domain.UserService
	Payments     domain.PaymentService
	Admin        domain.AdminService
	Broadcaster  domain.Broadcaster
	Exporter     domain.SpreadsheetExporter
	SheetsWorker domain.SyncWorker
	Courses      *models.CourseCatalog
}

type Bot struct {
	tgService      domain.TelegramService
	config         *config.Config
	stateService   domain.StateManager
	userService    domain.UserService
	paymentService domain.PaymentService
	adminService   domain.AdminService
	broadcaster    domain.Broadcaster
	exporter       domain.SpreadsheetExporter
	sheetsWorker   domain.SyncWorker
	courses        *models.CourseCatalog
	location       *time.Location
	handlers       map[flow.Action]handlerFunc
	metrics        *Metrics
	logger         *zerolog.Logger
	now            func() time.Time

	// фоновые задачи (рассылки) переживают таймаут обновления
	background sync.WaitGroup
}

func NewBot(cfg *config.Config, deps Dependencies, metrics *Metrics, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Telegram == nil || deps.State == nil || deps.Users == nil || deps.Payments == nil ||
		deps.Admin == nil || deps.Broadcaster == nil || deps.Exporter == nil {
		return nil, errors.New("bot dependencies are incomplete")
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	courses := deps.Courses
	if courses == nil {
		courses = models.NewCourseCatalog(cfg.CourseTiers())
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.App.Timezone).Msg("Unknown timezone, using UTC")
		location = time.UTC
	}

	b := &Bot{
		tgService:      deps.Telegram,
		config:         cfg,
		stateService:   deps.State,
		userService:    deps.Users,
		paymentService: deps.Payments,
		adminService:   deps.Admin,
		broadcaster:    deps.Broadcaster,
		exporter:       deps.Exporter,
		sheetsWorker:   deps.SheetsWorker,
		courses:        courses,
		location:       location,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
	b.handlers = b.actionHandlers()
	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

// Wait blocks until background jobs started by handlers have finished.
func (b *Bot) Wait() {
	b.background.Wait()
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	updateCtx = logging.WithRequest(updateCtx, b.logger, uuid.New().String())

	b.withRecovery(updateCtx, func() {
		b.dispatch(updateCtx, update)
	})
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	r := newRequest(update)
	if r == nil {
		return
	}
	logger := zerolog.Ctx(ctx).With().Int64("user_id", r.userID).Logger()
	ctx = logger.WithContext(ctx)

	isAdmin := b.userService.IsAdmin(r.userID)

	step := flow.StepNone
	state, err := b.stateService.GetUserState(ctx, r.userID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load user state")
	}
	if state != nil {
		step = flow.Step(state.CurrentStep)
		r.data = state.Data
	}
	r.step = step

	rule := flow.Resolve(step, r.event)
	if rule.AdminOnly && !isAdmin {
		logger.Debug().Str("action", string(rule.Action)).Msg("Ignoring admin action from non-admin")
		return
	}
	// админские команды от обычных пользователей не тратят их лимит
	if !isAdmin && !b.allow(ctx, r) {
		return
	}
	r.rule = rule

	handler, ok := b.handlers[rule.Action]
	if !ok {
		logger.Error().Str("action", string(rule.Action)).Msg("No handler for action")
		return
	}

	if b.metrics != nil {
		b.metrics.UpdatesTotal.WithLabelValues(string(rule.Action)).Inc()
	}

	outcome := handler(ctx, r)
	b.applyOutcome(ctx, r, outcome)

	if r.callback != nil && !r.answered {
		if err := b.tgService.AnswerCallback(r.callback.ID, ""); err != nil {
			logger.Debug().Err(err).Msg("Failed to answer callback")
		}
	}
}

// applyOutcome сохраняет или сбрасывает состояние согласно правилу.
func (b *Bot) applyOutcome(ctx context.Context, r *request, outcome flow.Outcome) {
	res := r.rule.Apply(outcome)
	switch {
	case res.Clear:
		b.clearState(ctx, r.userID)
	case res.Save:
		b.saveState(ctx, r.userID, res.Next, r.data)
	}
}

// allow проверяет лимит сообщений для обычных пользователей.
func (b *Bot) allow(ctx context.Context, r *request) bool {
	window := time.Duration(b.config.Funnel.RateLimitWindow) * time.Second
	allowed, err := b.stateService.CheckRateLimit(ctx, r.userID, b.config.Funnel.RateLimitMessages, window)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Rate limit check failed")
		return true
	}
	if allowed {
		return true
	}

	zerolog.Ctx(ctx).Warn().Msg("Rate limit exceeded")
	if r.message != nil {
		b.send(ctx, r.chatID, msgRateLimited)
	}
	return false
}
