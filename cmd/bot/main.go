package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marafon/internal/api"
	"marafon/internal/bot"
	"marafon/internal/config"
	"marafon/internal/database"
	"marafon/internal/database/postgres"
	"marafon/internal/domain"
	"marafon/internal/events"
	"marafon/internal/export"
	"marafon/internal/google"
	"marafon/internal/logging"
	"marafon/internal/metrics"
	"marafon/internal/models"
	"marafon/internal/repository"
	"marafon/internal/service"
	"marafon/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", cfg.App.Timezone).Msg("Unknown timezone, using UTC")
		location = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, sqliteDB, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	redisClient, stateService := initStateService(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	eventBus := events.NewEventBus()
	eventBus.OnError(func(ev *events.Event, err error) {
		logger.Error().Err(err).Str("event", ev.Type).Msg("event handler failed")
	})
	metrics.Register()
	metrics.Subscribe(eventBus)

	// Запускаем воркер синхронизации Google Sheets
	var sheetsWorker *worker.SheetsWorker
	if sheetsService := initGoogleSheets(ctx, cfg, location, logger); sheetsService != nil {
		sheetsWorker = worker.NewSheetsWorker(repo, sheetsService, redisClient, worker.DefaultRetryPolicy(), logging.Component(logger, "sheets-worker"))
		for _, t := range []string{events.EventPaymentSubmitted, events.EventPaymentApproved, events.EventPaymentRejected} {
			eventBus.Subscribe(t, sheetsWorker.HandlePaymentEvent)
		}
		go sheetsWorker.Start(ctx)
	}

	// Инициализация бизнес-сервисов
	courses := models.NewCourseCatalog(cfg.CourseTiers())
	userService := service.NewUserService(repo, cfg.Admins, eventBus, logger)
	paymentService := service.NewPaymentService(repo, courses, eventBus, logger)
	adminService := service.NewAdminService(repo, location, logger)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, api.Dependencies{
			Stats:    adminService,
			Payments: paymentService,
			Store:    repo,
		}, logging.Component(logger, "api"))
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	if cfg.Backup.Enabled && sqliteDB != nil {
		backupService := database.NewBackupService(sqliteDB, cfg.Backup, logging.Component(logger, "backup"))
		go backupService.Start(ctx)
	}

	deps := bot.Dependencies{
		State:    stateService,
		Users:    userService,
		Payments: paymentService,
		Admin:    adminService,
		Exporter: export.NewXLSXExporter(location),
		Courses:  courses,
	}
	// интерфейс с nil-указателем внутри не равен nil
	if sheetsWorker != nil {
		deps.SheetsWorker = sheetsWorker
	}

	return startBot(ctx, cfg, deps, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logging.Component(baseLogger, "bot-main"), closer, nil
}

// initDatabase returns the configured store; the SQLite handle is also
// returned separately because only file databases can be backed up.
func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Repository, *database.DB, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		pool, err := postgres.NewPool(ctx, cfg.Database.DSN, cfg.Database.MaxConnections)
		if err != nil {
			logger.Error().Err(err).Msg("Ошибка подключения к Postgres")
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			logger.Error().Err(err).Msg("Ошибка миграции Postgres")
			return nil, nil, err
		}
		logger.Info().Msg("Postgres store initialized")
		return postgres.NewStore(pool, logging.Component(logger, "postgres")), nil, nil
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "sqlite"))
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, nil, err
	}
	return db, db, nil
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, location *time.Location, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled() {
		logger.Info().Msg("Google Sheets mirror is disabled")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(
		ctx,
		cfg.Google.CredentialsFile,
		cfg.Google.SpreadsheetID,
		cfg.Google.PaymentsSheet,
		cfg.Google.UsersSheet,
		location,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}
	if err := sheetsSvc.EnsureHeaders(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to write sheet headers")
	}
	if err := sheetsSvc.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to warm up row cache")
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	ttl := time.Duration(cfg.Funnel.StateTTLHours) * time.Hour
	fallbackRepo := repository.NewMemoryStateRepository(ttl)
	stateLogger := logging.Component(logger, "state")

	if cfg.Redis.Address == "" {
		logger.Info().Msg("Redis is not configured, keeping state in memory")
		return nil, service.NewStateService(fallbackRepo, stateLogger)
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if errPing := repository.Ping(ctx, redisClient); errPing != nil {
		logger.Warn().Err(errPing).Msg("Redis unavailable")
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, ttl)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, stateLogger)
	return redisClient, service.NewStateService(stateRepo, stateLogger)
}

func startBot(ctx context.Context, cfg *config.Config, deps bot.Dependencies, logger *zerolog.Logger) error {
	botWrapper, err := bot.Connect(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}

	tgService := service.NewTelegramService(botWrapper)
	interval := time.Duration(cfg.Funnel.BroadcastIntervalMs) * time.Millisecond
	deps.Telegram = tgService
	deps.Broadcaster = service.NewBroadcaster(tgService, deps.Users, interval, logging.Component(logger, "broadcast"))

	telegramBot, err := bot.NewBot(cfg, deps, bot.NewMetrics(nil), logging.Component(logger, "bot"))
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)
	telegramBot.Stop()

	// дожидаемся фоновых рассылок
	telegramBot.Wait()
	logger.Info().Msg("Shutdown complete.")
	return nil
}
