package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marafon/internal/events"
	"marafon/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskPayment = "payment"
	TaskUsers   = "users"
)

// Task describes a unit of work for Sheets.
type Task struct {
	Type      string             `json:"type"`
	PaymentID int64              `json:"payment_id,omitempty"`
	Users     []models.ExportRow `json:"users,omitempty"`
	Attempt   int                `json:"attempt"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type SheetsClient interface {
	UpsertPayment(ctx context.Context, p *models.Payment) error
	ReplaceUsers(ctx context.Context, rows []models.ExportRow) error
}

// PaymentReader loads the current payment row when a task runs.
type PaymentReader interface {
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
}

// SheetsWorker applies queued tasks to Google Sheets with retries.
type SheetsWorker struct {
	payments      PaymentReader
	sheets        SheetsClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan Task
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults. redisClient may be nil,
// then tasks live only in memory.
func NewSheetsWorker(payments PaymentReader, sheets SheetsClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SheetsWorker{
		payments:      payments,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan Task, models.WorkerQueueSize),
		redisQueueKey: "marafon:sheets:queue",
		deadLetterKey: "marafon:sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

func (w *SheetsWorker) EnqueuePayment(ctx context.Context, payment *models.Payment) error {
	if payment == nil || payment.ID == 0 {
		return errors.New("payment id is required")
	}
	return w.enqueue(ctx, Task{Type: TaskPayment, PaymentID: payment.ID, CreatedAt: time.Now()})
}

func (w *SheetsWorker) EnqueueUsers(ctx context.Context, rows []models.ExportRow) error {
	if len(rows) == 0 {
		return errors.New("no rows to sync")
	}
	return w.enqueue(ctx, Task{Type: TaskUsers, Users: rows, CreatedAt: time.Now()})
}

// HandlePaymentEvent is an events.EventHandler that mirrors decided payments.
func (w *SheetsWorker) HandlePaymentEvent(ev *events.Event) error {
	var payload events.PaymentEventPayload
	if err := ev.Decode(&payload); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.EnqueuePayment(ctx, &models.Payment{ID: payload.PaymentID})
}

// enqueue schedules the task via redis, falling back to the in-memory queue.
func (w *SheetsWorker) enqueue(ctx context.Context, task Task) error {
	if w.redis != nil {
		if err := w.pushRedis(ctx, w.redisQueueKey, task); err != nil {
			w.logger.Warn().Err(err).Str("type", task.Type).Msg("sheets_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return fmt.Errorf("sheets_worker: queue full, %s task dropped", task.Type)
	}
}

// Start launches main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets_worker: started")
	defer w.logger.Info().Msg("sheets_worker: stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case t := <-w.queue:
			w.processTask(ctx, t)
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *SheetsWorker) tryLocalQueue() (Task, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return Task{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (Task, bool) {
	if w.redis == nil {
		return Task{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Warn().Err(err).Msg("sheets_worker: redis BRPOP error")
		}
		return Task{}, false
	}
	if len(res) != 2 {
		return Task{}, false
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("sheets_worker: decode redis task")
		return Task{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task Task) {
	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}
	w.logger.Debug().Str("type", task.Type).Int64("payment_id", task.PaymentID).Msg("sheets_worker: task completed")
}

func (w *SheetsWorker) handleTask(ctx context.Context, task Task) error {
	switch task.Type {
	case TaskPayment:
		if task.PaymentID == 0 {
			return errors.New("payment id missing")
		}
		payment, err := w.payments.GetPayment(ctx, task.PaymentID)
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}
		return w.sheets.UpsertPayment(ctx, payment)
	case TaskUsers:
		return w.sheets.ReplaceUsers(ctx, task.Users)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task Task, cause error) {
	task.Attempt++
	task.LastError = cause.Error()
	l := w.logger.With().Str("type", task.Type).Int64("payment_id", task.PaymentID).Int("attempt", task.Attempt).Logger()

	if w.retryPolicy.Exhausted(task.Attempt) {
		l.Error().Err(cause).Msg("sheets_worker: task failed")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	l.Warn().Err(cause).Dur("retry_in", delay).Msg("sheets_worker: task will be retried")

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			if err := w.enqueue(ctx, task); err != nil {
				l.Error().Err(err).Msg("sheets_worker: requeue failed")
			}
		}
	}()
}

func (w *SheetsWorker) pushRedis(ctx context.Context, key string, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task Task) {
	if w.redis == nil {
		return
	}
	if err := w.pushRedis(ctx, w.deadLetterKey, task); err != nil {
		w.logger.Error().Err(err).Str("type", task.Type).Msg("sheets_worker: deadletter push failed")
	}
}
