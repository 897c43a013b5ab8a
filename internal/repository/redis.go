package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marafon/internal/config"
	"marafon/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix     = "marafon:state:"
	rateLimitKeyPrefix = "marafon:rate:"
)

var errNoClient = errors.New("redis client is not configured")

// RedisStateRepository keeps funnel state as JSON under a per-user key that
// expires after ttl of inactivity.
type RedisStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStateRepository(client *redis.Client, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{client: client, ttl: ttl}
}

func stateKey(userID int64) string {
	return stateKeyPrefix + strconv.FormatInt(userID, 10)
}

func rateKey(userID int64) string {
	return rateLimitKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	if r.client == nil {
		return nil, errNoClient
	}

	raw, err := r.client.Get(ctx, stateKey(userID)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get state %d: %w", userID, err)
	}

	state := &models.UserState{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode state %d: %w", userID, err)
	}
	return state, nil
}

func (r *RedisStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	if r.client == nil {
		return errNoClient
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state %d: %w", state.UserID, err)
	}
	if err := r.client.Set(ctx, stateKey(state.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set state %d: %w", state.UserID, err)
	}
	return nil
}

func (r *RedisStateRepository) ClearState(ctx context.Context, userID int64) error {
	if r.client == nil {
		return errNoClient
	}
	if err := r.client.Del(ctx, stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis clear state %d: %w", userID, err)
	}
	return nil
}

// CheckRateLimit counts messages in a fixed window opened by the first one.
// A counter left without expiry (lost EXPIRE) gets its window restored on
// the next call.
func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, errNoClient
	}
	key := rateKey(userID)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit %d: %w", userID, err)
	}

	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("redis rate window %d: %w", userID, err)
		}
	}
	return incr.Val() <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return errNoClient
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
