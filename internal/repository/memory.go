package repository

import (
	"context"
	"sync"
	"time"

	"marafon/internal/models"
)

// MemoryStateRepository keeps conversation state in process memory. Entries
// older than ttl are treated as absent.
type MemoryStateRepository struct {
	mu         sync.Mutex
	states     map[int64]models.UserState
	rateLimits map[int64]rateLimitEntry
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		states:     make(map[int64]models.UserState),
		rateLimits: make(map[int64]rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	if r.ttl > 0 && r.now().Sub(state.UpdatedAt) > r.ttl {
		delete(r.states, userID)
		return nil, nil
	}
	// Callers get a copy so they cannot mutate stored state.
	return &state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *state
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = r.now()
	}
	r.states[state.UserID] = stored
	return nil
}

func (r *MemoryStateRepository) ClearState(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[userID]
	if !ok || now.After(entry.expiresAt) {
		entry = rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry.count++
	}

	r.rateLimits[userID] = entry
	return entry.count <= limit, nil
}
