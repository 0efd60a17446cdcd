package ai

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/redis"
)

const breakerKeyPrefix = "am:ai:breaker:"

// CircuitBreaker tracks consecutive provider failures per (tenant, provider)
// pair in a sliding window. Every failure refreshes the window, so the
// counter only decays after a full quiet cooldown. A threshold of zero or
// less disables the breaker entirely.
type CircuitBreaker struct {
	store     BreakerStore
	threshold int64
	cooldown  time.Duration
}

func NewCircuitBreaker(store BreakerStore, threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{store: store, threshold: int64(threshold), cooldown: cooldown}
}

func breakerKey(tenantID, provider string) string {
	return fmt.Sprintf("%s%s:%s", breakerKeyPrefix, tenantID, provider)
}

// Open reports whether the breaker is tripped for the pair.
func (b *CircuitBreaker) Open(ctx context.Context, tenantID, provider string) (bool, error) {
	if b.threshold <= 0 {
		return false, nil
	}
	n, err := b.store.Get(ctx, breakerKey(tenantID, provider))
	if err != nil {
		return false, err
	}
	return n >= b.threshold, nil
}

// RecordFailure bumps the failure counter and refreshes its TTL.
func (b *CircuitBreaker) RecordFailure(ctx context.Context, tenantID, provider string) error {
	if b.threshold <= 0 {
		return nil
	}
	_, err := b.store.Incr(ctx, breakerKey(tenantID, provider), b.cooldown)
	return err
}

// RecordSuccess clears the counter so the pair starts from a clean slate.
func (b *CircuitBreaker) RecordSuccess(ctx context.Context, tenantID, provider string) error {
	return b.store.Reset(ctx, breakerKey(tenantID, provider))
}

type redisBreakerStore struct {
	rc *redis.Client
}

// NewRedisBreakerStore backs the breaker with the shared redis client.
func NewRedisBreakerStore(rc *redis.Client) BreakerStore {
	return &redisBreakerStore{rc: rc}
}

func (s *redisBreakerStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return s.rc.IncrEx(ctx, key, ttl)
}

func (s *redisBreakerStore) Get(ctx context.Context, key string) (int64, error) {
	return s.rc.GetInt64(ctx, key)
}

func (s *redisBreakerStore) Reset(ctx context.Context, key string) error {
	return s.rc.Del(ctx, key)
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryBreakerStore is an in-process BreakerStore used in tests and in
// mock mode, where a redis instance may not be running.
type MemoryBreakerStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	Clock func() time.Time
}

func NewMemoryBreakerStore() *MemoryBreakerStore {
	return &MemoryBreakerStore{entries: make(map[string]memoryEntry), Clock: time.Now}
}

func (s *MemoryBreakerStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Clock()
	e := s.entries[key]
	if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
		e = memoryEntry{}
	}
	e.count++
	e.expiresAt = now.Add(ttl)
	s.entries[key] = e
	return e.count, nil
}

func (s *MemoryBreakerStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	if !e.expiresAt.IsZero() && s.Clock().After(e.expiresAt) {
		delete(s.entries, key)
		return 0, nil
	}
	return e.count, nil
}

func (s *MemoryBreakerStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
