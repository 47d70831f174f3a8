package watchlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis set holding flagged frequent flyer numbers
const redisKey = "fraud:watchlist"

// InMemory is a process-local watchlist. It also serves as the fallback
// snapshot while the shared watchlist is unreachable.
type InMemory struct {
	mu      sync.RWMutex
	numbers map[string]struct{}
}

func NewInMemory(numbers ...string) *InMemory {
	w := &InMemory{}
	w.Replace(numbers)
	return w
}

func (w *InMemory) Contains(_ context.Context, number string) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.numbers[number]
	return ok, nil
}

func (w *InMemory) Add(_ context.Context, numbers ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, n := range numbers {
		w.numbers[n] = struct{}{}
	}
	return nil
}

// Replace swaps the whole list.
func (w *InMemory) Replace(numbers []string) {
	set := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	w.mu.Lock()
	w.numbers = set
	w.mu.Unlock()
}

func (w *InMemory) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.numbers)
}

// RedisWatchlist is the shared watchlist stored as a Redis set.
type RedisWatchlist struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisWatchlist {
	return &RedisWatchlist{client: client}
}

func (w *RedisWatchlist) Contains(ctx context.Context, number string) (bool, error) {
	ok, err := w.client.SIsMember(ctx, redisKey, number).Result()
	if err != nil {
		return false, fmt.Errorf("check watchlist: %w", err)
	}
	return ok, nil
}

func (w *RedisWatchlist) Add(ctx context.Context, numbers ...string) error {
	if len(numbers) == 0 {
		return nil
	}
	members := make([]any, len(numbers))
	for i, n := range numbers {
		members[i] = n
	}
	if err := w.client.SAdd(ctx, redisKey, members...).Err(); err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}
	return nil
}

// Snapshot returns every number on the shared watchlist.
func (w *RedisWatchlist) Snapshot(ctx context.Context) ([]string, error) {
	members, err := w.client.SMembers(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot watchlist: %w", err)
	}
	return members, nil
}
