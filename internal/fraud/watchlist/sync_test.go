package watchlist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshotter struct {
	calls   atomic.Int32
	numbers []string
	err     error
}

func (s *stubSnapshotter) Snapshot(context.Context) ([]string, error) {
	s.calls.Add(1)
	return s.numbers, s.err
}

func TestSync(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("copies the shared list into the local snapshot", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		source := &stubSnapshotter{numbers: []string{"ZZ999", "QQ1"}}
		target := NewInMemory("AB1")

		done := make(chan error, 1)
		go func() { done <- Sync(ctx, source, target, time.Hour, logger) }()

		require.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
		require.Eventually(t, func() bool { return target.Len() == 2 }, time.Second, 5*time.Millisecond)

		ok, err := target.Contains(ctx, "ZZ999")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = target.Contains(ctx, "AB1")
		require.NoError(t, err)
		assert.False(t, ok)

		cancel()
		assert.NoError(t, <-done)
	})

	t.Run("keeps previous contents when the snapshot fails", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		source := &stubSnapshotter{err: errors.New("connection refused")}
		target := NewInMemory("AB1")

		done := make(chan error, 1)
		go func() { done <- Sync(ctx, source, target, 10*time.Millisecond, logger) }()

		require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		ok, err := target.Contains(context.Background(), "AB1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestSeed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("configured numbers survive the first sync", func(t *testing.T) {
		shared := &seededSnapshotter{list: NewInMemory()}
		local := NewInMemory("AB123")

		require.NoError(t, Seed(ctx, shared, []string{"AB123"}))

		syncCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- Sync(syncCtx, shared, local, time.Hour, logger) }()
		require.Eventually(t, func() bool { return shared.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
		cancel()
		require.NoError(t, <-done)

		listed, err := local.Contains(ctx, "AB123")
		require.NoError(t, err)
		assert.True(t, listed)
	})

	t.Run("nothing to seed", func(t *testing.T) {
		require.NoError(t, Seed(ctx, failingAdder{}, nil))
	})

	t.Run("wraps add errors", func(t *testing.T) {
		err := Seed(ctx, failingAdder{}, []string{"AB123"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed shared watchlist")
	})
}

// seededSnapshotter serves an in-memory list as the shared watchlist.
type seededSnapshotter struct {
	list  *InMemory
	calls atomic.Int32
}

func (s *seededSnapshotter) Add(ctx context.Context, numbers ...string) error {
	return s.list.Add(ctx, numbers...)
}

func (s *seededSnapshotter) Snapshot(context.Context) ([]string, error) {
	s.calls.Add(1)
	s.list.mu.RLock()
	defer s.list.mu.RUnlock()
	out := make([]string, 0, len(s.list.numbers))
	for n := range s.list.numbers {
		out = append(out, n)
	}
	return out, nil
}

type failingAdder struct{}

func (failingAdder) Add(context.Context, ...string) error {
	return errors.New("connection refused")
}
