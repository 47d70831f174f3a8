package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Snapshotter lists every number on a watchlist.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]string, error)
}

// Adder accepts new watchlist entries.
type Adder interface {
	Add(ctx context.Context, numbers ...string) error
}

// Seed adds locally configured numbers to the shared watchlist. Sync replaces
// the local snapshot wholesale, so entries that only exist locally would be
// dropped on the first refresh.
func Seed(ctx context.Context, shared Adder, numbers []string) error {
	if len(numbers) == 0 {
		return nil
	}
	if err := shared.Add(ctx, numbers...); err != nil {
		return fmt.Errorf("seed shared watchlist: %w", err)
	}
	return nil
}

// Sync copies the shared watchlist into target every interval until ctx is
// cancelled. The first copy happens immediately. A failed snapshot keeps the
// previous contents of target.
func Sync(ctx context.Context, source Snapshotter, target *InMemory, interval time.Duration, logger *slog.Logger) error {
	refresh := func() {
		numbers, err := source.Snapshot(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.WarnContext(ctx, "watchlist sync failed, keeping previous snapshot", "error", err)
			}
			return
		}
		target.Replace(numbers)
		logger.DebugContext(ctx, "watchlist synced", "size", len(numbers))
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			refresh()
		}
	}
}
