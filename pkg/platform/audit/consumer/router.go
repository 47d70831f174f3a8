package consumer

import (
	"context"
	"log/slog"

	audit "cardeval/pkg/platform/audit"
)

// Router dispatches decoded audit events to category-specific stores.
type Router struct {
	stores   map[audit.EventCategory]audit.Store
	fallback audit.Store
	logger   *slog.Logger
}

// NewRouter creates a category router with an optional fallback store.
func NewRouter(logger *slog.Logger, fallback audit.Store) *Router {
	return &Router{
		stores:   make(map[audit.EventCategory]audit.Store),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a store for a specific category.
func (r *Router) Register(category audit.EventCategory, store audit.Store) {
	r.stores[category] = store
}

// Append routes the event to the store registered for its category.
func (r *Router) Append(ctx context.Context, event audit.Event) error {
	store, ok := r.stores[event.Category]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Append(ctx, event)
		}
		r.logger.WarnContext(ctx, "no store for category, skipping event",
			"category", event.Category,
			"subject", event.Subject,
		)
		return nil // Commit to avoid redelivery
	}
	return store.Append(ctx, event)
}
