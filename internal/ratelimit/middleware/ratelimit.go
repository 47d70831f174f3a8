package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cardeval/internal/ratelimit"
	"cardeval/internal/ratelimit/metrics"
	"cardeval/pkg/platform/httputil"
	"cardeval/pkg/requestcontext"
)

type Middleware struct {
	store    ratelimit.BucketStore
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// New limits each caller to limit requests per window. A limit below one
// disables the middleware.
func New(store ratelimit.BucketStore, limit int, window time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limit:  limit,
		window: window,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if limit < 1 || window <= 0 || store == nil {
		m.disabled = true
	}
	if m.disabled {
		m.logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitActor keys the limit on the authenticated actor, or on the client
// IP when there is none. It must run after the auth and metadata middleware.
// Store failures let the request through.
func (m *Middleware) RateLimitActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := "actor:" + requestcontext.ActorID(ctx)
		if requestcontext.ActorID(ctx) == "" {
			key = "ip:" + requestcontext.ClientIP(ctx)
		}

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.metrics.IncrementStoreErrors()
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}
		m.metrics.IncrementCheck(result.Allowed)

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"actor_id", requestcontext.ActorID(ctx),
			)
			writeRateLimitExceeded(w, result)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *ratelimit.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &ratelimit.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "You have exceeded your request quota. Please try again later.",
		RetryAfter: result.RetryAfter,
		QuotaLimit: result.Limit,
		QuotaReset: result.ResetAt,
	})
}
