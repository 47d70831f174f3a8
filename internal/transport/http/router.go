package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cardeval/internal/admin"
	apphandler "cardeval/internal/application/handler"
	"cardeval/pkg/platform/httputil"
	adminmw "cardeval/pkg/platform/middleware/admin"
	"cardeval/pkg/platform/middleware/auth"
	"cardeval/pkg/platform/middleware/metadata"
	"cardeval/pkg/platform/middleware/request"
	"cardeval/pkg/platform/middleware/requesttime"
)

// RoleUnderwriter is the token role allowed to submit and read applications.
const RoleUnderwriter = "underwriter"

const (
	defaultRequestTimeout = 30 * time.Second
	readinessTimeout      = 2 * time.Second
)

// CheckFunc reports whether a backing dependency is reachable.
type CheckFunc func(ctx context.Context) error

// Dependencies holds everything the router mounts.
type Dependencies struct {
	Logger       *slog.Logger
	JWTValidator auth.JWTValidator
	AdminToken   string
	Applications *apphandler.Handler

	// RateLimit wraps application routes when set.
	RateLimit func(http.Handler) http.Handler

	// Admin is optional; without it /admin is not mounted.
	Admin *admin.Handler

	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer       prometheus.Gatherer
	ReadyChecks    map[string]CheckFunc
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with the shared middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(request.Logger(deps.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/health", handleHealth)
	r.Get("/health/ready", handleReady(deps.ReadyChecks, deps.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(timeout))
		r.Use(auth.RequireAuth(deps.JWTValidator, deps.Logger))
		r.Use(auth.RequireRole(deps.Logger, RoleUnderwriter))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		deps.Applications.Register(r)
	})

	if deps.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(chimiddleware.Timeout(timeout))
			r.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Admin.Register(r)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessResponse lists the state of every dependency check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleReady(checks map[string]CheckFunc, logger *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		resp := ReadinessResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.WarnContext(ctx, "readiness check failed",
					"check", name,
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				resp.Status = "unavailable"
				resp.Checks[name] = "down"
				continue
			}
			resp.Checks[name] = "up"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
