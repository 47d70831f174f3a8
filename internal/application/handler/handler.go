package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cardeval/internal/application"
	dErrors "cardeval/pkg/domain-errors"
	"cardeval/pkg/platform/httputil"
	"cardeval/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for application intake operations.
type Service interface {
	Evaluate(ctx context.Context, req application.EvaluateRequest) (*application.Record, error)
	Get(ctx context.Context, id string) (*application.Record, error)
	Stats() application.Stats
}

// Handler wires application endpoints to the intake service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an application handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts application endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/applications/evaluate", h.HandleEvaluate)
	r.Get("/applications/stats", h.HandleStats)
	r.Get("/applications/{id}", h.HandleGet)
}

// HandleEvaluate handles POST /applications/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	actorID := requestcontext.ActorID(ctx)
	if actorID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Evaluate(ctx, application.EvaluateRequest{
		Application: req.Application(),
		Path:        req.ParsedPath(),
		RequestID:   requestID,
		ActorID:     actorID,
		Channel:     requestcontext.Channel(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "application evaluation failed",
			"request_id", requestID,
			"actor_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "application decision returned",
		"request_id", requestID,
		"actor_id", actorID,
		"application_id", record.ID,
		"decision", record.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusCreated, FromRecord(record))
}

// HandleGet handles GET /applications/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to load application",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleStats handles GET /applications/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromStats(h.service.Stats()))
}
