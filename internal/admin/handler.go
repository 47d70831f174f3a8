package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cardeval/internal/validator"
	"cardeval/internal/validator/license"
	dErrors "cardeval/pkg/domain-errors"
	audit "cardeval/pkg/platform/audit"
	"cardeval/pkg/platform/httputil"
	"cardeval/pkg/requestcontext"
)

// MemberDirectory is the writable side of the frequent flyer directory.
type MemberDirectory interface {
	Upsert(ctx context.Context, number string, active bool) error
}

// Watchlist accepts numbers linked to confirmed fraud.
type Watchlist interface {
	Add(ctx context.Context, numbers ...string) error
}

// LicenseSource exposes the validator's current license.
type LicenseSource interface {
	ServiceInformation() *license.ServiceInformation
}

// AuditLister reads the audit trail of a subject. It may be nil.
type AuditLister interface {
	ListBySubject(ctx context.Context, subject string) ([]audit.Event, error)
}

// Handler serves operator endpoints. Mount it behind the admin token middleware.
type Handler struct {
	directory MemberDirectory
	watchlist Watchlist
	license   LicenseSource
	audit     AuditLister
	logger    *slog.Logger
}

func New(directory MemberDirectory, watchlist Watchlist, license LicenseSource, audit AuditLister, logger *slog.Logger) *Handler {
	return &Handler{
		directory: directory,
		watchlist: watchlist,
		license:   license,
		audit:     audit,
		logger:    logger,
	}
}

// Register mounts admin endpoints on r. Callers choose the prefix.
func (h *Handler) Register(r chi.Router) {
	r.Put("/members/{number}", h.HandleUpsertMember)
	r.Post("/watchlist", h.HandleAddToWatchlist)
	r.Get("/license", h.HandleGetLicense)
	r.Get("/audit/{subject}", h.HandleListAudit)
}

// HandleUpsertMember handles PUT /admin/members/{number}.
func (h *Handler) HandleUpsertMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	number, ok := validator.Normalize(chi.URLParam(r, "number"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "frequent flyer number is malformed"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpsertMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.directory.Upsert(ctx, number, *req.Active); err != nil {
		h.logger.ErrorContext(ctx, "failed to upsert member",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member"))
		return
	}

	h.logger.InfoContext(ctx, "member upserted",
		"request_id", requestID,
		"active", *req.Active,
	)
	httputil.WriteJSON(w, http.StatusOK, MemberResponse{
		FrequentFlyerNumber: number,
		Active:              *req.Active,
	})
}

// HandleAddToWatchlist handles POST /admin/watchlist.
func (h *Handler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddWatchlistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.watchlist.Add(ctx, req.FrequentFlyerNumber); err != nil {
		h.logger.ErrorContext(ctx, "failed to add to watchlist",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "watchlist unavailable"))
		return
	}

	h.logger.InfoContext(ctx, "number added to watchlist", "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, WatchlistResponse{
		FrequentFlyerNumber: req.FrequentFlyerNumber,
		Watchlisted:         true,
	})
}

// HandleGetLicense handles GET /admin/license. The key itself is never returned.
func (h *Handler) HandleGetLicense(w http.ResponseWriter, r *http.Request) {
	now := requestcontext.Now(r.Context())
	httputil.WriteJSON(w, http.StatusOK, FromServiceInformation(h.license.ServiceInformation(), now))
}

// HandleListAudit handles GET /admin/audit/{subject}. It is unavailable when
// the audit sink cannot be read back.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := chi.URLParam(r, "subject")

	if h.audit == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "audit trail is not queryable"))
		return
	}

	events, err := h.audit.ListBySubject(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(subject, events))
}

func licenseStatus(info *license.ServiceInformation, now time.Time) string {
	if info == nil || info.License == nil {
		return StatusMissing
	}
	if info.License.Key(now) == license.ExpiredKey {
		return StatusExpired
	}
	return StatusActive
}
