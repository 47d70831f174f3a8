package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "cardeval/pkg/domain-errors"
	"cardeval/pkg/platform/httputil"
	"cardeval/pkg/requestcontext"
)

// HeaderAdminToken carries the operator token for /admin endpoints.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards operator endpoints with a shared token. An empty
// expected token rejects every request.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	expected := []byte(expectedToken)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(r.Header.Get(HeaderAdminToken)), expected) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
