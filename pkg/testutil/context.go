package testutil

import (
	"net/http"
	"time"

	"cardeval/pkg/requestcontext"
)

// WithActor adds an authenticated caller to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, actorID, role string) *http.Request {
	ctx := requestcontext.WithActorID(req.Context(), actorID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithChannel adds client metadata to the request context.
func WithChannel(req *http.Request, userAgent, channel string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), "192.0.2.1", userAgent, channel))
}

// WithRequestTime pins the request-scoped time.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
