package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"cardeval/pkg/requestcontext"
)

// Channels an application can arrive through, derived from the User-Agent.
const (
	ChannelWeb     = "web"
	ChannelMobile  = "mobile"
	ChannelAPI     = "api"
	ChannelBot     = "bot"
	ChannelUnknown = "unknown"
)

// ClientMetadata extracts client IP address, User-Agent and channel from the
// request and adds them to the context for use by handlers and services.
// This middleware should be applied early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(),
			ClientIPFromRequest(r),
			userAgent,
			ChannelFromUserAgent(userAgent),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	return requestcontext.ClientIP(ctx)
}

// GetUserAgent retrieves the User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	return requestcontext.UserAgent(ctx)
}

// GetChannel retrieves the derived channel from the context.
func GetChannel(ctx context.Context) string {
	return requestcontext.Channel(ctx)
}

// ChannelFromUserAgent classifies a User-Agent. Browsers report web or mobile,
// crawlers report bot, and non-browser clients (SDKs, curl, partner
// integrations) report api.
func ChannelFromUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ChannelUnknown
	}

	ua := useragent.New(raw)
	switch {
	case ua.Bot():
		return ChannelBot
	case ua.Mozilla() == "":
		return ChannelAPI
	case ua.Mobile():
		return ChannelMobile
	default:
		return ChannelWeb
	}
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port", or "[::1]:port" for IPv6
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
