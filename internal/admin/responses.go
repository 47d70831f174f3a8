package admin

import (
	"time"

	"cardeval/internal/validator/license"
	audit "cardeval/pkg/platform/audit"
)

// License status values reported by GET /admin/license.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusMissing = "missing"
)

// MemberResponse is the HTTP response DTO for a directory entry.
type MemberResponse struct {
	FrequentFlyerNumber string `json:"frequent_flyer_number"`
	Active              bool   `json:"active"`
}

// WatchlistResponse confirms a watchlist addition.
type WatchlistResponse struct {
	FrequentFlyerNumber string `json:"frequent_flyer_number"`
	Watchlisted         bool   `json:"watchlisted"`
}

// LicenseResponse describes the validator license without its key.
type LicenseResponse struct {
	Name      string     `json:"name,omitempty"`
	Version   string     `json:"version,omitempty"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AuditEventResponse is the HTTP response DTO for one audit event.
type AuditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditTrailResponse wraps the events of one subject.
type AuditTrailResponse struct {
	Subject string               `json:"subject"`
	Events  []AuditEventResponse `json:"events"`
	Total   int                  `json:"total"`
}

func FromServiceInformation(info *license.ServiceInformation, now time.Time) LicenseResponse {
	resp := LicenseResponse{Status: licenseStatus(info, now)}
	if info == nil {
		return resp
	}
	resp.Name = info.Name
	resp.Version = info.Version
	if info.License != nil && !info.License.ExpiresAt.IsZero() {
		expiresAt := info.License.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

func FromEvents(subject string, events []audit.Event) AuditTrailResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			ID:        e.ID.String(),
			Category:  string(e.Category),
			Action:    e.Action,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
			ActorID:   e.ActorID,
			Channel:   e.Channel,
			Timestamp: e.Timestamp,
		})
	}
	return AuditTrailResponse{
		Subject: subject,
		Events:  out,
		Total:   len(out),
	}
}
