package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose so stores
// and sinks can route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers decisions with regulatory significance.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events feeding fraud and security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine operational events.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// Subject is the application the event is about.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// ActorID is the authenticated caller that submitted the application.
	ActorID string
	// Channel describes the client software, derived from the User-Agent.
	Channel string
}

type AuditEvent string

const (
	EventApplicationEvaluated AuditEvent = "application_evaluated"
	EventFraudReferral        AuditEvent = "fraud_referral"
	EventLicenseReloaded      AuditEvent = "license_reloaded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventApplicationEvaluated: CategoryCompliance,
	EventFraudReferral:        CategorySecurity,
	EventLicenseReloaded:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is the interface services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
