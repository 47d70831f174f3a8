package application

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Evaluator,Store,AuditPublisher,TxRunner

import (
	"context"

	"github.com/google/uuid"

	"cardeval/internal/evaluator"
	audit "cardeval/pkg/platform/audit"
)

// Evaluator is the rule chain the service drives.
type Evaluator interface {
	Evaluate(app evaluator.Application) evaluator.Decision
	EvaluateUsingOut(app evaluator.Application) evaluator.Decision
	LookupCount() int64
}

// Store persists evaluation records.
type Store interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner runs fn inside a transaction carried by the context passed to fn.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
