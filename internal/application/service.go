package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cardeval/internal/application/metrics"
	"cardeval/internal/evaluator"
	dErrors "cardeval/pkg/domain-errors"
	audit "cardeval/pkg/platform/audit"
	"cardeval/pkg/platform/sentinel"
	"cardeval/pkg/requestcontext"
)

const tracerName = "cardeval/internal/application"

// Service accepts applications, runs them through the evaluator and keeps a
// record of every decision.
//
// The evaluator switches the validator's mode before each check, so
// evaluations are serialized to keep mode selection and lookup together.
type Service struct {
	evaluator Evaluator
	store     Store
	auditor   AuditPublisher
	tx        TxRunner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	evalMu    sync.Mutex
	evaluated atomic.Int64
}

type Option func(*Service)

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

// WithTxRunner makes the record write and its audit events one unit of work.
func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func New(eval Evaluator, store Store, opts ...Option) (*Service, error) {
	if eval == nil {
		return nil, errors.New("evaluator is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	s := &Service{
		evaluator: eval,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Evaluate decides the application and persists the outcome. The decision
// itself cannot fail; an error means the record or its audit trail could not
// be written.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Record, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	ctx, span := s.tracer.Start(ctx, "application.Evaluate")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	if req.Path == "" {
		req.Path = evaluator.PathStandard
	}

	decision, lookups := s.decide(req)
	span.SetAttributes(
		attribute.String("application.decision", decision.String()),
		attribute.String("application.path", string(req.Path)),
		attribute.Int64("application.lookups", lookups),
	)

	record := &Record{
		ID:          uuid.New(),
		Application: req.Application,
		Decision:    decision,
		Path:        req.Path,
		LookupCount: lookups,
		EvaluatedAt: requestcontext.Now(ctx),
		RequestID:   req.RequestID,
		ActorID:     req.ActorID,
		Channel:     req.Channel,
	}

	if err := s.persist(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	s.evaluated.Add(1)
	s.metrics.IncrementEvaluation(decision.String(), string(req.Path))
	s.logger.InfoContext(ctx, "application evaluated",
		"application_id", record.ID,
		"decision", decision,
		"path", req.Path,
		"lookups", lookups,
		"request_id", req.RequestID,
	)
	return record, nil
}

func (s *Service) decide(req EvaluateRequest) (evaluator.Decision, int64) {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	before := s.evaluator.LookupCount()
	var decision evaluator.Decision
	if req.Path == evaluator.PathOut {
		decision = s.evaluator.EvaluateUsingOut(req.Application)
	} else {
		decision = s.evaluator.Evaluate(req.Application)
	}
	return decision, s.evaluator.LookupCount() - before
}

func (s *Service) persist(ctx context.Context, record *Record) error {
	write := func(ctx context.Context) error {
		if err := s.store.Save(ctx, record); err != nil {
			s.metrics.IncrementFailure("store")
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application record")
		}
		if err := s.emit(ctx, record); err != nil {
			s.metrics.IncrementFailure("audit")
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
		return nil
	}

	if s.tx == nil {
		return write(ctx)
	}
	return s.tx.RunInTx(ctx, write)
}

func (s *Service) emit(ctx context.Context, record *Record) error {
	if s.auditor == nil {
		return nil
	}

	event := audit.Event{
		Subject:   record.ID.String(),
		Action:    string(audit.EventApplicationEvaluated),
		Decision:  record.Decision.String(),
		Reason:    string(record.Path),
		RequestID: record.RequestID,
		ActorID:   record.ActorID,
		Channel:   record.Channel,
		Timestamp: record.EvaluatedAt,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		return err
	}

	if record.Decision == evaluator.ReferredToHumanFraudRisk {
		event.Action = string(audit.EventFraudReferral)
		event.Reason = "fraud_risk"
		if err := s.auditor.Emit(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a stored record by its identifier.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid application id")
	}

	record, err := s.store.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return record, nil
}

// Stats reports the evaluator's lookup count and the number of applications
// evaluated by this service.
func (s *Service) Stats() Stats {
	return Stats{
		LookupCount: s.evaluator.LookupCount(),
		Evaluated:   s.evaluated.Load(),
	}
}
