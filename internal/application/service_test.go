package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cardeval/internal/application"
	"cardeval/internal/application/metrics"
	"cardeval/internal/application/mocks"
	"cardeval/internal/evaluator"
	dErrors "cardeval/pkg/domain-errors"
	audit "cardeval/pkg/platform/audit"
	"cardeval/pkg/platform/sentinel"
	"cardeval/pkg/requestcontext"
)

type ApplicationServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	evaluator *mocks.MockEvaluator
	store     *mocks.MockStore
	auditor   *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	service   *application.Service
	ctx       context.Context
	now       time.Time
}

func TestApplicationServiceSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceSuite))
}

func (s *ApplicationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.evaluator = mocks.NewMockEvaluator(s.ctrl)
	s.store = mocks.NewMockStore(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.now = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	svc, err := application.New(s.evaluator, s.store,
		application.WithAuditPublisher(s.auditor),
		application.WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ApplicationServiceSuite) request(app evaluator.Application, path evaluator.Path) application.EvaluateRequest {
	return application.EvaluateRequest{
		Application: app,
		Path:        path,
		RequestID:   "req-1",
		ActorID:     "underwriter-7",
		Channel:     "web",
	}
}

// expectLookups makes LookupCount report before and then after.
func (s *ApplicationServiceSuite) expectLookups(before, after int64) {
	gomock.InOrder(
		s.evaluator.EXPECT().LookupCount().Return(before),
		s.evaluator.EXPECT().LookupCount().Return(after),
	)
}

func (s *ApplicationServiceSuite) TestNew() {
	_, err := application.New(nil, s.store)
	s.Require().Error(err)

	_, err = application.New(s.evaluator, nil)
	s.Require().Error(err)
}

// =============================================================================
// Evaluate
// =============================================================================

func (s *ApplicationServiceSuite) TestEvaluate_StandardPath() {
	app := evaluator.Application{GrossAnnualIncome: 19_000, Age: 21, FrequentFlyerNumber: "AB123"}
	s.expectLookups(4, 5)
	s.evaluator.EXPECT().Evaluate(app).Return(evaluator.AutoDeclined)

	var saved *application.Record
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record *application.Record) error {
			saved = record
			return nil
		})
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventApplicationEvaluated), event.Action)
			s.Equal("auto_declined", event.Decision)
			s.Equal("underwriter-7", event.ActorID)
			s.Equal("web", event.Channel)
			s.Equal(saved.ID.String(), event.Subject)
			return nil
		})

	record, err := s.service.Evaluate(s.ctx, s.request(app, ""))
	s.Require().NoError(err)

	s.Same(saved, record)
	s.NotEqual(uuid.Nil, record.ID)
	s.Equal(evaluator.AutoDeclined, record.Decision)
	s.Equal(evaluator.PathStandard, record.Path)
	s.Equal(int64(1), record.LookupCount)
	s.Equal(s.now, record.EvaluatedAt)
	s.Equal("req-1", record.RequestID)
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Evaluations.WithLabelValues("auto_declined", "standard")))
}

func (s *ApplicationServiceSuite) TestEvaluate_OutPath() {
	app := evaluator.Application{FrequentFlyerNumber: "AB123"}
	s.expectLookups(0, 1)
	s.evaluator.EXPECT().EvaluateUsingOut(app).Return(evaluator.AutoDeclined)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	record, err := s.service.Evaluate(s.ctx, s.request(app, evaluator.PathOut))
	s.Require().NoError(err)
	s.Equal(evaluator.PathOut, record.Path)
	s.Equal(evaluator.AutoDeclined, record.Decision)
}

func (s *ApplicationServiceSuite) TestEvaluate_FraudReferralEmitsSecurityEvent() {
	app := evaluator.Application{GrossAnnualIncome: 150_000, Age: 40, FrequentFlyerNumber: "ZZ999"}
	s.expectLookups(0, 0)
	s.evaluator.EXPECT().Evaluate(app).Return(evaluator.ReferredToHumanFraudRisk)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	var actions []string
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			actions = append(actions, event.Action)
			return nil
		})

	_, err := s.service.Evaluate(s.ctx, s.request(app, evaluator.PathStandard))
	s.Require().NoError(err)
	s.Equal([]string{
		string(audit.EventApplicationEvaluated),
		string(audit.EventFraudReferral),
	}, actions)
}

func (s *ApplicationServiceSuite) TestEvaluate_RejectsInvalidRequests() {
	cases := map[string]application.EvaluateRequest{
		"negative income": {Application: evaluator.Application{GrossAnnualIncome: -1}},
		"negative age":    {Application: evaluator.Application{Age: -1}},
		"long number":     {Application: evaluator.Application{FrequentFlyerNumber: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"}},
		"unknown path":    {Path: "sideways"},
	}
	for name, req := range cases {
		_, err := s.service.Evaluate(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), name)
	}
}

func (s *ApplicationServiceSuite) TestEvaluate_StoreFailure() {
	s.expectLookups(0, 1)
	s.evaluator.EXPECT().Evaluate(gomock.Any()).Return(evaluator.ReferredToHuman)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := s.service.Evaluate(s.ctx, s.request(evaluator.Application{Age: 25}, ""))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Failures.WithLabelValues("store")))

	s.evaluator.EXPECT().LookupCount().Return(int64(1))
	stats := s.service.Stats()
	s.Equal(int64(0), stats.Evaluated, "failed saves are not counted")
	s.Equal(int64(1), stats.LookupCount)
}

func (s *ApplicationServiceSuite) TestEvaluate_AuditFailure() {
	s.expectLookups(0, 1)
	s.evaluator.EXPECT().Evaluate(gomock.Any()).Return(evaluator.ReferredToHuman)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit buffer full"))

	_, err := s.service.Evaluate(s.ctx, s.request(evaluator.Application{Age: 25}, ""))
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Failures.WithLabelValues("audit")))
}

func (s *ApplicationServiceSuite) TestEvaluate_RunsInTransaction() {
	tx := mocks.NewMockTxRunner(s.ctrl)
	svc, err := application.New(s.evaluator, s.store,
		application.WithAuditPublisher(s.auditor),
		application.WithTxRunner(tx),
	)
	s.Require().NoError(err)

	type txMarker struct{}
	tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(context.WithValue(ctx, txMarker{}, true))
		})

	s.expectLookups(0, 1)
	s.evaluator.EXPECT().Evaluate(gomock.Any()).Return(evaluator.AutoAccepted)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *application.Record) error {
			s.Equal(true, ctx.Value(txMarker{}))
			return nil
		})
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ audit.Event) error {
			s.Equal(true, ctx.Value(txMarker{}))
			return nil
		})

	_, err = svc.Evaluate(s.ctx, s.request(evaluator.Application{GrossAnnualIncome: 100_000}, ""))
	s.Require().NoError(err)
}

func (s *ApplicationServiceSuite) TestEvaluate_WithoutAuditPublisher() {
	svc, err := application.New(s.evaluator, s.store)
	s.Require().NoError(err)

	s.expectLookups(2, 2)
	s.evaluator.EXPECT().Evaluate(gomock.Any()).Return(evaluator.AutoAccepted)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	record, err := svc.Evaluate(s.ctx, s.request(evaluator.Application{GrossAnnualIncome: 250_000}, ""))
	s.Require().NoError(err)
	s.Equal(int64(0), record.LookupCount)
}

// =============================================================================
// Get and Stats
// =============================================================================

func (s *ApplicationServiceSuite) TestGet() {
	id := uuid.New()

	s.Run("found", func() {
		want := &application.Record{ID: id, Decision: evaluator.AutoAccepted}
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(want, nil)

		got, err := s.service.Get(s.ctx, id.String())
		s.Require().NoError(err)
		s.Same(want, got)
	})

	s.Run("not found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Get(s.ctx, id.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure", func() {
		s.store.EXPECT().FindByID(gomock.Any(), id).Return(nil, errors.New("timeout"))

		_, err := s.service.Get(s.ctx, id.String())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("malformed id", func() {
		_, err := s.service.Get(s.ctx, "not-a-uuid")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ApplicationServiceSuite) TestStats() {
	s.expectLookups(0, 1)
	s.evaluator.EXPECT().Evaluate(gomock.Any()).Return(evaluator.ReferredToHuman)
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Evaluate(s.ctx, s.request(evaluator.Application{Age: 25}, ""))
	s.Require().NoError(err)

	s.evaluator.EXPECT().LookupCount().Return(int64(7))
	stats := s.service.Stats()
	s.Equal(int64(7), stats.LookupCount)
	s.Equal(int64(1), stats.Evaluated)
}
