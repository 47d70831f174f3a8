package evaluator_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cardeval/internal/evaluator"
	"cardeval/internal/evaluator/metrics"
	"cardeval/internal/evaluator/mocks"
)

// =============================================================================
// Evaluator Test Suite
// =============================================================================
// The evaluator is the only place the decision rules live, so every rule,
// boundary and collaborator interaction is pinned here with strict mocks:
// an unexpected validator call fails the test.

type EvaluatorSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	validator    *mocks.MockValidator
	fraud        *mocks.MockFraudLookup
	notify       func()
	unsubscribed bool
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.validator = mocks.NewMockValidator(s.ctrl)
	s.fraud = mocks.NewMockFraudLookup(s.ctrl)
	s.notify = nil
	s.unsubscribed = false
}

func (s *EvaluatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EvaluatorSuite) expectSubscription() {
	s.validator.EXPECT().OnLookupPerformed(gomock.Any()).DoAndReturn(func(fn func()) func() {
		s.notify = fn
		return func() { s.unsubscribed = true }
	})
}

func (s *EvaluatorSuite) newEvaluator(opts ...evaluator.Option) *evaluator.Evaluator {
	s.expectSubscription()
	e, err := evaluator.New(s.validator, opts...)
	s.Require().NoError(err)
	return e
}

// expectValidation sets up the calls made by rules 3–5 for a valid license.
func (s *EvaluatorSuite) expectValidation(number string, mode evaluator.ValidationMode, valid bool, err error) {
	s.validator.EXPECT().LicenseKey().Return("")
	s.validator.EXPECT().SetValidationMode(mode)
	s.validator.EXPECT().IsValid(number).Return(valid, err)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *EvaluatorSuite) TestNew() {
	s.Run("nil validator returns error", func() {
		_, err := evaluator.New(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "validator is required")
	})

	s.Run("subscribes to lookup notifications", func() {
		e := s.newEvaluator()
		s.NotNil(s.notify)
		s.Equal(int64(0), e.LookupCount())
	})
}

// =============================================================================
// Rule Chain Scenarios
// =============================================================================

func (s *EvaluatorSuite) TestEvaluate_AcceptsHighIncomeApplications() {
	e := s.newEvaluator()

	decision := e.Evaluate(evaluator.Application{GrossAnnualIncome: 100_000})

	s.Equal(evaluator.AutoAccepted, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ReferYoungApplications() {
	e := s.newEvaluator()
	s.expectValidation("", evaluator.Quick, true, nil)

	decision := e.Evaluate(evaluator.Application{Age: 19})

	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_DeclineLowIncomeApplications() {
	e := s.newEvaluator()
	s.expectValidation("XXX1", evaluator.Detailed, true, nil)

	decision := e.Evaluate(evaluator.Application{
		GrossAnnualIncome:   19_999,
		Age:                 42,
		FrequentFlyerNumber: "XXX1",
	})

	s.Equal(evaluator.AutoDeclined, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ReferWhenLicenseKeyExpired() {
	e := s.newEvaluator()
	s.validator.EXPECT().LicenseKey().Return(evaluator.LicenseKeyExpired)

	decision := e.Evaluate(evaluator.Application{})

	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ReferInvalidFrequentFlyerApplications() {
	e := s.newEvaluator()
	s.expectValidation("", evaluator.Quick, false, nil)

	decision := e.Evaluate(evaluator.Application{})

	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ReferFraudRisk() {
	e := s.newEvaluator(evaluator.WithFraudLookup(s.fraud))
	s.fraud.EXPECT().IsFraudRisk(evaluator.Application{}).Return(true)

	decision := e.Evaluate(evaluator.Application{})

	s.Equal(evaluator.ReferredToHumanFraudRisk, decision)
}

func (s *EvaluatorSuite) TestEvaluate_FraudRiskTakesPrecedenceOverHighIncome() {
	e := s.newEvaluator(evaluator.WithFraudLookup(s.fraud))
	app := evaluator.Application{GrossAnnualIncome: 250_000, Age: 45}
	s.fraud.EXPECT().IsFraudRisk(app).Return(true)

	s.Equal(evaluator.ReferredToHumanFraudRisk, e.Evaluate(app))
}

func (s *EvaluatorSuite) TestEvaluate_NoFraudRiskContinuesRuleChain() {
	e := s.newEvaluator(evaluator.WithFraudLookup(s.fraud))
	app := evaluator.Application{GrossAnnualIncome: 150_000}
	s.fraud.EXPECT().IsFraudRisk(app).Return(false)

	s.Equal(evaluator.AutoAccepted, e.Evaluate(app))
}

func (s *EvaluatorSuite) TestEvaluate_ReferWhenValidatorErrors() {
	e := s.newEvaluator()
	s.expectValidation("", evaluator.Detailed, false, errors.New("directory unavailable"))

	decision := e.Evaluate(evaluator.Application{Age: 42})

	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ValidatorErrorIgnoresResult() {
	e := s.newEvaluator()
	s.expectValidation("", evaluator.Detailed, true, errors.New("timeout"))

	decision := e.Evaluate(evaluator.Application{Age: 42, GrossAnnualIncome: 5_000})

	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_ReferWhenValidatorPanics() {
	e := s.newEvaluator()
	s.validator.EXPECT().LicenseKey().Return("")
	s.validator.EXPECT().SetValidationMode(evaluator.Detailed)
	s.validator.EXPECT().IsValid("AB123").DoAndReturn(func(string) (bool, error) {
		panic("nil directory")
	})

	var decision evaluator.Decision
	s.NotPanics(func() {
		decision = e.Evaluate(evaluator.Application{Age: 42, GrossAnnualIncome: 5_000, FrequentFlyerNumber: "AB123"})
	})
	s.Equal(evaluator.ReferredToHuman, decision)
}

func (s *EvaluatorSuite) TestEvaluate_SequentialValidatorResults() {
	e := s.newEvaluator()
	app := evaluator.Application{Age: 25}
	s.validator.EXPECT().LicenseKey().Return("").Times(2)
	s.validator.EXPECT().SetValidationMode(evaluator.Quick).Times(2)
	gomock.InOrder(
		s.validator.EXPECT().IsValid("").Return(false, nil),
		s.validator.EXPECT().IsValid("").Return(true, nil),
	)

	s.Equal(evaluator.ReferredToHuman, e.Evaluate(app))
	s.Equal(evaluator.AutoDeclined, e.Evaluate(app))
}

// =============================================================================
// Boundary Tests
// =============================================================================

func (s *EvaluatorSuite) TestEvaluate_Boundaries() {
	cases := []struct {
		name     string
		app      evaluator.Application
		mode     evaluator.ValidationMode
		expected evaluator.Decision
	}{
		{"age 20 is still young", evaluator.Application{Age: 20}, evaluator.Quick, evaluator.ReferredToHuman},
		{"age 21 with low income declines", evaluator.Application{Age: 21, GrossAnnualIncome: 19_999.99}, evaluator.Quick, evaluator.AutoDeclined},
		{"income 20000 is referred", evaluator.Application{Age: 21, GrossAnnualIncome: 20_000}, evaluator.Quick, evaluator.ReferredToHuman},
		{"income just below high threshold is referred", evaluator.Application{Age: 50, GrossAnnualIncome: 99_999.99}, evaluator.Detailed, evaluator.ReferredToHuman},
		{"age 29 uses quick mode", evaluator.Application{Age: 29}, evaluator.Quick, evaluator.AutoDeclined},
		{"age 30 uses detailed mode", evaluator.Application{Age: 30}, evaluator.Detailed, evaluator.AutoDeclined},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			e := s.newEvaluator()
			s.expectValidation(tc.app.FrequentFlyerNumber, tc.mode, true, nil)
			s.Equal(tc.expected, e.Evaluate(tc.app))
		})
	}
}

func (s *EvaluatorSuite) TestEvaluate_HighIncomeSkipsValidator() {
	e := s.newEvaluator()
	for _, income := range []float64{100_000, 100_000.01, 1_000_000} {
		s.Equal(evaluator.AutoAccepted, e.Evaluate(evaluator.Application{GrossAnnualIncome: income, Age: 18}))
	}
}

// =============================================================================
// Alternate Entry Point
// =============================================================================

func (s *EvaluatorSuite) TestEvaluateUsingOut() {
	s.Run("valid number declines", func() {
		e := s.newEvaluator()
		s.validator.EXPECT().CheckValidity("XXX1", gomock.Any()).Do(func(_ string, isValid *bool) {
			*isValid = true
		})

		s.Equal(evaluator.AutoDeclined, e.EvaluateUsingOut(evaluator.Application{FrequentFlyerNumber: "XXX1"}))
	})

	s.Run("invalid number refers", func() {
		e := s.newEvaluator()
		s.validator.EXPECT().CheckValidity("y", gomock.Any())

		s.Equal(evaluator.ReferredToHuman, e.EvaluateUsingOut(evaluator.Application{FrequentFlyerNumber: "y"}))
	})

	s.Run("ignores income and fraud rules", func() {
		e := s.newEvaluator(evaluator.WithFraudLookup(s.fraud))
		s.validator.EXPECT().CheckValidity("", gomock.Any())

		s.Equal(evaluator.ReferredToHuman, e.EvaluateUsingOut(evaluator.Application{GrossAnnualIncome: 500_000}))
	})
}

// =============================================================================
// Lookup Counting
// =============================================================================

func (s *EvaluatorSuite) TestLookupCount() {
	s.Run("increments once per notification", func() {
		e := s.newEvaluator()
		s.validator.EXPECT().LicenseKey().Return("")
		s.validator.EXPECT().SetValidationMode(evaluator.Quick)
		s.validator.EXPECT().IsValid("").DoAndReturn(func(string) (bool, error) {
			s.notify()
			return true, nil
		})

		e.Evaluate(evaluator.Application{})
		s.Equal(int64(1), e.LookupCount())

		s.notify()
		s.notify()
		s.Equal(int64(3), e.LookupCount())
	})

	s.Run("close unsubscribes and stops counting", func() {
		e := s.newEvaluator()
		s.notify()
		e.Close()
		e.Close()

		s.True(s.unsubscribed)
		s.notify()
		s.Equal(int64(1), e.LookupCount())
	})

	s.Run("records lookup metrics", func() {
		m := metrics.NewWithRegisterer(prometheus.NewRegistry())
		s.newEvaluator(evaluator.WithMetrics(m))
		s.notify()
		s.notify()

		s.Equal(float64(2), promtestutil.ToFloat64(m.Lookups))
	})
}

// =============================================================================
// Concurrency
// =============================================================================

// countingValidator reports a lookup on every validity check.
type countingValidator struct {
	mu        sync.Mutex
	mode      evaluator.ValidationMode
	listeners []func()
}

func (v *countingValidator) IsValid(string) (bool, error) {
	v.mu.Lock()
	listeners := append([]func(){}, v.listeners...)
	v.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return true, nil
}

func (v *countingValidator) CheckValidity(number string, isValid *bool) {
	*isValid, _ = v.IsValid(number)
}

func (v *countingValidator) ValidationMode() evaluator.ValidationMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

func (v *countingValidator) SetValidationMode(mode evaluator.ValidationMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
}

func (v *countingValidator) LicenseKey() string { return "" }

func (v *countingValidator) OnLookupPerformed(fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
	return func() {}
}

func TestEvaluator_ConcurrentLookupCounting(t *testing.T) {
	v := &countingValidator{}
	e, err := evaluator.New(v)
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}

	const goroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Evaluate(evaluator.Application{Age: 35, GrossAnnualIncome: 10_000})
		}()
	}
	wg.Wait()

	if got := e.LookupCount(); got != goroutines {
		t.Fatalf("expected %d lookups, got %d", goroutines, got)
	}
	if v.ValidationMode() != evaluator.Detailed {
		t.Fatalf("expected detailed mode, got %s", v.ValidationMode())
	}
}
