package validator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"cardeval/internal/evaluator"
	"cardeval/internal/validator/license"
	"cardeval/internal/validator/metrics"
	"cardeval/pkg/platform/sentinel"
)

const defaultLookupTimeout = 2 * time.Second

var numberPattern = regexp.MustCompile(`^[A-Z]{2,3}[0-9]{1,10}$`)

// Normalize upper-cases and trims a frequent flyer number and reports whether
// it is well formed. Malformed numbers are rejected without a lookup.
func Normalize(number string) (string, bool) {
	n := strings.ToUpper(strings.TrimSpace(number))
	return n, numberPattern.MatchString(n)
}

// Service validates frequent flyer numbers against a Directory.
//
// Quick mode answers from the cache when it can and fills it on a miss.
// Detailed mode always asks the directory. Every lookup, cached or not,
// notifies the registered lookup listeners exactly once.
type Service struct {
	directory     Directory
	cache         Cache
	license       LicenseSource
	logger        *slog.Logger
	metrics       *metrics.Metrics
	clock         func() time.Time
	lookupTimeout time.Duration

	mode      atomic.Value // evaluator.ValidationMode
	listeners *listeners
}

var _ evaluator.Validator = (*Service)(nil)

type Option func(*Service)

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithLicenseSource(source LicenseSource) Option {
	return func(s *Service) {
		s.license = source
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

// WithClock sets the time source used for license expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

func New(directory Directory, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, errors.New("directory is required")
	}

	svc := &Service{
		directory:     directory,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:         time.Now,
		lookupTimeout: defaultLookupTimeout,
		listeners:     newListeners(),
	}
	svc.mode.Store(evaluator.Quick)

	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

func (s *Service) ValidationMode() evaluator.ValidationMode {
	return s.mode.Load().(evaluator.ValidationMode)
}

func (s *Service) SetValidationMode(mode evaluator.ValidationMode) {
	s.mode.Store(mode)
}

// ServiceInformation returns the license source's current value, or nil.
func (s *Service) ServiceInformation() *license.ServiceInformation {
	if s.license == nil {
		return nil
	}
	return s.license.ServiceInformation()
}

// LicenseKey returns the current license key. A missing license yields "".
func (s *Service) LicenseKey() string {
	info := s.ServiceInformation()
	if info == nil {
		return ""
	}
	return info.License.Key(s.clock())
}

func (s *Service) OnLookupPerformed(fn func()) func() {
	return s.listeners.add(fn)
}

// IsValid looks the number up using the current validation mode. It fails
// when the directory cannot answer.
func (s *Service) IsValid(frequentFlyerNumber string) (bool, error) {
	number, ok := Normalize(frequentFlyerNumber)
	if !ok {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lookupTimeout)
	defer cancel()

	mode := s.ValidationMode()
	start := time.Now()
	valid, err := s.lookup(ctx, number, mode)
	s.metrics.ObserveLookupLatency(time.Since(start))
	s.listeners.notify()

	if err != nil {
		s.metrics.IncrementLookup(mode.String(), "error")
		return false, fmt.Errorf("lookup frequent flyer number: %w", err)
	}
	s.metrics.IncrementLookup(mode.String(), resultLabel(valid))
	return valid, nil
}

// CheckValidity is IsValid with the result written to isValid. Lookup
// failures are logged and reported as not valid.
func (s *Service) CheckValidity(frequentFlyerNumber string, isValid *bool) {
	valid, err := s.IsValid(frequentFlyerNumber)
	if err != nil {
		s.logger.Warn("frequent flyer lookup failed", "error", err)
		valid = false
	}
	if isValid != nil {
		*isValid = valid
	}
}

func (s *Service) lookup(ctx context.Context, number string, mode evaluator.ValidationMode) (bool, error) {
	useCache := s.cache != nil && mode == evaluator.Quick

	if useCache {
		valid, found, err := s.cache.Get(ctx, number)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "frequent flyer cache read failed", "error", err)
		case found:
			s.metrics.IncrementCacheResult("hit")
			return valid, nil
		default:
			s.metrics.IncrementCacheResult("miss")
		}
	}

	valid, err := s.directory.Lookup(ctx, number)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}

	if useCache {
		if err := s.cache.Set(ctx, number, valid); err != nil {
			s.logger.WarnContext(ctx, "frequent flyer cache write failed", "error", err)
		}
	}
	return valid, nil
}

func resultLabel(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
