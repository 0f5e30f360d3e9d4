// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "github.com/okian/hopgraph/internal/adapters/repository"
	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/fuzzy"
	"github.com/okian/hopgraph/pkg/logger"
)

// Service answers transition and related-background queries over a Store.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	ownsStore  bool
	storeOpts  []repository.Option
	driver     string
	dsn        string
	started    bool
	now        func() time.Time
	logger     logger.Logger

	// Configuration
	defaultHops        int
	maxHops            int
	fuzzyThreshold     float64
	directoryMinScore  float64
	nearMeYears        int
	closeBatchYears    int
	relatedConcurrency int
	searchLimit        int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store. A store given here is not closed by Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithStoreDriver selects the store opened by Start when none was given.
func WithStoreDriver(driver, dsn string, opts ...repository.Option) Option {
	return func(s *Service) {
		s.driver = driver
		s.dsn = dsn
		s.storeOpts = opts
	}
}

// WithDefaultHops sets the hop count used when a query leaves it out.
func WithDefaultHops(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultHops = n
		}
	}
}

// WithMaxHops caps the hop count a query may ask for.
func WithMaxHops(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHops = n
		}
	}
}

// WithFuzzyThreshold sets the role and department match threshold.
func WithFuzzyThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 100 {
			s.fuzzyThreshold = threshold
		}
	}
}

// WithDirectoryMinScore sets the minimum score for resolving a company or
// college name against the directory.
func WithDirectoryMinScore(score float64) Option {
	return func(s *Service) {
		if score > 0 && score <= 100 {
			s.directoryMinScore = score
		}
	}
}

// WithNearMeYears sets the tolerance of the near-me tenure option.
func WithNearMeYears(years int) Option {
	return func(s *Service) {
		if years >= 0 {
			s.nearMeYears = years
		}
	}
}

// WithCloseBatchYears sets the start-year tolerance of the close batch option.
func WithCloseBatchYears(years int) Option {
	return func(s *Service) {
		if years >= 0 {
			s.closeBatchYears = years
		}
	}
}

// WithRelatedConcurrency bounds the destinations processed in parallel.
func WithRelatedConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.relatedConcurrency = n
		}
	}
}

// WithSearchLimit caps organization search results.
func WithSearchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithClock sets the clock used for the default end of the exit window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		driver:             repository.DriverMemory,
		now:                time.Now,
		defaultHops:        3,
		maxHops:            10,
		fuzzyThreshold:     fuzzy.DefaultThreshold,
		directoryMinScore:  fuzzy.DefaultDirectoryMinScore,
		nearMeYears:        connection.DefaultNearMeYears,
		closeBatchYears:    connection.DefaultCloseBatchYears,
		relatedConcurrency: 4,
		searchLimit:        50,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultHops > s.maxHops {
		s.defaultHops = s.maxHops
	}
	return s
}

// Start opens the store unless one was injected.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		opts := append([]repository.Option{repository.WithLogger(s.logger)}, s.storeOpts...)
		store, err := repository.Open(ctx, s.driver, s.dsn, opts...)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "hopgraph service started",
		logger.String("driver", s.driver),
		logger.Int("defaultHops", s.defaultHops),
		logger.Int("maxHops", s.maxHops),
		logger.Int("relatedConcurrency", s.relatedConcurrency),
	)
	return nil
}

// Stop releases the store opened by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(context.Background(), "hopgraph service stopped")
}

// ready returns the store and logger of a started service.
func (s *Service) ready() (repository.Store, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.logger, nil
}

// GetStats returns service settings for diagnostics.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"started":            s.started,
		"driver":             s.driver,
		"defaultHops":        s.defaultHops,
		"maxHops":            s.maxHops,
		"fuzzyThreshold":     s.fuzzyThreshold,
		"directoryMinScore":  s.directoryMinScore,
		"nearMeYears":        s.nearMeYears,
		"closeBatchYears":    s.closeBatchYears,
		"relatedConcurrency": s.relatedConcurrency,
		"searchLimit":        s.searchLimit,
	}
}

func (s *Service) matcherOptions() []connection.Option {
	return []connection.Option{
		connection.WithNearMeYears(s.nearMeYears),
		connection.WithCloseBatchYears(s.closeBatchYears),
	}
}
