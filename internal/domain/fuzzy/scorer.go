package fuzzy

import (
	"sync"
	"sync/atomic"
)

// DefaultThreshold is the minimum Similarity for a role or department to match.
const DefaultThreshold = 60.0

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithThreshold sets the match threshold. Values outside (0, 100] are ignored.
func WithThreshold(threshold float64) Option {
	return func(s *Scorer) {
		if threshold > 0 && threshold <= maxScore {
			s.threshold = threshold
		}
	}
}

// Scorer memoizes Similarity for one request. Role and degree strings repeat
// heavily across a cohort, so each pair is scored once.
type Scorer struct {
	threshold float64

	mu   sync.Mutex
	memo map[[2]string]float64

	comparisons atomic.Int64
}

// NewScorer creates a Scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		threshold: DefaultThreshold,
		memo:      make(map[[2]string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the configured match threshold.
func (s *Scorer) Threshold() float64 { return s.threshold }

// Score returns the memoized Similarity of a and b.
func (s *Scorer) Score(a, b string) float64 {
	key := [2]string{a, b}
	s.mu.Lock()
	v, ok := s.memo[key]
	s.mu.Unlock()
	if ok {
		return v
	}
	s.comparisons.Add(1)
	v = Similarity(a, b)
	s.mu.Lock()
	s.memo[key] = v
	s.mu.Unlock()
	return v
}

// BestMatch scores text against every term and reports the best one when it
// reaches the threshold.
func (s *Scorer) BestMatch(text string, terms []string) (term string, score float64, ok bool) {
	for _, t := range terms {
		if v := s.Score(text, t); v > score {
			term, score = t, v
		}
	}
	return term, score, score >= s.threshold
}

// Comparisons returns how many distinct pairs were actually scored.
func (s *Scorer) Comparisons() int64 { return s.comparisons.Load() }
