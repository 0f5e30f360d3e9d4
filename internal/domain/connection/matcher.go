package connection

import (
	"time"

	"github.com/okian/hopgraph/internal/domain/fuzzy"
)

// Default year tolerances.
const (
	DefaultNearMeYears     = 2
	DefaultCloseBatchYears = 4
)

// Evidence sections.
const (
	SectionWork      = "work"
	SectionEducation = "education"
)

// Tristate is the outcome of one filter section.
type Tristate int

// Section outcomes.
const (
	Unconstrained Tristate = iota
	Matched
	Unmatched
)

// Combine applies the section algebra: an inactive section adds no
// constraint, active sections are OR-ed, and no active section matches all.
func Combine(work, education Tristate) bool {
	switch {
	case work == Unconstrained && education == Unconstrained:
		return true
	case work == Unconstrained:
		return education == Matched
	case education == Unconstrained:
		return work == Matched
	default:
		return work == Matched || education == Matched
	}
}

// Evidence explains which filters one record satisfied.
type Evidence struct {
	Section  string
	RecordID int64
	Name     string
	Fields   []string
}

// Result is the decision for one candidate.
type Result struct {
	IsMatch   bool
	Work      Tristate
	Education Tristate
	Evidence  []Evidence
}

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithNearMeYears sets the tolerance around the viewer window for near-me.
func WithNearMeYears(years int) Option {
	return func(m *Matcher) {
		if years >= 0 {
			m.nearMeYears = years
		}
	}
}

// WithCloseBatchYears sets the start-year tolerance for the close batch option.
func WithCloseBatchYears(years int) Option {
	return func(m *Matcher) {
		if years >= 0 {
			m.closeBatchYears = years
		}
	}
}

// Matcher compares candidates to one viewer under one filter set. Name
// resolution happens once in NewMatcher; Match only reads, so a Matcher can
// be shared across goroutines.
type Matcher struct {
	filters Filters
	scorer  *fuzzy.Scorer

	companies map[int64]struct{}
	colleges  map[int64]struct{}

	// viewer records keyed by every id of their canonical identity
	tenure  map[int64][]ViewerStint
	studies map[int64][]ViewerEducation

	nearMeYears     int
	closeBatchYears int
}

// NewMatcher resolves the filter references through ix and indexes the
// viewer's records by canonical organization and school identity.
func NewMatcher(viewer Viewer, filters Filters, ix *fuzzy.Index, scorer *fuzzy.Scorer, opts ...Option) *Matcher {
	if scorer == nil {
		scorer = fuzzy.NewScorer()
	}
	m := &Matcher{
		filters:         filters,
		scorer:          scorer,
		companies:       make(map[int64]struct{}),
		colleges:        make(map[int64]struct{}),
		tenure:          make(map[int64][]ViewerStint),
		studies:         make(map[int64][]ViewerEducation),
		nearMeYears:     DefaultNearMeYears,
		closeBatchYears: DefaultCloseBatchYears,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, ref := range filters.PastCompanies {
		for _, id := range ix.ResolveOrganization(ref) {
			m.companies[id] = struct{}{}
		}
	}
	for _, ref := range filters.Colleges {
		for _, id := range ix.ResolveSchool(ref) {
			m.colleges[id] = struct{}{}
		}
	}
	for _, s := range viewer.Stints {
		for _, id := range ix.CanonicalOrganization(s.OrganizationID) {
			m.tenure[id] = append(m.tenure[id], s)
		}
	}
	for _, e := range viewer.Educations {
		for _, id := range ix.CanonicalSchool(e.SchoolID) {
			m.studies[id] = append(m.studies[id], e)
		}
	}
	return m
}

// Filters returns the filter set the matcher evaluates.
func (m *Matcher) Filters() Filters { return m.filters }

// Match decides whether c is related to the viewer.
func (m *Matcher) Match(c Candidate) Result {
	work, workEv := m.evaluateWork(c)
	edu, eduEv := m.evaluateEducation(c)

	r := Result{Work: work, Education: edu, IsMatch: Combine(work, edu)}
	if workEv != nil {
		r.Evidence = append(r.Evidence, *workEv)
	}
	if eduEv != nil {
		r.Evidence = append(r.Evidence, *eduEv)
	}
	return r
}

// evaluateWork returns Matched on the first stint satisfying every active
// work filter.
func (m *Matcher) evaluateWork(c Candidate) (Tristate, *Evidence) {
	if !m.filters.WorkActive() {
		return Unconstrained, nil
	}
	for _, s := range c.Stints {
		if fields, ok := m.stintQualifies(s); ok {
			return Matched, &Evidence{Section: SectionWork, RecordID: s.StintID, Name: s.OrganizationName, Fields: fields}
		}
	}
	return Unmatched, nil
}

func (m *Matcher) stintQualifies(s CandidateStint) ([]string, bool) {
	var fields []string

	if len(m.filters.PastCompanies) > 0 {
		if s.OrganizationID == nil {
			return nil, false
		}
		if _, ok := m.companies[*s.OrganizationID]; !ok {
			return nil, false
		}
		fields = append(fields, "company")
	}

	if len(m.filters.PastRoles) > 0 {
		if s.Role == "" {
			return nil, false
		}
		term, _, ok := m.scorer.BestMatch(s.Role, m.filters.PastRoles)
		if !ok {
			return nil, false
		}
		fields = append(fields, "role:"+term)
	}

	if len(m.filters.TenureOptions) > 0 {
		var windows []ViewerStint
		if s.OrganizationID != nil {
			windows = m.tenure[*s.OrganizationID]
		}
		opt, ok := m.tenureHolds(s, windows)
		if !ok {
			return nil, false
		}
		fields = append(fields, "tenure:"+string(opt))
	}
	return fields, true
}

// tenureHolds compares s with the viewer's windows at the same
// organization. Without such a window only any-time can hold.
func (m *Matcher) tenureHolds(s CandidateStint, windows []ViewerStint) (TenureOption, bool) {
	for _, opt := range m.filters.TenureOptions {
		if opt == TenureAnyTime {
			return opt, true
		}
		for _, w := range windows {
			switch opt {
			case TenureWithMe:
				if overlaps(s.Start, s.End, w.Start, w.End) {
					return opt, true
				}
			case TenureNearMe:
				if endsNear(s.End, w.Start, w.End, m.nearMeYears) {
					return opt, true
				}
			}
		}
	}
	return "", false
}

// evaluateEducation returns Matched on the first education record
// satisfying every active education filter.
func (m *Matcher) evaluateEducation(c Candidate) (Tristate, *Evidence) {
	if !m.filters.EducationActive() {
		return Unconstrained, nil
	}
	for _, e := range c.Educations {
		if fields, ok := m.educationQualifies(e); ok {
			return Matched, &Evidence{Section: SectionEducation, RecordID: e.RecordID, Name: e.SchoolName, Fields: fields}
		}
	}
	return Unmatched, nil
}

func (m *Matcher) educationQualifies(e CandidateEducation) ([]string, bool) {
	var fields []string

	if len(m.filters.Colleges) > 0 {
		if e.SchoolID == nil {
			return nil, false
		}
		if _, ok := m.colleges[*e.SchoolID]; !ok {
			return nil, false
		}
		fields = append(fields, "college")
	}

	if len(m.filters.Departments) > 0 {
		if e.Degree == "" {
			return nil, false
		}
		term, _, ok := m.scorer.BestMatch(e.Degree, m.filters.Departments)
		if !ok {
			return nil, false
		}
		fields = append(fields, "department:"+term)
	}

	if len(m.filters.BatchOptions) > 0 {
		var records []ViewerEducation
		if e.SchoolID != nil {
			records = m.studies[*e.SchoolID]
		}
		opt, ok := m.batchHolds(e, records)
		if !ok {
			return nil, false
		}
		fields = append(fields, "batch:"+string(opt))
	}
	return fields, true
}

// batchHolds compares e with the viewer's records at the same school.
// Without such a record only any can hold.
func (m *Matcher) batchHolds(e CandidateEducation, records []ViewerEducation) (BatchOption, bool) {
	for _, opt := range m.filters.BatchOptions {
		if opt == BatchAny {
			return opt, true
		}
		for _, v := range records {
			switch opt {
			case BatchExact:
				if sameYear(e.StartYear, v.StartYear) && sameYear(e.EndYear, v.EndYear) {
					return opt, true
				}
			case BatchClose:
				if e.StartYear != nil && v.StartYear != nil && abs(*e.StartYear-*v.StartYear) <= m.closeBatchYears {
					return opt, true
				}
			}
		}
	}
	return "", false
}

// overlaps treats nil bounds as open; an interval ending before it starts
// overlaps nothing.
func overlaps(aStart, aEnd, bStart, bEnd *time.Time) bool {
	if inverted(aStart, aEnd) || inverted(bStart, bEnd) {
		return false
	}
	if aStart != nil && bEnd != nil && aStart.After(*bEnd) {
		return false
	}
	if bStart != nil && aEnd != nil && bStart.After(*aEnd) {
		return false
	}
	return true
}

// endsNear reports whether end falls within years of the [start, stop]
// window. A current stint (nil end) is only near an open-ended window.
func endsNear(end, start, stop *time.Time, years int) bool {
	if inverted(start, stop) {
		return false
	}
	if end == nil {
		return stop == nil
	}
	if start != nil && end.Before(start.AddDate(-years, 0, 0)) {
		return false
	}
	if stop != nil && end.After(stop.AddDate(years, 0, 0)) {
		return false
	}
	return true
}

func inverted(start, end *time.Time) bool {
	return start != nil && end != nil && end.Before(*start)
}

func sameYear(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
