package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/fuzzy"
	"github.com/okian/hopgraph/internal/domain/related"
	"github.com/okian/hopgraph/internal/domain/transition"
	"github.com/okian/hopgraph/internal/domain/types"
	"github.com/okian/hopgraph/pkg/logger"
	"github.com/okian/hopgraph/pkg/metrics"
)

// Query kinds used for metrics and logs.
const (
	kindSearch    = "search_organizations"
	kindTransit   = "org_transitions"
	kindEmployees = "employee_transitions"
	kindRelated   = "related_background"
)

// TransitionsQuery selects the cohort and hop depth of Transitions.
type TransitionsQuery struct {
	SourceOrgID int64
	StartDate   *time.Time
	EndDate     *time.Time
	Hops        int
	Role        string
}

// EmployeeQuery selects the people of EmployeeTransitions.
type EmployeeQuery struct {
	SourceOrgID int64
	DestOrgID   int64
	Hop         int
	StartDate   *time.Time
	EndDate     *time.Time
	Role        string
	ViewerID    *int64
	Filters     connection.Filters
}

// RelatedQuery selects the destinations and viewer of RelatedBackground.
// SourceOrgID is optional; when set, the cohort's direct arrivals within
// Hops are excluded from each destination.
type RelatedQuery struct {
	DestOrgIDs  []int64
	ViewerID    int64
	SourceOrgID *int64
	StartDate   *time.Time
	EndDate     *time.Time
	Hops        int
	Filters     connection.Filters
}

func (s *Service) finish(ctx context.Context, log logger.Logger, kind string, start time.Time, err error) {
	if err != nil {
		metrics.RecordQueryError(kind)
		log.Error(ctx, "query failed", logger.String("kind", kind), logger.Error(err))
		return
	}
	metrics.RecordQuery(kind, float64(time.Since(start).Microseconds())/1000)
}

// SearchOrganizations returns organizations whose name contains name.
func (s *Service) SearchOrganizations(ctx context.Context, name string) (out []types.Organization, err error) {
	store, log, err := s.ready()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.finish(ctx, log, kindSearch, start, err) }()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: org_name is required", ErrInvalidQuery)
	}
	orgs, err := store.SearchOrganizations(ctx, name, s.searchLimit)
	if err != nil {
		return nil, err
	}
	out = make([]types.Organization, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, types.Organization{ID: o.ID, Name: o.Name})
	}
	return out, nil
}

// Transitions aggregates where the people who left q.SourceOrgID went, hop
// by hop.
func (s *Service) Transitions(ctx context.Context, q TransitionsQuery) (out types.Transitions, err error) {
	store, log, err := s.ready()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.finish(ctx, log, kindTransit, start, err) }()

	if q.SourceOrgID <= 0 {
		return nil, fmt.Errorf("%w: org_id is required", ErrInvalidQuery)
	}
	hops, err := s.hops(q.Hops)
	if err != nil {
		return nil, err
	}
	w, err := s.window(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, store)
	if err != nil {
		return nil, err
	}
	roles, err := req.roleSet(ctx, q.Role)
	if err != nil {
		return nil, err
	}
	c, err := req.cohort(ctx, q.SourceOrgID, w)
	if err != nil {
		return nil, err
	}
	metrics.RecordCohortSize(len(c.Exits))

	groups := transition.Aggregate(c, transition.Query{MaxHops: hops, Roles: roles})
	out = make(types.Transitions, len(groups))
	for _, g := range groups {
		dests := make([]types.Destination, 0, len(g.Destinations))
		for _, d := range g.Destinations {
			dests = append(dests, types.Destination{
				OrganizationID:   d.OrganizationID,
				OrganizationName: d.OrganizationName,
				Count:            d.Count,
				TotalCount:       d.TotalCount,
				Years:            d.Years,
				RoleMatch:        d.RoleMatch,
			})
		}
		metrics.RecordHopDestinations(len(dests))
		out[strconv.Itoa(g.Hop)] = dests
	}

	log.Debug(ctx, "transitions computed",
		logger.Int64("sourceOrgID", q.SourceOrgID),
		logger.Int("exits", len(c.Exits)),
		logger.Int("hops", len(groups)),
	)
	return out, nil
}

// EmployeeTransitions lists the people whose hop number q.Hop after leaving
// q.SourceOrgID is q.DestOrgID. With a viewer or filters, every person is
// also checked against the viewer's background.
func (s *Service) EmployeeTransitions(ctx context.Context, q EmployeeQuery) (out []types.EmployeeTransition, err error) {
	store, log, err := s.ready()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.finish(ctx, log, kindEmployees, start, err) }()

	switch {
	case q.SourceOrgID <= 0:
		return nil, fmt.Errorf("%w: source_org_id is required", ErrInvalidQuery)
	case q.DestOrgID <= 0:
		return nil, fmt.Errorf("%w: dest_org_id is required", ErrInvalidQuery)
	case q.Hop < 1:
		return nil, fmt.Errorf("%w: hop must be at least 1", ErrInvalidQuery)
	case q.Hop > s.maxHops:
		return nil, fmt.Errorf("%w: hop must not exceed %d", ErrInvalidQuery, s.maxHops)
	}
	w, err := s.window(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, store)
	if err != nil {
		return nil, err
	}
	roles, err := req.roleSet(ctx, q.Role)
	if err != nil {
		return nil, err
	}
	var extra []int64
	if q.ViewerID != nil {
		extra = append(extra, *q.ViewerID)
	}
	c, err := req.cohort(ctx, q.SourceOrgID, w, extra...)
	if err != nil {
		return nil, err
	}
	metrics.RecordCohortSize(len(c.Exits))

	matches := transition.MatchExactHop(c, transition.ExactQuery{DestOrgID: q.DestOrgID, Hop: q.Hop, Roles: roles})

	var (
		matcher *connection.Matcher
		scorer  *fuzzy.Scorer
	)
	if q.ViewerID != nil || q.Filters.Active() {
		ids := make([]int64, 0, len(matches)+1)
		for _, m := range matches {
			ids = append(ids, m.PersonID)
		}
		edus, err := store.EducationsByPeople(ctx, union(ids, extra))
		if err != nil {
			return nil, err
		}
		scorer = fuzzy.NewScorer(fuzzy.WithThreshold(s.fuzzyThreshold))
		viewer := req.viewer(q.ViewerID, c.Stints, edus)
		matcher = connection.NewMatcher(viewer, q.Filters, req.index(s.directoryMinScore), scorer, s.matcherOptions()...)
		defer func() { metrics.RecordFuzzyComparisons(scorer.Comparisons()) }()

		out = make([]types.EmployeeTransition, 0, len(matches))
		for _, m := range matches {
			r := matcher.Match(connection.NewCandidate(m.PersonID, c.Stints[m.PersonID], edus[m.PersonID], req.dir))
			out = append(out, employeeTransition(m, req, r.IsMatch, r.Evidence))
		}
	} else {
		out = make([]types.EmployeeTransition, 0, len(matches))
		for _, m := range matches {
			out = append(out, employeeTransition(m, req, true, nil))
		}
	}

	log.Debug(ctx, "employee transitions computed",
		logger.Int64("sourceOrgID", q.SourceOrgID),
		logger.Int64("destOrgID", q.DestOrgID),
		logger.Int("hop", q.Hop),
		logger.Int("matches", len(out)),
		logger.Bool("filtered", matcher != nil),
	)
	return out, nil
}

// RelatedBackground finds, per destination, the current employees who share
// an organization or school with the viewer.
func (s *Service) RelatedBackground(ctx context.Context, q RelatedQuery) (out types.RelatedBackground, err error) {
	store, log, err := s.ready()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.finish(ctx, log, kindRelated, start, err) }()

	if len(q.DestOrgIDs) == 0 {
		return nil, fmt.Errorf("%w: dest_org_ids is required", ErrInvalidQuery)
	}
	if q.ViewerID <= 0 {
		return nil, fmt.Errorf("%w: viewer_id is required", ErrInvalidQuery)
	}
	hops, err := s.hops(q.Hops)
	if err != nil {
		return nil, err
	}
	w, err := s.window(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, store)
	if err != nil {
		return nil, err
	}

	arrivals := map[int64]map[int64]struct{}{}
	if q.SourceOrgID != nil {
		c, err := req.cohort(ctx, *q.SourceOrgID, w)
		if err != nil {
			return nil, err
		}
		metrics.RecordCohortSize(len(c.Exits))
		arrivals = transition.Arrivals(c, hops)
	}

	current, err := store.CurrentEmployees(ctx, q.DestOrgIDs)
	if err != nil {
		return nil, err
	}
	ids := union(current, []int64{q.ViewerID})
	stints, err := store.StintsByPeople(ctx, ids)
	if err != nil {
		return nil, err
	}
	edus, err := store.EducationsByPeople(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := req.addPeople(ctx, ids); err != nil {
		return nil, err
	}

	ix := req.index(s.directoryMinScore)
	scorer := fuzzy.NewScorer(fuzzy.WithThreshold(s.fuzzyThreshold))
	viewer := req.viewer(&q.ViewerID, stints, edus)
	groups, err := related.Find(ctx, related.Input{
		Destinations: q.DestOrgIDs,
		Viewer:       viewer,
		Arrivals:     arrivals,
		Stints:       stints,
		Educations:   edus,
		Directory:    req.dir,
		Index:        ix,
		Matcher:      connection.NewMatcher(viewer, q.Filters, ix, scorer, s.matcherOptions()...),
		Concurrency:  s.relatedConcurrency,
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordFuzzyComparisons(scorer.Comparisons())

	out = make(types.RelatedBackground, len(groups))
	for dest, g := range groups {
		metrics.RecordRelatedCandidates(g.Count, g.MatchCount)
		out[strconv.FormatInt(dest, 10)] = relatedGroup(g, req)
	}

	log.Debug(ctx, "related background computed",
		logger.Int("destinations", len(q.DestOrgIDs)),
		logger.Int("currentEmployees", len(current)),
		logger.Int64("fuzzyComparisons", scorer.Comparisons()),
	)
	return out, nil
}
