// Package related finds people currently at a destination organization who
// share an organization or school with a viewer.
package related

import (
	"context"
	"sort"

	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/fuzzy"
	"github.com/okian/hopgraph/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// ConnectionType classifies how a candidate is related to the viewer.
type ConnectionType string

// Connection types.
const (
	PastCompany           ConnectionType = "past_company"
	College               ConnectionType = "college"
	PastCompanyAndCollege ConnectionType = "past_company_and_college"
)

const defaultConcurrency = 4

// Input is the materialized data of one related-background query. Every
// map is read-only for the duration of Find.
type Input struct {
	Destinations []int64
	Viewer       connection.Viewer
	// Arrivals holds, per destination, the people already counted as direct
	// transitions into it.
	Arrivals map[int64]map[int64]struct{}
	// Stints and Educations cover every candidate at any destination.
	Stints      map[int64][]model.Stint
	Educations  map[int64][]model.EducationRecord
	Directory   *model.Directory
	Index       *fuzzy.Index
	Matcher     *connection.Matcher
	Concurrency int
}

// Person is one related candidate.
type Person struct {
	PersonID       int64
	PersonName     string
	ConnectionType ConnectionType
	History        []model.Stint
	IsMatch        bool
	Evidence       []connection.Evidence
}

// Group is the related background of one destination.
type Group struct {
	Count      int
	MatchCount int
	Related    []Person
}

// Find computes a Group for every destination. Destinations are processed
// in parallel, bounded by in.Concurrency.
func Find(ctx context.Context, in Input) (map[int64]Group, error) {
	orgs, schools := viewerIdentity(in.Viewer, in.Index)

	limit := in.Concurrency
	if limit < 1 {
		limit = defaultConcurrency
	}

	groups := make([]Group, len(in.Destinations))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, dest := range in.Destinations {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			groups[i] = findOne(in, dest, orgs, schools)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int64]Group, len(in.Destinations))
	for i, dest := range in.Destinations {
		out[dest] = groups[i]
	}
	return out, nil
}

// viewerIdentity canonicalizes the viewer's organizations and schools.
func viewerIdentity(v connection.Viewer, ix *fuzzy.Index) (orgs, schools map[int64]struct{}) {
	orgs = make(map[int64]struct{})
	schools = make(map[int64]struct{})
	for _, s := range v.Stints {
		for _, id := range ix.CanonicalOrganization(s.OrganizationID) {
			orgs[id] = struct{}{}
		}
	}
	for _, e := range v.Educations {
		for _, id := range ix.CanonicalSchool(e.SchoolID) {
			schools[id] = struct{}{}
		}
	}
	return orgs, schools
}

func findOne(in Input, dest int64, orgs, schools map[int64]struct{}) Group {
	arrivals := in.Arrivals[dest]

	group := Group{Related: []Person{}}
	for _, pid := range currentAt(in.Stints, dest) {
		if pid == in.Viewer.PersonID {
			continue
		}
		if _, ok := arrivals[pid]; ok {
			continue
		}
		stints, edus := in.Stints[pid], in.Educations[pid]
		kind, ok := classify(stints, edus, orgs, schools)
		if !ok {
			continue
		}

		p := Person{
			PersonID:       pid,
			PersonName:     in.Directory.PersonName(pid),
			ConnectionType: kind,
			History:        chronological(stints),
			IsMatch:        true,
		}
		if in.Matcher != nil {
			r := in.Matcher.Match(connection.NewCandidate(pid, stints, edus, in.Directory))
			p.IsMatch, p.Evidence = r.IsMatch, r.Evidence
		}
		if p.IsMatch {
			group.MatchCount++
		}
		group.Related = append(group.Related, p)
	}
	group.Count = len(group.Related)

	sort.SliceStable(group.Related, func(i, j int) bool {
		a, b := group.Related[i], group.Related[j]
		if a.IsMatch != b.IsMatch {
			return a.IsMatch
		}
		if a.PersonName != b.PersonName {
			return a.PersonName < b.PersonName
		}
		return a.PersonID < b.PersonID
	})
	return group
}

// currentAt returns the people holding an open-ended stint at org, in id order.
func currentAt(stints map[int64][]model.Stint, org int64) []int64 {
	var ids []int64
	for pid, list := range stints {
		for _, s := range list {
			if s.IsCurrent() && s.OrganizationID != nil && *s.OrganizationID == org {
				ids = append(ids, pid)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// classify is the identity prefilter: any stint at a viewer organization or
// any education at a viewer school.
func classify(stints []model.Stint, edus []model.EducationRecord, orgs, schools map[int64]struct{}) (ConnectionType, bool) {
	var company, college bool
	for _, s := range stints {
		if s.OrganizationID == nil {
			continue
		}
		if _, ok := orgs[*s.OrganizationID]; ok {
			company = true
			break
		}
	}
	for _, e := range edus {
		if e.SchoolID == nil {
			continue
		}
		if _, ok := schools[*e.SchoolID]; ok {
			college = true
			break
		}
	}
	switch {
	case company && college:
		return PastCompanyAndCollege, true
	case company:
		return PastCompany, true
	case college:
		return College, true
	default:
		return "", false
	}
}

func chronological(stints []model.Stint) []model.Stint {
	out := append([]model.Stint(nil), stints...)
	model.SortStints(out)
	return out
}
