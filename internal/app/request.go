package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	repository "github.com/okian/hopgraph/internal/adapters/repository"
	"github.com/okian/hopgraph/internal/domain/connection"
	"github.com/okian/hopgraph/internal/domain/fuzzy"
	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/internal/domain/transition"
	"github.com/okian/hopgraph/internal/domain/types"
)

// request holds everything loaded for one query. Nothing in it outlives the
// call that built it.
type request struct {
	store   repository.Store
	dir     *model.Directory
	orgs    []model.Organization
	schools []model.School
}

// newRequest loads the organization, role and school dictionaries.
func newRequest(ctx context.Context, store repository.Store) (*request, error) {
	orgs, err := store.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := store.Roles(ctx)
	if err != nil {
		return nil, err
	}
	schools, err := store.Schools(ctx)
	if err != nil {
		return nil, err
	}

	dir := model.NewDirectory()
	for _, o := range orgs {
		dir.Organizations[o.ID] = o
	}
	for _, r := range roles {
		dir.Roles[r.ID] = r
	}
	for _, sc := range schools {
		dir.Schools[sc.ID] = sc
	}
	return &request{store: store, dir: dir, orgs: orgs, schools: schools}, nil
}

func (r *request) index(minScore float64) *fuzzy.Index {
	return fuzzy.NewIndex(r.orgs, r.schools, fuzzy.WithDirectoryMinScore(minScore))
}

// addPeople puts the named people into the directory.
func (r *request) addPeople(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	people, err := r.store.People(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range people {
		r.dir.People[p.ID] = p
	}
	return nil
}

// cohort loads the exits from sourceOrgID in w together with every stint of
// the people who exited.
func (r *request) cohort(ctx context.Context, sourceOrgID int64, w model.Window, extra ...int64) (transition.Cohort, error) {
	exits, err := r.store.ExitStints(ctx, sourceOrgID, w)
	if err != nil {
		return transition.Cohort{}, err
	}
	transition.SortExits(exits)
	c := transition.Cohort{SourceOrgID: sourceOrgID, Exits: exits, Directory: r.dir}

	ids := union(c.PersonIDs(), extra)
	c.Stints, err = r.store.StintsByPeople(ctx, ids)
	if err != nil {
		return transition.Cohort{}, err
	}
	if err := r.addPeople(ctx, ids); err != nil {
		return transition.Cohort{}, err
	}
	return c, nil
}

// roleSet resolves a role name fragment. An empty fragment disables the
// role filter; a fragment matching no role yields an empty active set.
func (r *request) roleSet(ctx context.Context, fragment string) (transition.RoleSet, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, nil
	}
	ids, err := r.store.RoleIDsMatching(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return transition.NewRoleSet(ids...), nil
}

// viewer builds the viewer profile from records already loaded.
func (r *request) viewer(id *int64, stints map[int64][]model.Stint, edus map[int64][]model.EducationRecord) connection.Viewer {
	if id == nil {
		return connection.Viewer{}
	}
	return connection.NewViewer(*id, stints[*id], edus[*id], r.dir)
}

// window builds the exit window. The end defaults to today.
func (s *Service) window(start, end *time.Time) (model.Window, error) {
	now := s.now().UTC()
	w := model.Window{End: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)}
	if end != nil {
		w.End = *end
	}
	if start != nil {
		t := *start
		if t.After(w.End) {
			return model.Window{}, fmt.Errorf("%w: start_date %s is after end_date %s",
				ErrInvalidQuery, t.Format(types.DateLayout), w.End.Format(types.DateLayout))
		}
		w.Start = &t
	}
	return w, nil
}

func (s *Service) hops(n int) (int, error) {
	switch {
	case n == 0:
		return s.defaultHops, nil
	case n < 0:
		return 0, fmt.Errorf("%w: hops must be positive", ErrInvalidQuery)
	case n > s.maxHops:
		return 0, fmt.Errorf("%w: hops must not exceed %d", ErrInvalidQuery, s.maxHops)
	default:
		return n, nil
	}
}

func union(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, list := range [][]int64{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
