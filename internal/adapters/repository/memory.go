package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/okian/hopgraph/internal/domain/model"
	"github.com/okian/hopgraph/pkg/logger"
	"github.com/okian/hopgraph/pkg/metrics"
)

// MemoryStore serves a snapshot held in memory. It never changes after
// construction, so it is safe for concurrent use.
type MemoryStore struct {
	log logger.Logger

	people        map[int64]model.Person
	organizations []model.Organization
	roles         []model.Role
	schools       []model.School
	stints        map[int64][]model.Stint
	educations    map[int64][]model.EducationRecord
	byOrg         map[int64][]model.Stint
}

// NewMemoryStore indexes snap. The snapshot must not be modified afterwards.
func NewMemoryStore(snap *Snapshot, opts ...Option) *MemoryStore {
	cfg := newSettings(opts)
	if snap == nil {
		snap = &Snapshot{}
	}
	s := &MemoryStore{
		log:           cfg.log,
		people:        make(map[int64]model.Person, len(snap.People)),
		organizations: append([]model.Organization(nil), snap.Organizations...),
		roles:         append([]model.Role(nil), snap.Roles...),
		schools:       append([]model.School(nil), snap.Schools...),
		stints:        make(map[int64][]model.Stint),
		educations:    make(map[int64][]model.EducationRecord),
		byOrg:         make(map[int64][]model.Stint),
	}
	for _, p := range snap.People {
		s.people[p.ID] = p
	}
	for _, st := range snap.Stints {
		s.stints[st.PersonID] = append(s.stints[st.PersonID], st)
		if st.OrganizationID != nil {
			s.byOrg[*st.OrganizationID] = append(s.byOrg[*st.OrganizationID], st)
		}
	}
	for pid := range s.stints {
		model.SortStints(s.stints[pid])
	}
	for _, e := range snap.Educations {
		s.educations[e.PersonID] = append(s.educations[e.PersonID], e)
	}
	sort.Slice(s.organizations, func(i, j int) bool { return s.organizations[i].ID < s.organizations[j].ID })
	sort.Slice(s.roles, func(i, j int) bool { return s.roles[i].ID < s.roles[j].ID })
	sort.Slice(s.schools, func(i, j int) bool { return s.schools[i].ID < s.schools[j].ID })

	metrics.UpdateSnapshotRecords("people", len(snap.People))
	metrics.UpdateSnapshotRecords("organizations", len(snap.Organizations))
	metrics.UpdateSnapshotRecords("roles", len(snap.Roles))
	metrics.UpdateSnapshotRecords("schools", len(snap.Schools))
	metrics.UpdateSnapshotRecords("stints", len(snap.Stints))
	metrics.UpdateSnapshotRecords("educations", len(snap.Educations))
	return s
}

// OpenMemoryStore loads the configured snapshot. Without a snapshot the
// store starts empty.
func OpenMemoryStore(ctx context.Context, opts ...Option) (*MemoryStore, error) {
	cfg := newSettings(opts)
	if cfg.snapshotPath == "" {
		cfg.log.Warn(ctx, "no snapshot configured; serving an empty store")
		return NewMemoryStore(nil, opts...), nil
	}
	snap, err := LoadSnapshot(cfg.snapshotPath)
	if err != nil {
		return nil, err
	}
	cfg.log.Info(ctx, "snapshot loaded",
		logger.String("path", cfg.snapshotPath),
		logger.Int("people", len(snap.People)),
		logger.Int("stints", len(snap.Stints)))
	return NewMemoryStore(snap, opts...), nil
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// SearchOrganizations implements Store.
func (s *MemoryStore) SearchOrganizations(_ context.Context, fragment string, limit int) ([]model.Organization, error) {
	defer observe("search_organizations", time.Now())
	needle := strings.ToLower(strings.TrimSpace(fragment))
	out := []model.Organization{}
	for _, o := range s.organizations {
		if strings.Contains(strings.ToLower(o.Name), needle) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ExitStints implements Store.
func (s *MemoryStore) ExitStints(_ context.Context, orgID int64, w model.Window) ([]model.Stint, error) {
	defer observe("exit_stints", time.Now())
	out := []model.Stint{}
	for _, st := range s.byOrg[orgID] {
		if w.IsExit(st, orgID) {
			out = append(out, st)
		}
	}
	return out, nil
}

// StintsByPeople implements Store.
func (s *MemoryStore) StintsByPeople(_ context.Context, personIDs []int64) (map[int64][]model.Stint, error) {
	defer observe("stints_by_people", time.Now())
	out := make(map[int64][]model.Stint, len(personIDs))
	for _, id := range personIDs {
		if list, ok := s.stints[id]; ok {
			out[id] = append([]model.Stint(nil), list...)
		}
	}
	return out, nil
}

// EducationsByPeople implements Store.
func (s *MemoryStore) EducationsByPeople(_ context.Context, personIDs []int64) (map[int64][]model.EducationRecord, error) {
	defer observe("educations_by_people", time.Now())
	out := make(map[int64][]model.EducationRecord, len(personIDs))
	for _, id := range personIDs {
		if list, ok := s.educations[id]; ok {
			out[id] = append([]model.EducationRecord(nil), list...)
		}
	}
	return out, nil
}

// CurrentEmployees implements Store.
func (s *MemoryStore) CurrentEmployees(_ context.Context, orgIDs []int64) ([]int64, error) {
	defer observe("current_employees", time.Now())
	seen := make(map[int64]struct{})
	for _, org := range orgIDs {
		for _, st := range s.byOrg[org] {
			if st.IsCurrent() {
				seen[st.PersonID] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// People implements Store.
func (s *MemoryStore) People(_ context.Context, ids []int64) ([]model.Person, error) {
	defer observe("people", time.Now())
	out := make([]model.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.people[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Organizations implements Store.
func (s *MemoryStore) Organizations(context.Context) ([]model.Organization, error) {
	return append([]model.Organization(nil), s.organizations...), nil
}

// Roles implements Store.
func (s *MemoryStore) Roles(context.Context) ([]model.Role, error) {
	return append([]model.Role(nil), s.roles...), nil
}

// RoleIDsMatching implements Store.
func (s *MemoryStore) RoleIDsMatching(_ context.Context, fragment string) ([]int64, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	out := []int64{}
	for _, r := range s.roles {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r.ID)
		}
	}
	return out, nil
}

// Schools implements Store.
func (s *MemoryStore) Schools(context.Context) ([]model.School, error) {
	return append([]model.School(nil), s.schools...), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func sortedKeys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
