// Package career turns a person's role-level employment records into an
// ordered sequence of organization-level hops.
package career

import (
	"sort"
	"time"

	"github.com/okian/hopgraph/internal/domain/model"
)

// Hop is one organization-level block of a career path after an exit.
type Hop struct {
	OrganizationID int64
	Start          time.Time
	RoleIDs        []int64 // sorted, unique
	StintIDs       []int64
}

// HasAnyRole reports whether any role held during the hop is in roles.
func (h Hop) HasAnyRole(roles map[int64]struct{}) bool {
	for _, id := range h.RoleIDs {
		if _, ok := roles[id]; ok {
			return true
		}
	}
	return false
}

// Path is the normalized post-exit career of one person.
type Path struct {
	// Hops is indexed from zero; hop number n lives at Hops[n-1].
	Hops []Hop
	// Internal holds the stints of leading hops that stayed at the source
	// organization and were therefore not counted as transitions.
	Internal []int64
}

// Len returns the number of hops.
func (p Path) Len() int { return len(p.Hops) }

// At returns hop number n (1-based).
func (p Path) At(n int) (Hop, bool) {
	if n < 1 || n > len(p.Hops) {
		return Hop{}, false
	}
	return p.Hops[n-1], true
}

// Normalize builds the path that follows exit. Only stints starting on or
// after the exit end date take part; stints without a start date or an
// organization never start or extend a hop.
func Normalize(stints []model.Stint, exit model.Stint, sourceOrgID int64) Path {
	if exit.End == nil {
		return Path{}
	}
	ref := *exit.End

	next := make([]model.Stint, 0, len(stints))
	for _, s := range stints {
		if s.ID == exit.ID || s.Start == nil || s.OrganizationID == nil {
			continue
		}
		if s.Start.Before(ref) {
			continue
		}
		next = append(next, s)
	}
	if len(next) == 0 {
		return Path{}
	}
	model.SortStints(next)

	hops := fold(next)

	var p Path
	i := 0
	for ; i < len(hops) && hops[i].OrganizationID == sourceOrgID; i++ {
		p.Internal = append(p.Internal, hops[i].StintIDs...)
	}
	p.Hops = hops[i:]
	return p
}

// fold merges consecutive stints at the same organization.
func fold(sorted []model.Stint) []Hop {
	var hops []Hop
	for _, s := range sorted {
		org := *s.OrganizationID
		if n := len(hops); n > 0 && hops[n-1].OrganizationID == org {
			last := &hops[n-1]
			last.StintIDs = append(last.StintIDs, s.ID)
			if s.RoleID != nil {
				last.RoleIDs = addRole(last.RoleIDs, *s.RoleID)
			}
			continue
		}
		h := Hop{OrganizationID: org, Start: *s.Start, StintIDs: []int64{s.ID}}
		if s.RoleID != nil {
			h.RoleIDs = []int64{*s.RoleID}
		}
		hops = append(hops, h)
	}
	return hops
}

func addRole(roles []int64, id int64) []int64 {
	i := sort.Search(len(roles), func(i int) bool { return roles[i] >= id })
	if i < len(roles) && roles[i] == id {
		return roles
	}
	roles = append(roles, 0)
	copy(roles[i+1:], roles[i:])
	roles[i] = id
	return roles
}
