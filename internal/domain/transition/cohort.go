// Package transition aggregates post-exit career paths of a source
// organization's cohort and finds the people who reached a destination at an
// exact hop.
package transition

import (
	"sort"

	"github.com/okian/hopgraph/internal/domain/career"
	"github.com/okian/hopgraph/internal/domain/model"
)

// RoleSet is a set of role ids. A nil RoleSet means no role filter; an
// empty non-nil one is an active filter that nothing satisfies.
type RoleSet map[int64]struct{}

// NewRoleSet builds a RoleSet from ids. It never returns nil.
func NewRoleSet(ids ...int64) RoleSet {
	rs := make(RoleSet, len(ids))
	for _, id := range ids {
		rs[id] = struct{}{}
	}
	return rs
}

// Active reports whether the role filter takes part in the query.
func (rs RoleSet) Active() bool { return rs != nil }

// Cohort is the materialized input shared by Aggregate and MatchExactHop.
type Cohort struct {
	SourceOrgID int64
	// Exits are the exit events of the query window.
	Exits []model.Stint
	// Stints holds every stint of every person in Exits.
	Stints    map[int64][]model.Stint
	Directory *model.Directory
}

// SelectExits returns the exit events from sourceOrgID inside w, ordered by
// end date then id.
func SelectExits(stints []model.Stint, sourceOrgID int64, w model.Window) []model.Stint {
	var exits []model.Stint
	for _, s := range stints {
		if w.IsExit(s, sourceOrgID) {
			exits = append(exits, s)
		}
	}
	SortExits(exits)
	return exits
}

// SortExits orders exits by end date then id.
func SortExits(exits []model.Stint) {
	sort.SliceStable(exits, func(i, j int) bool {
		a, b := exits[i], exits[j]
		switch {
		case a.End == nil || b.End == nil:
			return b.End == nil && a.End != nil
		case !a.End.Equal(*b.End):
			return a.End.Before(*b.End)
		default:
			return a.ID < b.ID
		}
	})
}

// PersonIDs returns the distinct people of the cohort in ascending order.
func (c Cohort) PersonIDs() []int64 {
	seen := make(map[int64]struct{}, len(c.Exits))
	ids := make([]int64, 0, len(c.Exits))
	for _, e := range c.Exits {
		if _, ok := seen[e.PersonID]; ok {
			continue
		}
		seen[e.PersonID] = struct{}{}
		ids = append(ids, e.PersonID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c Cohort) path(exit model.Stint) career.Path {
	return career.Normalize(c.Stints[exit.PersonID], exit, c.SourceOrgID)
}
