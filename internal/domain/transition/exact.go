package transition

import (
	"sort"
	"time"

	"github.com/okian/hopgraph/internal/domain/career"
	"github.com/okian/hopgraph/internal/domain/model"
)

// ExactQuery configures MatchExactHop.
type ExactQuery struct {
	DestOrgID int64
	Hop       int
	Roles     RoleSet
}

// HistoryItem is one raw stint of a matched person with its segment label.
type HistoryItem struct {
	Stint   model.Stint
	Segment career.Segment
}

// Match is a person who reached the destination at exactly the queried hop.
type Match struct {
	PersonID       int64
	PersonName     string
	ExitDate       time.Time
	TransitionDate time.Time
	History        []HistoryItem
	RoleMatch      bool
}

// MatchExactHop returns the people whose hop number q.Hop after an exit is
// the destination. A person with several qualifying exits is reported once,
// anchored on the earliest. Results are ordered by name then person id.
func MatchExactHop(c Cohort, q ExactQuery) []Match {
	out := []Match{}
	if q.Hop < 1 {
		return out
	}

	exits := append([]model.Stint(nil), c.Exits...)
	SortExits(exits)

	seen := make(map[int64]struct{})
	for _, exit := range exits {
		if _, ok := seen[exit.PersonID]; ok {
			continue
		}
		p := c.path(exit)
		h, ok := p.At(q.Hop)
		if !ok || h.OrganizationID != q.DestOrgID {
			continue
		}
		seen[exit.PersonID] = struct{}{}

		out = append(out, Match{
			PersonID:       exit.PersonID,
			PersonName:     c.Directory.PersonName(exit.PersonID),
			ExitDate:       *exit.End,
			TransitionDate: h.Start,
			History:        history(c.Stints[exit.PersonID], p.Labels(exit.ID)),
			RoleMatch:      q.Roles.Active() && h.HasAnyRole(q.Roles),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PersonName != out[j].PersonName {
			return out[i].PersonName < out[j].PersonName
		}
		return out[i].PersonID < out[j].PersonID
	})
	return out
}

// history returns every stint of the person in chronological order with
// its segment label.
func history(stints []model.Stint, labels map[int64]career.Segment) []HistoryItem {
	sorted := append([]model.Stint(nil), stints...)
	model.SortStints(sorted)
	items := make([]HistoryItem, 0, len(sorted))
	for _, s := range sorted {
		items = append(items, HistoryItem{Stint: s, Segment: career.SegmentOf(labels, s.ID)})
	}
	return items
}

// Arrivals returns, per organization, the people of the cohort who reached
// it within maxHops of any exit.
func Arrivals(c Cohort, maxHops int) map[int64]map[int64]struct{} {
	out := make(map[int64]map[int64]struct{})
	for _, exit := range c.Exits {
		p := c.path(exit)
		for n := 1; n <= maxHops; n++ {
			h, ok := p.At(n)
			if !ok {
				break
			}
			people, ok := out[h.OrganizationID]
			if !ok {
				people = make(map[int64]struct{})
				out[h.OrganizationID] = people
			}
			people[exit.PersonID] = struct{}{}
		}
	}
	return out
}
