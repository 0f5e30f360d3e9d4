package transition

import (
	"sort"
)

// Query configures Aggregate.
type Query struct {
	MaxHops int
	Roles   RoleSet
}

// Destination is one organization reached at a given hop.
type Destination struct {
	OrganizationID   int64
	OrganizationName string
	Count            int
	TotalCount       int
	Years            []int
	RoleMatch        bool
}

// HopGroup holds the destinations reached at one hop.
type HopGroup struct {
	Hop          int
	Destinations []Destination
}

type hopKey struct {
	hop int
	org int64
}

type counter struct {
	count int
	years map[int]struct{}
}

// Aggregate counts, per hop, the organizations the cohort moved to. Hops
// are returned in ascending order and only hops with at least one
// destination appear.
func Aggregate(c Cohort, q Query) []HopGroup {
	if len(c.Exits) == 0 || q.MaxHops < 1 {
		return []HopGroup{}
	}

	counts := make(map[hopKey]*counter)
	totals := make(map[int64]int)
	roleMatch := make(map[int64]bool)

	for _, exit := range c.Exits {
		p := c.path(exit)
		for n := 1; n <= q.MaxHops; n++ {
			h, ok := p.At(n)
			if !ok {
				break
			}
			k := hopKey{hop: n, org: h.OrganizationID}
			ctr, ok := counts[k]
			if !ok {
				ctr = &counter{years: make(map[int]struct{})}
				counts[k] = ctr
			}
			ctr.count++
			ctr.years[h.Start.Year()] = struct{}{}
			totals[h.OrganizationID]++

			// flagged for the destination across all hops
			if q.Roles.Active() && h.HasAnyRole(q.Roles) {
				roleMatch[h.OrganizationID] = true
			}
		}
	}

	byHop := make(map[int][]Destination)
	for k, ctr := range counts {
		years := make([]int, 0, len(ctr.years))
		for y := range ctr.years {
			years = append(years, y)
		}
		sort.Ints(years)
		byHop[k.hop] = append(byHop[k.hop], Destination{
			OrganizationID:   k.org,
			OrganizationName: c.Directory.OrganizationName(&k.org),
			Count:            ctr.count,
			TotalCount:       totals[k.org],
			Years:            years,
			RoleMatch:        roleMatch[k.org],
		})
	}

	groups := make([]HopGroup, 0, len(byHop))
	for hop, dests := range byHop {
		SortDestinations(dests)
		groups = append(groups, HopGroup{Hop: hop, Destinations: dests})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Hop < groups[j].Hop })
	return groups
}

// SortDestinations orders by count descending, then name, then id.
func SortDestinations(dests []Destination) {
	sort.Slice(dests, func(i, j int) bool {
		a, b := dests[i], dests[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.OrganizationName != b.OrganizationName {
			return a.OrganizationName < b.OrganizationName
		}
		return a.OrganizationID < b.OrganizationID
	})
}
