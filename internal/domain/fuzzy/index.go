package fuzzy

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/hopgraph/internal/domain/model"
)

// DefaultDirectoryMinScore is the minimum DirectoryScore to accept a name
// as denoting a known organization or school.
const DefaultDirectoryMinScore = 78.0

// IndexOption applies a configuration option to the Index.
type IndexOption func(*Index)

// WithDirectoryMinScore sets the minimum score for fuzzy name resolution.
func WithDirectoryMinScore(score float64) IndexOption {
	return func(ix *Index) {
		if score > 0 && score <= maxScore {
			ix.minScore = score
		}
	}
}

type entry struct {
	id   int64
	name string
}

// table is a name reference table for one entity kind.
type table struct {
	entries []entry
	byID    map[int64]string
	byName  map[string][]int64
}

func newTable(n int) table {
	return table{byID: make(map[int64]string, n), byName: make(map[string][]int64, n)}
}

func (t *table) add(id int64, name string) {
	t.entries = append(t.entries, entry{id: id, name: name})
	t.byID[id] = name
	key := strings.TrimSpace(name)
	t.byName[key] = append(t.byName[key], id)
}

// Index resolves organization and school references to canonical ids. It
// is built once per request from the full reference tables and is
// read-only afterwards, so it is safe for concurrent use.
type Index struct {
	orgs       table
	schools    table
	orgExt     map[int64]string
	byExternal map[string][]int64
	minScore   float64
}

// NewIndex builds an Index from all known organizations and schools.
func NewIndex(orgs []model.Organization, schools []model.School, opts ...IndexOption) *Index {
	ix := &Index{
		orgs:       newTable(len(orgs)),
		schools:    newTable(len(schools)),
		orgExt:     make(map[int64]string),
		byExternal: make(map[string][]int64),
		minScore:   DefaultDirectoryMinScore,
	}
	for _, opt := range opts {
		opt(ix)
	}
	for _, o := range orgs {
		ix.orgs.add(o.ID, o.Name)
		if o.ExternalID != nil && strings.TrimSpace(*o.ExternalID) != "" {
			ext := strings.TrimSpace(*o.ExternalID)
			ix.orgExt[o.ID] = ext
			ix.byExternal[ext] = append(ix.byExternal[ext], o.ID)
		}
	}
	for _, s := range schools {
		ix.schools.add(s.ID, s.Name)
	}
	return ix
}

// ResolveOrganization maps a viewer-supplied organization reference (an id
// or a name) to every organization id it denotes. Resolution tries, in
// order: numeric id, exact name, then the best fuzzy directory match. Each
// hit is widened to the organizations sharing its external id.
func (ix *Index) ResolveOrganization(ref string) []int64 {
	return ix.widen(ix.orgs.resolve(ref, ix.minScore))
}

// ResolveSchool maps a school reference (id or name) to school ids.
func (ix *Index) ResolveSchool(ref string) []int64 {
	return ix.schools.resolve(ref, ix.minScore)
}

// CanonicalOrganization returns the identity set of a known organization:
// every organization sharing its external id when one is recorded,
// otherwise every organization with exactly the same name.
func (ix *Index) CanonicalOrganization(id int64) []int64 {
	if ext, ok := ix.orgExt[id]; ok {
		return sortedIDs(ix.byExternal[ext])
	}
	if name, ok := ix.orgs.byID[id]; ok {
		return sortedIDs(ix.orgs.byName[strings.TrimSpace(name)])
	}
	return []int64{id}
}

// CanonicalSchool returns every school with exactly the same name as id.
func (ix *Index) CanonicalSchool(id int64) []int64 {
	if name, ok := ix.schools.byID[id]; ok {
		return sortedIDs(ix.schools.byName[strings.TrimSpace(name)])
	}
	return []int64{id}
}

// OrganizationName returns the indexed name of an organization.
func (ix *Index) OrganizationName(id int64) string {
	if name, ok := ix.orgs.byID[id]; ok {
		return name
	}
	return model.UnknownName
}

// SchoolName returns the indexed name of a school.
func (ix *Index) SchoolName(id int64) string {
	if name, ok := ix.schools.byID[id]; ok {
		return name
	}
	return model.UnknownName
}

func (ix *Index) widen(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
		if ext, ok := ix.orgExt[id]; ok {
			for _, other := range ix.byExternal[ext] {
				seen[other] = struct{}{}
			}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return sortedIDs(out)
}

func (t *table) resolve(ref string, minScore float64) []int64 {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if _, ok := t.byID[id]; ok {
			return []int64{id}
		}
	}
	if ids, ok := t.byName[ref]; ok {
		return sortedIDs(ids)
	}
	best, bestScore := int64(0), -1.0
	for _, e := range t.entries {
		score := DirectoryScore(ref, e.name)
		if score > bestScore || (score == bestScore && e.id < best) {
			best, bestScore = e.id, score
		}
	}
	if bestScore < minScore {
		return nil
	}
	return []int64{best}
}

func sortedIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
