package fuzzy

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Scores are on a 0-100 scale.
const (
	maxScore = 100.0

	directoryRatioWeight    = 0.5
	directoryTokenSetWeight = 0.35
	directoryPartialWeight  = 0.15
)

// Ratio is the normalized edit-distance similarity of a and b.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return maxScore * (1 - float64(dist)/float64(longest))
}

// PartialRatio is the best Ratio of the shorter string against every
// equally long window of the longer one.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	s := string(short)
	if strings.Contains(string(long), s) {
		return maxScore
	}
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := Ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
		}
	}
	return best
}

// TokenSetRatio compares the shared and distinct token sets of a and b, so
// extra words on one side do not dilute a full match of the other.
func TokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var inter, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter = append(inter, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return maxScore
	}
	sect := joinSorted(inter)
	combA := strings.TrimSpace(sect + " " + joinSorted(onlyA))
	combB := strings.TrimSpace(sect + " " + joinSorted(onlyB))

	best := Ratio(combA, combB)
	if sect != "" {
		best = max(best, Ratio(sect, combA), Ratio(sect, combB))
	}
	return best
}

// Similarity is the score used for roles and departments: the best of
// Ratio, PartialRatio and TokenSetRatio over normalized text.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return maxScore
	}
	return max(Ratio(na, nb), PartialRatio(na, nb), TokenSetRatio(na, nb))
}

// DirectoryScore rates how likely two organization or school names denote
// the same entity. It is stricter than Similarity because a hit merges
// identities rather than flagging a resemblance.
func DirectoryScore(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return maxScore
	}
	return directoryRatioWeight*Ratio(na, nb) +
		directoryTokenSetWeight*TokenSetRatio(na, nb) +
		directoryPartialWeight*PartialRatio(na, nb)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func joinSorted(tokens []string) string {
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
