package analytics

import (
	"sort"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// Assemble merges rule engine and structure analyzer output into one
// ordered, de-duplicated list and computes per-family counts. When
// families is non-empty the list is filtered to those families first.
// Assemble performs no I/O and its output order is a stable total order,
// so identical input always yields identical output.
func Assemble(recs []catalog.Recommendation, families []catalog.RuleFamily) ([]catalog.Recommendation, map[catalog.RuleFamily]int) {
	if len(families) > 0 {
		wanted := make(map[catalog.RuleFamily]bool, len(families))
		for _, f := range families {
			wanted[f] = true
		}
		filtered := recs[:0:0]
		for _, r := range recs {
			if wanted[r.Family] {
				filtered = append(filtered, r)
			}
		}
		recs = filtered
	}

	recs = mergeDuplicates(recs)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Less(&recs[j])
	})

	counts := make(map[catalog.RuleFamily]int)
	for _, r := range recs {
		counts[r.Family]++
	}
	return recs, counts
}

// mergeDuplicates unions the affected-record lists of recommendations
// that share a family and title, so a record is never named twice by the
// same finding.
func mergeDuplicates(recs []catalog.Recommendation) []catalog.Recommendation {
	type key struct {
		family catalog.RuleFamily
		title  string
	}
	index := make(map[key]int)
	merged := make([]catalog.Recommendation, 0, len(recs))
	for _, r := range recs {
		k := key{family: r.Family, title: r.Title}
		at, seen := index[k]
		if !seen {
			index[k] = len(merged)
			merged = append(merged, r)
			continue
		}
		merged[at].ItemIDs = unionSorted(merged[at].ItemIDs, r.ItemIDs)
		merged[at].CategoryIDs = unionSorted(merged[at].CategoryIDs, r.CategoryIDs)
	}
	return merged
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
