package analytics

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// AnalyzeStructure inspects the category tree and item set for structural
// defects independent of usage metrics: size imbalance, deep nesting,
// naming inconsistencies, near-duplicate items, and orphaned or cyclic
// parent references. The walk is guarded by a visited set so malformed
// data is reported, never followed into a crash.
func AnalyzeStructure(cfg Config, categories []catalog.Category, items []catalog.Item) ([]catalog.Recommendation, []catalog.Warning) {
	byID := make(map[string]catalog.Category, len(categories))
	children := make(map[string][]string)
	var roots []string
	for _, c := range categories {
		byID[c.ID] = c
	}
	for _, c := range categories {
		switch {
		case c.ParentID == "":
			roots = append(roots, c.ID)
		default:
			children[c.ParentID] = append(children[c.ParentID], c.ID)
		}
	}
	sort.Strings(roots)
	for parent := range children {
		sort.Strings(children[parent])
	}

	var recs []catalog.Recommendation
	var warnings []catalog.Warning

	recs, warnings = checkNesting(cfg, byID, children, roots, recs, warnings)
	recs = checkOrphans(byID, recs)
	recs = checkSizeBands(cfg, byID, items, recs)
	recs = checkNaming(byID, items, recs)
	recs = checkDuplicates(cfg, items, recs)

	return recs, warnings
}

// checkNesting walks the tree breadth-first from the roots, flagging
// categories deeper than the configured maximum. A second walk from
// orphaned categories marks their descendants reachable without judging
// depth, which is undefined below a broken parent link; whatever remains
// unreached sits on a parent cycle.
func checkNesting(cfg Config, byID map[string]catalog.Category, children map[string][]string, roots []string, recs []catalog.Recommendation, warnings []catalog.Warning) ([]catalog.Recommendation, []catalog.Warning) {
	visited := make(map[string]bool, len(byID))
	type node struct {
		id    string
		depth int
	}
	queue := make([]node, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, node{id: r, depth: 0})
	}

	var tooDeep []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n.id] {
			continue
		}
		visited[n.id] = true
		if n.depth > cfg.MaxCategoryDepth {
			tooDeep = append(tooDeep, n.id)
		}
		for _, child := range children[n.id] {
			queue = append(queue, node{id: child, depth: n.depth + 1})
		}
	}

	for _, id := range tooDeep {
		recs = append(recs, catalog.Recommendation{
			Family:      catalog.DefectDeepNesting,
			Title:       fmt.Sprintf("Category %q is nested too deeply", byID[id].Title),
			Description: fmt.Sprintf("Category is more than %d levels below a root category", cfg.MaxCategoryDepth),
			Action:      "Flatten the category hierarchy to keep items discoverable",
			Impact:      catalog.ScoreMedium,
			Effort:      catalog.ScoreMedium,
			CategoryIDs: []string{id},
		})
	}

	// Orphaned categories and their descendants are unreachable from any
	// root but cycle-free; mark them visited so only cycle members remain.
	orphanQueue := make([]string, 0)
	for id, c := range byID {
		if visited[id] || c.ParentID == "" {
			continue
		}
		if _, parentExists := byID[c.ParentID]; !parentExists {
			orphanQueue = append(orphanQueue, id)
		}
	}
	for len(orphanQueue) > 0 {
		id := orphanQueue[0]
		orphanQueue = orphanQueue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		orphanQueue = append(orphanQueue, children[id]...)
	}

	var cyclic []string
	for id := range byID {
		if !visited[id] {
			cyclic = append(cyclic, id)
		}
	}
	if len(cyclic) > 0 {
		sort.Strings(cyclic)
		warnings = append(warnings, catalog.Warning{
			Code:    "category_cycle",
			Message: fmt.Sprintf("categories unreachable from any root due to a parent cycle: %s", strings.Join(cyclic, ", ")),
		})
	}
	return recs, warnings
}

func checkOrphans(byID map[string]catalog.Category, recs []catalog.Recommendation) []catalog.Recommendation {
	var orphaned []string
	for id, c := range byID {
		if c.ParentID == "" {
			continue
		}
		if _, ok := byID[c.ParentID]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	if len(orphaned) == 0 {
		return recs
	}
	sort.Strings(orphaned)
	return append(recs, catalog.Recommendation{
		Family:      catalog.DefectOrphanedCategory,
		Title:       "Categories with missing or inactive parents",
		Description: "These categories reference a parent that does not exist or is excluded; they are invisible in the category tree",
		Action:      "Reparent the categories or restore their parent",
		Impact:      catalog.ScoreHigh,
		Effort:      catalog.ScoreLow,
		CategoryIDs: orphaned,
	})
}

func checkSizeBands(cfg Config, byID map[string]catalog.Category, items []catalog.Item, recs []catalog.Recommendation) []catalog.Recommendation {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.CategoryID]++
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := counts[id]
		switch {
		case n > cfg.MaxCategoryItems:
			recs = append(recs, catalog.Recommendation{
				Family:      catalog.DefectTooManyItems,
				Title:       fmt.Sprintf("Category %q holds too many items", byID[id].Title),
				Description: fmt.Sprintf("Category contains %d items, above the maximum of %d", n, cfg.MaxCategoryItems),
				Action:      "Split the category into smaller, more specific ones",
				Impact:      catalog.ScoreMedium,
				Effort:      catalog.ScoreMedium,
				CategoryIDs: []string{id},
			})
		case n < cfg.MinCategoryItems:
			recs = append(recs, catalog.Recommendation{
				Family:      catalog.DefectTooFewItems,
				Title:       fmt.Sprintf("Category %q holds too few items", byID[id].Title),
				Description: fmt.Sprintf("Category contains %d items, below the minimum of %d", n, cfg.MinCategoryItems),
				Action:      "Merge the category with a related one or retire it",
				Impact:      catalog.ScoreLow,
				Effort:      catalog.ScoreLow,
				CategoryIDs: []string{id},
			})
		}
	}
	return recs
}

// checkNaming is a best-effort heuristic, not a hard invariant: it flags
// titles with stray whitespace or a capitalization style far from Title
// Case.
func checkNaming(byID map[string]catalog.Category, items []catalog.Item, recs []catalog.Recommendation) []catalog.Recommendation {
	var badCategories, badItems []string
	for id, c := range byID {
		if titleLooksInconsistent(c.Title) {
			badCategories = append(badCategories, id)
		}
	}
	for _, item := range items {
		if titleLooksInconsistent(item.Name) {
			badItems = append(badItems, item.ID)
		}
	}
	if len(badCategories) == 0 && len(badItems) == 0 {
		return recs
	}
	sort.Strings(badCategories)
	sort.Strings(badItems)
	return append(recs, catalog.Recommendation{
		Family:      catalog.DefectNaming,
		Title:       "Inconsistent naming across the catalog",
		Description: "These titles deviate from the catalog's Title Case convention or contain stray whitespace",
		Action:      "Align names with the catalog naming convention",
		Impact:      catalog.ScoreLow,
		Effort:      catalog.ScoreLow,
		ItemIDs:     badItems,
		CategoryIDs: badCategories,
	})
}

func titleLooksInconsistent(title string) bool {
	if title == "" {
		return true
	}
	if title != strings.TrimSpace(title) || strings.Contains(title, "  ") {
		return true
	}
	words := strings.Fields(title)
	capitalized := 0
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsLetter(r) || unicode.IsUpper(r) {
			capitalized++
		}
	}
	// Majority vote keeps short connective words ("for", "and") from
	// triggering false positives.
	return capitalized*2 < len(words)
}

// checkDuplicates reports item pairs whose normalized short descriptions
// exceed the Jaccard similarity threshold. Comparison is cross-category.
func checkDuplicates(cfg Config, items []catalog.Item, recs []catalog.Recommendation) []catalog.Recommendation {
	type candidate struct {
		item   catalog.Item
		tokens map[string]bool
	}
	var candidates []candidate
	for _, item := range items {
		tokens := tokenize(item.ShortDescription)
		if len(tokens) == 0 {
			continue
		}
		candidates = append(candidates, candidate{item: item, tokens: tokens})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].item.ID < candidates[j].item.ID
	})

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if jaccard(a.tokens, b.tokens) < cfg.SimilarityThreshold {
				continue
			}
			recs = append(recs, catalog.Recommendation{
				Family:      catalog.DefectPossibleDup,
				Title:       fmt.Sprintf("Possible duplicate items: %q and %q", a.item.Name, b.item.Name),
				Description: "The items' descriptions are nearly identical and likely confuse requesters",
				Action:      "Merge the items or differentiate their descriptions",
				Impact:      catalog.ScoreMedium,
				Effort:      catalog.ScoreLow,
				ItemIDs:     []string{a.item.ID, b.item.ID},
			})
		}
	}
	return recs
}

// tokenize lowercases, strips punctuation, and splits a description into
// a token set for Jaccard comparison.
func tokenize(s string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		tokens[tok] = true
	}
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
