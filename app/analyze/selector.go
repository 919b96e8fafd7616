package analyze

import (
	"slices"

	"github.com/lysyi3m/herald/app/news"
)

// ApplyHardCap returns items sorted by score descending, ties in input
// order, truncated to maxItems. The input slice is not modified.
func ApplyHardCap(items []news.Item, maxItems int) []news.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b news.Item) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if maxItems < 0 {
		maxItems = 0
	}
	if len(sorted) > maxItems {
		sorted = sorted[:maxItems]
	}
	return sorted
}
