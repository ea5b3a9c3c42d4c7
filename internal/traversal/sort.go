package traversal

import (
	"cmp"
	"slices"
	"strings"

	"github.com/campusgraph/socialgraph/internal/models"
)

// sortResults orders results in place by key. Ties break by node id so the
// ranking does not depend on the accessor's edge order.
func sortResults(results []*traversedNode, key models.SortBy) {
	var primary func(a, b *traversedNode) int

	switch key {
	case models.SortDistance:
		primary = func(a, b *traversedNode) int { return cmp.Compare(a.distance, b.distance) }
	case models.SortStrength:
		primary = func(a, b *traversedNode) int { return descending(a.weight, b.weight) }
	case models.SortActivity:
		primary = func(a, b *traversedNode) int {
			return descending(a.node.Metrics.EngagementScore, b.node.Metrics.EngagementScore)
		}
	default:
		primary = func(a, b *traversedNode) int { return descending(a.relevance, b.relevance) }
	}

	slices.SortFunc(results, func(a, b *traversedNode) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.node.ID, b.node.ID)
	})
}

func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// paginate returns the [offset, offset+limit) window of results.
func paginate(results []*traversedNode, offset, limit int) []*traversedNode {
	if offset >= len(results) {
		return nil
	}

	end := len(results)
	if limit < end-offset {
		end = offset + limit
	}

	return results[offset:end]
}
