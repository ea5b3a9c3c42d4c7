package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// MutualConnections returns the nodes directly connected to both a and b.
// Candidates come from a depth-one traversal from a, so they respect the
// engine's edge filters, and are kept when b has an active relationship to them.
// Both sides judge expiry at now.
func MutualConnections(
	ctx context.Context,
	eng *traversal.Engine,
	acc traversal.Accessor,
	a, b string,
	now time.Time,
) (*models.MutualConnectionsResult, error) {
	res, err := eng.At(now).Traverse(ctx, a, models.TraversalOptions{
		MaxDepth: 1,
		SortBy:   models.SortRelevance,
		Limit:    math.MaxInt32,
	}, acc)
	if err != nil {
		return nil, fmt.Errorf("traversing from %s: %w", a, err)
	}

	rels, err := acc.GetRelationships(ctx, b, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching relationships of %s: %w", b, err)
	}

	linked := make(map[string]bool, len(rels))

	for i := range rels {
		r := &rels[i]
		if r.IsActive(now) && r.Touches(b) {
			linked[r.Other(b)] = true
		}
	}

	out := &models.MutualConnectionsResult{NodeA: a, NodeB: b, Mutual: make([]models.TraversedNode, 0)}

	for _, n := range res.Nodes {
		if n.NodeID != b && linked[n.NodeID] {
			out.Mutual = append(out.Mutual, n)
		}
	}

	out.Count = len(out.Mutual)

	return out, nil
}
