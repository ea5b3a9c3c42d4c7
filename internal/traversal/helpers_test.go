package traversal_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// fakeGraph is an in-memory Accessor that records lookups.
type fakeGraph struct {
	mu        sync.Mutex
	nodes     map[string]*models.GraphNode
	rels      []models.Relationship
	nodeCalls []string
	nodeErr   error
	relErr    error
	hits      int64
}

func newFakeGraph(ids ...string) *fakeGraph {
	g := &fakeGraph{nodes: make(map[string]*models.GraphNode)}
	for _, id := range ids {
		g.addNode(id)
	}

	return g
}

func (g *fakeGraph) addNode(id string) *models.GraphNode {
	n := &models.GraphNode{
		ID:           id,
		OwnerUserID:  "user-" + id,
		Type:         models.NodeUser,
		Metrics:      models.NodeMetrics{ActivityLevel: models.ActivityMedium},
		LastActivity: testNow,
	}
	g.nodes[id] = n

	return n
}

func (g *fakeGraph) link(source, target string, strength float64) *models.Relationship {
	return g.linkTyped(source, target, models.TypeFollow, strength)
}

func (g *fakeGraph) linkTyped(source, target string, typ models.RelationshipType, strength float64) *models.Relationship {
	g.rels = append(g.rels, models.Relationship{
		ID:        source + "-" + target + "-" + string(typ),
		SourceID:  source,
		TargetID:  target,
		Type:      typ,
		Status:    models.StatusActive,
		Strength:  strength,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})

	return &g.rels[len(g.rels)-1]
}

func (g *fakeGraph) GetNode(_ context.Context, id string) (*models.GraphNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodeCalls = append(g.nodeCalls, id)

	if g.nodeErr != nil {
		return nil, g.nodeErr
	}

	n, ok := g.nodes[id]
	if !ok {
		return nil, nil
	}

	cp := *n

	return &cp, nil
}

func (g *fakeGraph) GetRelationships(_ context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	if g.relErr != nil {
		return nil, g.relErr
	}

	var out []models.Relationship

	for _, r := range g.rels {
		if !r.Touches(id) {
			continue
		}

		if len(types) > 0 && !slices.Contains(types, r.Type) {
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

func (g *fakeGraph) CacheHits() int64 { return g.hits }

func nodeIDs(res *models.TraversalResult) []string {
	ids := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ids = append(ids, n.NodeID)
	}

	return ids
}
