// Package analytics computes structural metrics over a materialized set of
// nodes and relationships. Only active relationships count as edges, and
// edges are treated as undirected.
package analytics

import (
	"slices"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

// Graph is an undirected adjacency view over the active relationships of a snapshot.
type Graph struct {
	nodes []models.GraphNode
	index map[string]int
	adj   map[string][]string
	rels  []models.Relationship
	now   time.Time
}

// Build constructs a Graph. Relationships inactive at now are ignored, as are
// self loops. Neighbor lists are sorted so results are deterministic.
func Build(nodes []models.GraphNode, rels []models.Relationship, now time.Time) *Graph {
	g := &Graph{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		adj:   make(map[string][]string),
		now:   now,
	}

	for i := range nodes {
		g.index[nodes[i].ID] = i
	}

	seen := make(map[[2]string]bool, len(rels))

	for i := range rels {
		r := &rels[i]
		if !r.IsActive(now) || r.SourceID == r.TargetID {
			continue
		}

		g.rels = append(g.rels, *r)

		key := pairKey(r.SourceID, r.TargetID)
		if seen[key] {
			continue
		}

		seen[key] = true
		g.adj[r.SourceID] = append(g.adj[r.SourceID], r.TargetID)
		g.adj[r.TargetID] = append(g.adj[r.TargetID], r.SourceID)
	}

	for id := range g.adj {
		slices.Sort(g.adj[id])
	}

	return g
}

// Neighbors returns the distinct active neighbors of id.
func (g *Graph) Neighbors(id string) []string {
	return g.adj[id]
}

func (g *Graph) connected(a, b string) bool {
	_, found := slices.BinarySearch(g.adj[a], b)
	return found
}

func (g *Graph) inSet(id string) bool {
	_, ok := g.index[id]
	return ok
}

// edgeCount counts distinct undirected edges with both endpoints in the node set.
func (g *Graph) edgeCount() int {
	count := 0

	for i := range g.nodes {
		id := g.nodes[i].ID
		for _, nb := range g.adj[id] {
			if id < nb && g.inSet(nb) {
				count++
			}
		}
	}

	return count
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}

	return [2]string{a, b}
}

// bfsDistances returns hop counts from start to every reachable node.
func (g *Graph) bfsDistances(start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, nb := range g.adj[cur] {
			if _, ok := dist[nb]; !ok {
				dist[nb] = dist[cur] + 1
				queue = append(queue, nb)
			}
		}
	}

	return dist
}
