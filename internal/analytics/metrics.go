package analytics

import (
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

// averagePathSample bounds how many nodes AveragePathLength measures between.
const averagePathSample = 100

// Density is the ratio of distinct edges to the maximum possible for the node set.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}

	return float64(g.edgeCount()) / (float64(n) * float64(n-1) / 2)
}

// ClusteringCoefficient is the fraction of pairs of id's neighbors that are themselves connected.
func (g *Graph) ClusteringCoefficient(id string) float64 {
	nbs := g.adj[id]
	k := len(nbs)

	if k < 2 {
		return 0
	}

	links := 0

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if g.connected(nbs[i], nbs[j]) {
				links++
			}
		}
	}

	return float64(links) / (float64(k) * float64(k-1) / 2)
}

// ShortestPath returns the node ids on a fewest-hop path from a to b, or nil when unreachable.
func (g *Graph) ShortestPath(a, b string) []string {
	if a == b {
		return []string{a}
	}

	parent := map[string]string{a: ""}
	queue := []string{a}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, nb := range g.adj[cur] {
			if _, seen := parent[nb]; seen {
				continue
			}

			parent[nb] = cur

			if nb == b {
				return tracePath(parent, a, b)
			}

			queue = append(queue, nb)
		}
	}

	return nil
}

func tracePath(parent map[string]string, from, to string) []string {
	var path []string

	for cur := to; cur != from; cur = parent[cur] {
		path = append(path, cur)
	}

	path = append(path, from)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// ShortestPathLength returns the hop count from a to b, or -1 when unreachable.
func (g *Graph) ShortestPathLength(a, b string) int {
	path := g.ShortestPath(a, b)
	if path == nil {
		return -1
	}

	return len(path) - 1
}

// AveragePathLength averages hop counts between reachable pairs of the first
// hundred nodes. It approximates the full average on larger graphs.
func (g *Graph) AveragePathLength() float64 {
	sample := g.nodes
	if len(sample) > averagePathSample {
		sample = sample[:averagePathSample]
	}

	total, pairs := 0, 0

	for i := range sample {
		dist := g.bfsDistances(sample[i].ID)

		for j := i + 1; j < len(sample); j++ {
			if d, ok := dist[sample[j].ID]; ok && d > 0 {
				total += d
				pairs++
			}
		}
	}

	if pairs == 0 {
		return 0
	}

	return float64(total) / float64(pairs)
}

// Metrics bundles the structural summary of the graph.
func (g *Graph) Metrics() models.NetworkMetrics {
	n := len(g.nodes)
	if n == 0 {
		return models.NetworkMetrics{}
	}

	edges := g.edgeCount()

	clustering := 0.0
	for i := range g.nodes {
		clustering += g.ClusteringCoefficient(g.nodes[i].ID)
	}

	return models.NetworkMetrics{
		NodeCount:             n,
		EdgeCount:             edges,
		Density:               g.Density(),
		AverageDegree:         2 * float64(edges) / float64(n),
		AveragePathLength:     g.AveragePathLength(),
		ClusteringCoefficient: clustering / float64(n),
		ComponentCount:        len(g.Communities()),
	}
}

// Density computes the density of nodes over rels active now.
func Density(nodes []models.GraphNode, rels []models.Relationship) float64 {
	return Build(nodes, rels, time.Now()).Density()
}

// ClusteringCoefficient computes the clustering coefficient of nodeID over rels active now.
func ClusteringCoefficient(nodeID string, rels []models.Relationship) float64 {
	return Build(nil, rels, time.Now()).ClusteringCoefficient(nodeID)
}

// ShortestPathLength computes the hop count from a to b over rels active now, or -1.
func ShortestPathLength(a, b string, rels []models.Relationship) int {
	return Build(nil, rels, time.Now()).ShortestPathLength(a, b)
}

// ShortestPath computes a fewest-hop path from a to b over rels active now.
func ShortestPath(a, b string, rels []models.Relationship) []string {
	return Build(nil, rels, time.Now()).ShortestPath(a, b)
}

// AveragePathLength approximates the average hop count between nodes over rels active now.
func AveragePathLength(nodes []models.GraphNode, rels []models.Relationship) float64 {
	return Build(nodes, rels, time.Now()).AveragePathLength()
}

// ComputeNetworkMetrics summarizes nodes and rels active now.
func ComputeNetworkMetrics(nodes []models.GraphNode, rels []models.Relationship) models.NetworkMetrics {
	return Build(nodes, rels, time.Now()).Metrics()
}
