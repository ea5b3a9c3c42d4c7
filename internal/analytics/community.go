package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

// defaultInfluentialLimit applies when InfluentialNodes is given a non-positive limit.
const defaultInfluentialLimit = 10

// Communities labels connected components within the node set. Components
// of a single node are dropped. Members are sorted, and communities are
// ordered largest first.
func (g *Graph) Communities() []models.Community {
	visited := make(map[string]bool, len(g.nodes))
	out := make([]models.Community, 0)

	for i := range g.nodes {
		start := g.nodes[i].ID
		if visited[start] {
			continue
		}

		visited[start] = true
		members := []string{start}

		for q := 0; q < len(members); q++ {
			for _, nb := range g.adj[members[q]] {
				if !visited[nb] && g.inSet(nb) {
					visited[nb] = true
					members = append(members, nb)
				}
			}
		}

		if len(members) < 2 {
			continue
		}

		slices.Sort(members)
		out = append(out, models.Community{
			Members: members,
			Size:    len(members),
			Density: g.internalDensity(members),
		})
	}

	slices.SortStableFunc(out, func(a, b models.Community) int {
		if a.Size != b.Size {
			return b.Size - a.Size
		}

		return cmp.Compare(a.Members[0], b.Members[0])
	})

	for i := range out {
		out[i].ID = i + 1
	}

	return out
}

func (g *Graph) internalDensity(members []string) float64 {
	k := len(members)
	links := 0

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if g.connected(members[i], members[j]) {
				links++
			}
		}
	}

	return float64(links) / (float64(k) * float64(k-1) / 2)
}

// InfluentialNodes ranks the node set by follower count, follower engagement,
// mutual connections and university connections, highest first.
func (g *Graph) InfluentialNodes(limit int) []models.InfluentialNode {
	if limit <= 0 {
		limit = defaultInfluentialLimit
	}

	followers := make(map[string]int)
	engagement := make(map[string]float64)

	for i := range g.rels {
		r := &g.rels[i]
		if r.Type != models.TypeFollow {
			continue
		}

		followers[r.TargetID]++

		if idx, ok := g.index[r.SourceID]; ok {
			engagement[r.TargetID] += g.nodes[idx].Metrics.EngagementScore
		}
	}

	out := make([]models.InfluentialNode, 0, len(g.nodes))

	for i := range g.nodes {
		n := &g.nodes[i]
		score := float64(followers[n.ID]) +
			engagement[n.ID]*0.1 +
			float64(n.Connections.Mutual)*0.5 +
			float64(n.Connections.University)*0.3

		out = append(out, models.InfluentialNode{NodeID: n.ID, Score: score, Followers: followers[n.ID]})
	}

	slices.SortStableFunc(out, func(a, b models.InfluentialNode) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out
}

// DetectCommunities labels the connected components of nodes over rels active now.
func DetectCommunities(nodes []models.GraphNode, rels []models.Relationship) []models.Community {
	return Build(nodes, rels, time.Now()).Communities()
}

// InfluentialNodes ranks nodes over rels active now.
func InfluentialNodes(nodes []models.GraphNode, rels []models.Relationship, limit int) []models.InfluentialNode {
	return Build(nodes, rels, time.Now()).InfluentialNodes(limit)
}
