package traversal

import (
	"math"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

// Scoring constants.
const (
	distanceDecay      = 0.8
	mutualWeightStep   = 0.1
	mutualWeightCap    = 0.5
	interactionStep    = 0.05
	interactionCap     = 0.3
	recencyWindowDays  = 30.0
	recencyWeight      = 0.2
	engagementWeight   = 0.3
	influenceWeight    = 0.2
	mutualRelevanceCap = 0.3
	mutualRelevance    = 0.05
)

// activityFactor maps a node's activity level to a weight multiplier.
func activityFactor(level models.ActivityLevel) float64 {
	switch level {
	case models.ActivityHigh:
		return 1.2
	case models.ActivityLow:
		return 0.8
	default:
		return 1.0
	}
}

// edgeWeight computes the weight of a node reached from a parent over r.
func edgeWeight(parentWeight float64, parentDistance int, r *models.Relationship, n *models.GraphNode) float64 {
	w := parentWeight * (r.Strength / 100) * math.Pow(distanceDecay, float64(parentDistance)) * activityFactor(n.Metrics.ActivityLevel)

	ctx := &r.Metadata.Context
	w += math.Min(float64(ctx.MutualConnections)*mutualWeightStep, mutualWeightCap)

	if ctx.InteractionScore != nil {
		w += math.Min(*ctx.InteractionScore*interactionStep, interactionCap)
	}

	return clamp01(w)
}

// relevance is the composite ranking score for a traversed node.
func relevance(weight float64, n *models.GraphNode, now time.Time) float64 {
	score := weight +
		engagementWeight*(n.Metrics.EngagementScore/100) +
		influenceWeight*(n.Metrics.InfluenceScore/100)

	if !n.LastActivity.IsZero() {
		days := math.Max(0, now.Sub(n.LastActivity).Hours()/24)
		score += math.Max(0, 1-days/recencyWindowDays) * recencyWeight
	}

	score += math.Min(float64(n.Connections.Mutual)*mutualRelevance, mutualRelevanceCap)

	return score
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
