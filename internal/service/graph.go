// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/analytics"
	"github.com/campusgraph/socialgraph/internal/metrics"
	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// Suggestion limits.
const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 100
	defaultAnalyticsHops   = 2
)

// NeighborhoodLoader returns the subgraph within maxHops of a root node.
type NeighborhoodLoader interface {
	Neighborhood(ctx context.Context, rootID string, maxHops int) ([]models.GraphNode, []models.Relationship, error)
}

// GraphConfig bounds the work a single GraphService call may do.
type GraphConfig struct {
	MaxDepth int
	Timeout  time.Duration
}

// GraphService runs traversals and analytics over the stored graph.
type GraphService struct {
	engine        *traversal.Engine
	accessor      func() traversal.Accessor
	neighborhoods NeighborhoodLoader
	cfg           GraphConfig
	now           func() time.Time
	log           *logrus.Logger
}

// NewGraphService creates a GraphService. accessor is called once per
// operation so each call can get its own hit-counting view of a shared cache.
func NewGraphService(
	engine *traversal.Engine,
	accessor func() traversal.Accessor,
	neighborhoods NeighborhoodLoader,
	cfg GraphConfig,
	log *logrus.Logger,
) *GraphService {
	if cfg.MaxDepth < 1 {
		cfg.MaxDepth = models.DefaultMaxDepth
	}

	return &GraphService{
		engine:        engine,
		accessor:      accessor,
		neighborhoods: neighborhoods,
		cfg:           cfg,
		now:           time.Now,
		log:           log,
	}
}

func (s *GraphService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *GraphService) capDepth(depth int) int {
	if depth <= 0 {
		return min(models.DefaultMaxDepth, s.cfg.MaxDepth)
	}

	return min(depth, s.cfg.MaxDepth)
}

// Traverse walks the graph from startID.
func (s *GraphService) Traverse(ctx context.Context, startID string, opts models.TraversalOptions) (*models.TraversalResult, error) {
	opts.MaxDepth = s.capDepth(opts.MaxDepth)

	s.log.WithFields(logrus.Fields{
		"node_id":   startID,
		"max_depth": opts.MaxDepth,
		"sort_by":   opts.SortBy,
		"limit":     opts.Limit,
	}).Debug("graph.traverse")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	res, err := s.engine.Traverse(ctx, startID, opts, s.accessor())
	if err != nil {
		return nil, err
	}

	metrics.TraversalDuration.WithLabelValues("traverse").Observe(time.Since(start).Seconds())
	metrics.NodesVisited.Observe(float64(res.Metadata.NodesVisited))

	return res, nil
}

// MutualConnections returns nodes directly connected to both a and b.
func (s *GraphService) MutualConnections(ctx context.Context, a, b string) (*models.MutualConnectionsResult, error) {
	s.log.WithFields(logrus.Fields{"node_a": a, "node_b": b}).Debug("graph.mutual")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	acc := s.accessor()

	other, err := acc.GetNode(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("resolving node %s: %w", b, err)
	}

	if other == nil {
		return nil, models.ErrNodeNotFound
	}

	start := time.Now()

	res, err := analytics.MutualConnections(ctx, s.engine, acc, a, b, s.now())
	if err != nil {
		return nil, err
	}

	metrics.TraversalDuration.WithLabelValues("mutual").Observe(time.Since(start).Seconds())

	return res, nil
}

// SuggestConnections ranks second-degree nodes the user is not yet connected to.
// Nodes behind a block in either direction and private profiles are never suggested.
func (s *GraphService) SuggestConnections(ctx context.Context, nodeID string, limit int) ([]models.TraversedNode, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	limit = min(limit, maxSuggestionLimit)

	s.log.WithFields(logrus.Fields{"node_id": nodeID, "limit": limit}).Debug("graph.suggestions")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	acc := s.accessor()
	start := time.Now()

	res, err := s.engine.Traverse(ctx, nodeID, models.TraversalOptions{
		MaxDepth: s.capDepth(2),
		SortBy:   models.SortRelevance,
		Limit:    math.MaxInt32,
	}, acc)
	if err != nil {
		return nil, err
	}

	direct, err := acc.GetRelationships(ctx, nodeID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching relationships of %s: %w", nodeID, err)
	}

	known := make(map[string]bool, len(direct))
	for i := range direct {
		known[direct[i].Other(nodeID)] = true
	}

	out := make([]models.TraversedNode, 0, limit)

	for _, n := range res.Nodes {
		if len(out) == limit {
			break
		}

		if n.Distance < 2 || known[n.NodeID] {
			continue
		}

		if n.Node.Properties.Privacy.ProfileVisibility == models.VisibilityPrivate {
			continue
		}

		out = append(out, n)
	}

	metrics.TraversalDuration.WithLabelValues("suggestions").Observe(time.Since(start).Seconds())

	return out, nil
}

// neighborhood loads and indexes the subgraph around nodeID.
func (s *GraphService) neighborhood(ctx context.Context, nodeID string, hops int) (*analytics.Graph, error) {
	if hops <= 0 {
		hops = defaultAnalyticsHops
	}

	nodes, rels, err := s.neighborhoods.Neighborhood(ctx, nodeID, s.capDepth(hops))
	if err != nil {
		return nil, err
	}

	return analytics.Build(nodes, rels, s.now()), nil
}

// NetworkMetrics summarizes the neighborhood within hops of nodeID.
func (s *GraphService) NetworkMetrics(ctx context.Context, nodeID string, hops int) (*models.NetworkMetrics, error) {
	s.log.WithFields(logrus.Fields{"node_id": nodeID, "hops": hops}).Debug("graph.metrics")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g, err := s.neighborhood(ctx, nodeID, hops)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m := g.Metrics()
	metrics.AnalyticsDuration.WithLabelValues("metrics").Observe(time.Since(start).Seconds())

	return &m, nil
}

// Communities detects connected components in the neighborhood of nodeID.
func (s *GraphService) Communities(ctx context.Context, nodeID string, hops int) ([]models.Community, error) {
	s.log.WithFields(logrus.Fields{"node_id": nodeID, "hops": hops}).Debug("graph.communities")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g, err := s.neighborhood(ctx, nodeID, hops)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := g.Communities()
	metrics.AnalyticsDuration.WithLabelValues("communities").Observe(time.Since(start).Seconds())

	return out, nil
}

// InfluentialNodes ranks nodes in the neighborhood of nodeID by influence.
func (s *GraphService) InfluentialNodes(ctx context.Context, nodeID string, hops, limit int) ([]models.InfluentialNode, error) {
	s.log.WithFields(logrus.Fields{"node_id": nodeID, "hops": hops, "limit": limit}).Debug("graph.influential")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g, err := s.neighborhood(ctx, nodeID, hops)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := g.InfluentialNodes(limit)
	metrics.AnalyticsDuration.WithLabelValues("influential").Observe(time.Since(start).Seconds())

	return out, nil
}

// ShortestPath finds the shortest undirected path of active relationships from
// fromID to toID within maxDepth hops. Length is -1 when no such path exists.
func (s *GraphService) ShortestPath(ctx context.Context, fromID, toID string, maxDepth int) (*models.PathResult, error) {
	s.log.WithFields(logrus.Fields{
		"from_id":   fromID,
		"to_id":     toID,
		"max_depth": maxDepth,
	}).Debug("graph.shortest_path")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	target, err := s.accessor().GetNode(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("resolving node %s: %w", toID, err)
	}

	if target == nil {
		return nil, models.ErrNodeNotFound
	}

	g, err := s.neighborhood(ctx, fromID, maxDepth)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	out := &models.PathResult{From: fromID, To: toID, Path: make([]string, 0), Length: -1}
	if path := g.ShortestPath(fromID, toID); path != nil {
		out.Path = path
		out.Length = len(path) - 1
	}

	metrics.AnalyticsDuration.WithLabelValues("shortest_path").Observe(time.Since(start).Seconds())

	return out, nil
}

// Export returns the neighborhood within hops of nodeID in the portable export format.
func (s *GraphService) Export(ctx context.Context, nodeID string, hops int) (*models.ExportFormat, error) {
	s.log.WithFields(logrus.Fields{"node_id": nodeID, "hops": hops}).Debug("graph.export")

	if hops <= 0 {
		hops = defaultAnalyticsHops
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	nodes, rels, err := s.neighborhoods.Neighborhood(ctx, nodeID, s.capDepth(hops))
	if err != nil {
		return nil, err
	}

	return models.NewExport(nodeID, nodes, rels, s.now()), nil
}
