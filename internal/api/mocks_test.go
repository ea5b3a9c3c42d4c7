package api_test

import (
	"context"

	"github.com/campusgraph/socialgraph/internal/models"
)

// mockGraphService returns configured responses; unset functions panic so tests fail loudly.
type mockGraphService struct {
	traverseFn    func(ctx context.Context, startID string, opts models.TraversalOptions) (*models.TraversalResult, error)
	mutualFn      func(ctx context.Context, a, b string) (*models.MutualConnectionsResult, error)
	suggestFn     func(ctx context.Context, nodeID string, limit int) ([]models.TraversedNode, error)
	metricsFn     func(ctx context.Context, nodeID string, hops int) (*models.NetworkMetrics, error)
	communitiesFn func(ctx context.Context, nodeID string, hops int) ([]models.Community, error)
	influentialFn func(ctx context.Context, nodeID string, hops, limit int) ([]models.InfluentialNode, error)
	pathFn        func(ctx context.Context, fromID, toID string, maxDepth int) (*models.PathResult, error)
	exportFn      func(ctx context.Context, nodeID string, hops int) (*models.ExportFormat, error)
}

func (m *mockGraphService) Traverse(ctx context.Context, startID string, opts models.TraversalOptions) (*models.TraversalResult, error) {
	return m.traverseFn(ctx, startID, opts)
}

func (m *mockGraphService) MutualConnections(ctx context.Context, a, b string) (*models.MutualConnectionsResult, error) {
	return m.mutualFn(ctx, a, b)
}

func (m *mockGraphService) SuggestConnections(ctx context.Context, nodeID string, limit int) ([]models.TraversedNode, error) {
	return m.suggestFn(ctx, nodeID, limit)
}

func (m *mockGraphService) NetworkMetrics(ctx context.Context, nodeID string, hops int) (*models.NetworkMetrics, error) {
	return m.metricsFn(ctx, nodeID, hops)
}

func (m *mockGraphService) Communities(ctx context.Context, nodeID string, hops int) ([]models.Community, error) {
	return m.communitiesFn(ctx, nodeID, hops)
}

func (m *mockGraphService) InfluentialNodes(ctx context.Context, nodeID string, hops, limit int) ([]models.InfluentialNode, error) {
	return m.influentialFn(ctx, nodeID, hops, limit)
}

func (m *mockGraphService) ShortestPath(ctx context.Context, fromID, toID string, maxDepth int) (*models.PathResult, error) {
	return m.pathFn(ctx, fromID, toID, maxDepth)
}

func (m *mockGraphService) Export(ctx context.Context, nodeID string, hops int) (*models.ExportFormat, error) {
	return m.exportFn(ctx, nodeID, hops)
}

// mockRelationshipService returns configured responses.
type mockRelationshipService struct {
	createFn       func(ctx context.Context, req models.CreateRelationshipRequest) (*models.Relationship, error)
	recalculateFn  func(ctx context.Context, id string, req models.RecalculateStrengthRequest) (*models.Relationship, error)
	updateStatusFn func(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Relationship, error)
}

func (m *mockRelationshipService) CreateRelationship(ctx context.Context, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	return m.createFn(ctx, req)
}

func (m *mockRelationshipService) RecalculateStrength(ctx context.Context, id string, req models.RecalculateStrengthRequest) (*models.Relationship, error) {
	return m.recalculateFn(ctx, id, req)
}

func (m *mockRelationshipService) UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Relationship, error) {
	return m.updateStatusFn(ctx, id, req)
}

// mockHealth implements HealthChecker and GraphCounter.
type mockHealth struct {
	dbErr    error
	countErr error
	nodes    int64
	rels     int64
}

func (m *mockHealth) HealthCheck(_ context.Context) error {
	return m.dbErr
}

func (m *mockHealth) Counts(_ context.Context) (nodes, relationships int64, err error) {
	return m.nodes, m.rels, m.countErr
}
