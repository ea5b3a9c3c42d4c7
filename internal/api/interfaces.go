package api

import (
	"context"

	"github.com/campusgraph/socialgraph/internal/models"
)

// GraphService defines traversal and analytics operations used by GraphHandler.
type GraphService interface {
	Traverse(ctx context.Context, startID string, opts models.TraversalOptions) (*models.TraversalResult, error)
	MutualConnections(ctx context.Context, a, b string) (*models.MutualConnectionsResult, error)
	SuggestConnections(ctx context.Context, nodeID string, limit int) ([]models.TraversedNode, error)
	NetworkMetrics(ctx context.Context, nodeID string, hops int) (*models.NetworkMetrics, error)
	Communities(ctx context.Context, nodeID string, hops int) ([]models.Community, error)
	InfluentialNodes(ctx context.Context, nodeID string, hops, limit int) ([]models.InfluentialNode, error)
	ShortestPath(ctx context.Context, fromID, toID string, maxDepth int) (*models.PathResult, error)
	Export(ctx context.Context, nodeID string, hops int) (*models.ExportFormat, error)
}

// RelationshipService defines relationship mutations used by RelationshipHandler.
type RelationshipService interface {
	CreateRelationship(ctx context.Context, req models.CreateRelationshipRequest) (*models.Relationship, error)
	RecalculateStrength(ctx context.Context, id string, req models.RecalculateStrengthRequest) (*models.Relationship, error)
	UpdateStatus(ctx context.Context, id string, req models.UpdateStatusRequest) (*models.Relationship, error)
}

// HealthChecker reports database connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GraphCounter reports stored graph size; it doubles as the schema readiness check.
type GraphCounter interface {
	Counts(ctx context.Context) (nodes, relationships int64, err error)
}
