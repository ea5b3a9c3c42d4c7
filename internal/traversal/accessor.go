// Package traversal walks the social graph breadth-first from a start node,
// weighting each discovered node by decayed relationship strength.
package traversal

import (
	"context"

	"github.com/campusgraph/socialgraph/internal/models"
)

// Accessor supplies nodes and relationships to the engine.
// GetNode returns nil, nil for unknown ids; errors are reserved for transient failures.
type Accessor interface {
	GetNode(ctx context.Context, id string) (*models.GraphNode, error)
	GetRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error)
}

// HitCounter is implemented by accessors that can report cache hits.
type HitCounter interface {
	CacheHits() int64
}

// AccessorFuncs adapts a pair of functions to the Accessor interface.
type AccessorFuncs struct {
	Node          func(ctx context.Context, id string) (*models.GraphNode, error)
	Relationships func(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error)
}

// GetNode calls f.Node.
func (f AccessorFuncs) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	return f.Node(ctx, id)
}

// GetRelationships calls f.Relationships.
func (f AccessorFuncs) GetRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	return f.Relationships(ctx, id, types)
}

var _ Accessor = AccessorFuncs{}
