package store

import (
	"context"
	"fmt"

	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// GraphStore handles subgraph extraction for analytics and export.
type GraphStore struct {
	Base
}

// NewGraphStore creates a GraphStore with the given shared base.
func NewGraphStore(base Base) *GraphStore {
	return &GraphStore{Base: base}
}

// Counts returns the total number of nodes and relationships stored.
func (s *GraphStore) Counts(ctx context.Context) (nodes, relationships int64, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err = s.Pool.QueryRow(ctx,
		`SELECT (SELECT count(*) FROM sg_nodes), (SELECT count(*) FROM sg_relationships)`,
	).Scan(&nodes, &relationships)
	if err != nil {
		return 0, 0, fmt.Errorf("counting graph: %w", err)
	}

	return nodes, relationships, nil
}

// Store bundles the focused stores behind one value the service layer can hold.
// It satisfies traversal.Accessor so the engine and cache can read through it.
type Store struct {
	Nodes         *NodeStore
	Relationships *RelationshipStore
	Graph         *GraphStore
}

// New creates a Store whose sub-stores share base.
func New(base Base) *Store {
	return &Store{
		Nodes:         NewNodeStore(base),
		Relationships: NewRelationshipStore(base),
		Graph:         NewGraphStore(base),
	}
}

// GetNode implements traversal.Accessor.
func (s *Store) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	return s.Nodes.GetNode(ctx, id)
}

// GetRelationships implements traversal.Accessor.
func (s *Store) GetRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	return s.Relationships.GetRelationships(ctx, id, types)
}

var _ traversal.Accessor = (*Store)(nil)
