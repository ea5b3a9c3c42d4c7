package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusgraph/socialgraph/internal/models"
)

// nodeColumns lists the columns selected for node queries.
const nodeColumns = `id, owner_user_id, node_type, properties, connections,
	metrics, last_activity, created_at, updated_at`

// relationshipColumns lists the columns selected for relationship queries.
const relationshipColumns = `id, source_id, target_id, relationship_type, status,
	strength, metadata, created_at, updated_at, expires_at`

// scanNode scans a single row into a models.GraphNode.
func scanNode(scan func(dest ...any) error) (*models.GraphNode, error) {
	var n models.GraphNode
	var nodeType string
	var props, conns, metrics []byte

	if err := scan(
		&n.ID, &n.OwnerUserID, &nodeType, &props, &conns,
		&metrics, &n.LastActivity, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = models.NodeType(nodeType)

	if err := unmarshalJSONB(props, &n.Properties); err != nil {
		return nil, fmt.Errorf("decoding properties of node %s: %w", n.ID, err)
	}

	if err := unmarshalJSONB(conns, &n.Connections); err != nil {
		return nil, fmt.Errorf("decoding connections of node %s: %w", n.ID, err)
	}

	if err := unmarshalJSONB(metrics, &n.Metrics); err != nil {
		return nil, fmt.Errorf("decoding metrics of node %s: %w", n.ID, err)
	}

	return &n, nil
}

// scanRelationship scans a single row into a models.Relationship.
func scanRelationship(scan func(dest ...any) error) (*models.Relationship, error) {
	var r models.Relationship
	var relType, status string
	var meta []byte

	if err := scan(
		&r.ID, &r.SourceID, &r.TargetID, &relType, &status,
		&r.Strength, &meta, &r.CreatedAt, &r.UpdatedAt, &r.ExpiresAt,
	); err != nil {
		return nil, err
	}

	r.Type = models.RelationshipType(relType)
	r.Status = models.RelationshipStatus(status)

	if err := unmarshalJSONB(meta, &r.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata of relationship %s: %w", r.ID, err)
	}

	return &r, nil
}

// collectNodes scans all rows into a slice of GraphNodes.
func collectNodes(rows pgx.Rows) ([]models.GraphNode, error) {
	nodes := make([]models.GraphNode, 0, 32)

	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}

		nodes = append(nodes, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	return nodes, nil
}

// collectRelationships scans all rows into a slice of Relationships.
func collectRelationships(rows pgx.Rows) ([]models.Relationship, error) {
	rels := make([]models.Relationship, 0, 32)

	for rows.Next() {
		r, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}

		rels = append(rels, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}

	return rels, nil
}

func unmarshalJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, dst)
}

func typeStrings(types []models.RelationshipType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}

	return out
}
