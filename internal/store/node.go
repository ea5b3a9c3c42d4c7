package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusgraph/socialgraph/internal/models"
)

// maxNodeFetch caps nodes fetched by a single GetNodes call.
const maxNodeFetch = 1000

// NodeStore handles node reads and writes.
type NodeStore struct {
	Base
}

// NewNodeStore creates a new NodeStore.
func NewNodeStore(base Base) *NodeStore {
	return &NodeStore{Base: base}
}

// UpsertNode inserts n or replaces its profile fields. Connection counters are
// owned by the relationship store and are never overwritten here.
func (s *NodeStore) UpsertNode(ctx context.Context, n *models.GraphNode) (*models.GraphNode, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	props, err := json.Marshal(n.Properties)
	if err != nil {
		return nil, fmt.Errorf("encoding node properties: %w", err)
	}

	metrics, err := json.Marshal(n.Metrics)
	if err != nil {
		return nil, fmt.Errorf("encoding node metrics: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `INSERT INTO sg_nodes (id, owner_user_id, node_type, properties, metrics, last_activity)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		ON CONFLICT (id) DO UPDATE SET
			owner_user_id = EXCLUDED.owner_user_id,
			node_type = EXCLUDED.node_type,
			properties = EXCLUDED.properties,
			metrics = EXCLUDED.metrics,
			last_activity = EXCLUDED.last_activity,
			updated_at = now()
		RETURNING ` + nodeColumns

	var lastActivity any
	if !n.LastActivity.IsZero() {
		lastActivity = n.LastActivity
	}

	row := s.Pool.QueryRow(ctx, query, n.ID, n.OwnerUserID, string(n.Type), props, metrics, lastActivity)

	out, err := scanNode(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("upserting node %s: %w", n.ID, err)
	}

	return out, nil
}

// GetNode returns the node with id, or nil, nil when it does not exist.
func (s *NodeStore) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+nodeColumns+` FROM sg_nodes WHERE id = $1`, id)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // absent nodes are not an error for accessors.
		}

		return nil, fmt.Errorf("getting node %s: %w", id, err)
	}

	return n, nil
}

// GetNodes returns the nodes among ids that exist, ordered by id.
func (s *NodeStore) GetNodes(ctx context.Context, ids []string) ([]models.GraphNode, error) {
	if len(ids) == 0 {
		return make([]models.GraphNode, 0), nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+nodeColumns+` FROM sg_nodes WHERE id = ANY($1) ORDER BY id LIMIT `+fmt.Sprintf("%d", maxNodeFetch),
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	return collectNodes(rows)
}

// DeleteNode removes a node; its relationships go with it via ON DELETE CASCADE.
func (s *NodeStore) DeleteNode(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := s.Pool.Exec(ctx, `DELETE FROM sg_nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting node %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrNodeNotFound
	}

	return nil
}

// refreshConnectionsSQL recomputes the precomputed counters from active relationships.
const refreshConnectionsSQL = `UPDATE sg_nodes n SET connections = c.counts, updated_at = now()
	FROM (
		SELECT n2.id, jsonb_build_object(
			'followers',  count(r.id) FILTER (WHERE r.relationship_type = 'follow' AND r.target_id = n2.id),
			'following',  count(r.id) FILTER (WHERE r.relationship_type = 'follow' AND r.source_id = n2.id),
			'mutual',     count(r.id) FILTER (WHERE r.relationship_type = 'mutual_connection'),
			'blocked',    count(r.id) FILTER (WHERE r.relationship_type = 'block' AND r.source_id = n2.id),
			'university', count(r.id) FILTER (WHERE r.relationship_type IN ('university_connection', 'alumni_connection')),
			'department', count(r.id) FILTER (WHERE r.relationship_type = 'department_connection'),
			'year',       count(r.id) FILTER (WHERE r.relationship_type = 'year_connection'),
			'interest',   count(r.id) FILTER (WHERE r.relationship_type = 'interest_connection'),
			'event',      count(r.id) FILTER (WHERE r.relationship_type = 'event_connection')
		) AS counts
		FROM sg_nodes n2
		LEFT JOIN sg_relationships r
			ON (r.source_id = n2.id OR r.target_id = n2.id)
			AND r.status = 'active'
			AND (r.expires_at IS NULL OR r.expires_at > now())
		WHERE n2.id = ANY($1)
		GROUP BY n2.id
	) c
	WHERE n.id = c.id`

// refreshConnections rewrites the connection counters of ids inside tx.
func refreshConnections(ctx context.Context, tx pgx.Tx, ids ...string) error {
	if _, err := tx.Exec(ctx, refreshConnectionsSQL, ids); err != nil {
		return fmt.Errorf("refreshing connection counters: %w", err)
	}

	return nil
}
