package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campusgraph/socialgraph/internal/models"
)

// maxRelationshipsPerDirection caps relationships read per direction for one node.
const maxRelationshipsPerDirection = 1000

// RelationshipStore handles relationship persistence and the node counters derived from it.
type RelationshipStore struct {
	Base
}

// NewRelationshipStore creates a new RelationshipStore.
func NewRelationshipStore(base Base) *RelationshipStore {
	return &RelationshipStore{Base: base}
}

// CreateRelationship inserts r and refreshes the connection counters of both endpoints.
func (s *RelationshipStore) CreateRelationship(ctx context.Context, r *models.Relationship) (*models.Relationship, error) {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding relationship metadata: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating relationship: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var found int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM sg_nodes WHERE id = ANY($1)`,
		[]string{r.SourceID, r.TargetID}).Scan(&found); err != nil {
		return nil, fmt.Errorf("checking endpoints: %w", err)
	}

	if found < 2 {
		return nil, models.ErrNodeNotFound
	}

	query := `INSERT INTO sg_relationships
		(id, source_id, target_id, relationship_type, status, strength, metadata, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9)
		RETURNING ` + relationshipColumns

	row := tx.QueryRow(ctx, query,
		r.ID, r.SourceID, r.TargetID, string(r.Type), string(r.Status),
		r.Strength, meta, r.CreatedAt, r.ExpiresAt)

	out, err := scanRelationship(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, fmt.Errorf("%w: %s -> %s (%s)", models.ErrDuplicateRelationship, r.SourceID, r.TargetID, r.Type)
			case "23503":
				return nil, models.ErrNodeNotFound
			}
		}

		return nil, fmt.Errorf("inserting relationship: %w", err)
	}

	if err := refreshConnections(ctx, tx, r.SourceID, r.TargetID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing relationship: %w", err)
	}

	return out, nil
}

// GetRelationship returns the relationship with id.
func (s *RelationshipStore) GetRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `SELECT `+relationshipColumns+` FROM sg_relationships WHERE id = $1`, id)

	r, err := scanRelationship(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRelationshipNotFound
		}

		return nil, fmt.Errorf("getting relationship %s: %w", id, err)
	}

	return r, nil
}

// GetRelationships returns relationships touching nodeID in either direction,
// optionally restricted to types, in creation order.
func (s *RelationshipStore) GetRelationships(
	ctx context.Context,
	nodeID string,
	types []models.RelationshipType,
) ([]models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Rewrite OR as UNION ALL with per-direction limits.
	query := `SELECT * FROM (
		(SELECT ` + relationshipColumns + ` FROM sg_relationships
		WHERE source_id = $1 AND (cardinality($2::text[]) = 0 OR relationship_type = ANY($2))
		ORDER BY created_at, id LIMIT $3)
		UNION ALL
		(SELECT ` + relationshipColumns + ` FROM sg_relationships
		WHERE target_id = $1 AND (cardinality($2::text[]) = 0 OR relationship_type = ANY($2))
		ORDER BY created_at, id LIMIT $3)
	) r ORDER BY created_at, id`

	rows, err := s.Pool.Query(ctx, query, nodeID, typeStrings(types), maxRelationshipsPerDirection)
	if err != nil {
		return nil, fmt.Errorf("querying relationships of %s: %w", nodeID, err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// RelationshipsBetween returns every relationship between a and b in either direction, any status.
func (s *RelationshipStore) RelationshipsBetween(ctx context.Context, a, b string) ([]models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `SELECT `+relationshipColumns+` FROM sg_relationships
		WHERE (source_id = $1 AND target_id = $2) OR (source_id = $2 AND target_id = $1)
		ORDER BY created_at, id`, a, b)
	if err != nil {
		return nil, fmt.Errorf("querying relationships between %s and %s: %w", a, b, err)
	}
	defer rows.Close()

	return collectRelationships(rows)
}

// UpdateStrength stores a recalculated strength and mutual count.
func (s *RelationshipStore) UpdateStrength(
	ctx context.Context,
	id string,
	strength float64,
	mutual int,
) (*models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, `UPDATE sg_relationships
		SET strength = $2,
			metadata = jsonb_set(metadata, '{context,mutual_connections}', to_jsonb($3::int), true),
			updated_at = now()
		WHERE id = $1
		RETURNING `+relationshipColumns, id, strength, mutual)

	r, err := scanRelationship(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRelationshipNotFound
		}

		return nil, fmt.Errorf("updating strength of %s: %w", id, err)
	}

	return r, nil
}

// UpdateStatus moves a relationship to status and refreshes its endpoints' counters.
func (s *RelationshipStore) UpdateStatus(
	ctx context.Context,
	id string,
	status models.RelationshipStatus,
) (*models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("updating relationship status: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	row := tx.QueryRow(ctx, `UPDATE sg_relationships SET status = $2, updated_at = now()
		WHERE id = $1 RETURNING `+relationshipColumns, id, string(status))

	r, err := scanRelationship(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRelationshipNotFound
		}

		return nil, fmt.Errorf("updating status of %s: %w", id, err)
	}

	if err := refreshConnections(ctx, tx, r.SourceID, r.TargetID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return r, nil
}
