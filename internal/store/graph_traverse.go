package store

import (
	"context"
	"fmt"

	"github.com/campusgraph/socialgraph/internal/models"
)

// Neighborhood safety limits.
const (
	neighborhoodNodeLimit = 2000  // max nodes returned from Neighborhood
	neighborhoodEdgeLimit = 20000 // max relationships returned from Neighborhood
	bfsNeighborLimit      = 5000  // max relationships per direction per hop
	maxNeighborhoodHops   = 10    // caps BFS depth
)

// Neighborhood performs application-level BFS from rootID up to maxHops over
// relationships of any status and returns the discovered nodes with every
// relationship among them.
func (s *GraphStore) Neighborhood( //nolint:funlen,gocyclo,cyclop // BFS loop with neighbor expansion is inherently multi-step.
	ctx context.Context,
	rootID string,
	maxHops int,
) ([]models.GraphNode, []models.Relationship, error) {
	maxHops = min(max(maxHops, 1), maxNeighborhoodHops)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading neighborhood: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sg_nodes WHERE id = $1)`, rootID).Scan(&exists); err != nil {
		return nil, nil, fmt.Errorf("checking node existence: %w", err)
	}

	if !exists {
		return nil, nil, models.ErrNodeNotFound
	}

	visited := map[string]bool{rootID: true}
	order := []string{rootID}
	frontier := []string{rootID}

	neighborSQL := fmt.Sprintf(`(SELECT source_id, target_id FROM sg_relationships
		WHERE source_id = ANY($1) ORDER BY source_id, target_id LIMIT %[1]d)
		UNION
		(SELECT source_id, target_id FROM sg_relationships
		WHERE target_id = ANY($1) ORDER BY source_id, target_id LIMIT %[1]d)`, bfsNeighborLimit)

	for hop := 0; hop < maxHops && len(frontier) > 0 && len(visited) < neighborhoodNodeLimit; hop++ {
		rows, err := tx.Query(ctx, neighborSQL, frontier)
		if err != nil {
			return nil, nil, fmt.Errorf("querying neighbors at hop %d: %w", hop, err)
		}

		var next []string

		for rows.Next() {
			var source, target string
			if err := rows.Scan(&source, &target); err != nil {
				rows.Close()
				return nil, nil, fmt.Errorf("scanning neighbor pair: %w", err)
			}

			for _, to := range []string{source, target} {
				if !visited[to] && len(visited) < neighborhoodNodeLimit {
					visited[to] = true
					order = append(order, to)
					next = append(next, to)
				}
			}
		}

		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("iterating neighbor pairs: %w", err)
		}

		rows.Close()

		frontier = next
	}

	nodeRows, err := tx.Query(ctx, `SELECT `+nodeColumns+` FROM sg_nodes WHERE id = ANY($1) ORDER BY id`, order)
	if err != nil {
		return nil, nil, fmt.Errorf("querying neighborhood nodes: %w", err)
	}

	nodes, err := collectNodes(nodeRows)
	nodeRows.Close()

	if err != nil {
		return nil, nil, fmt.Errorf("collecting neighborhood nodes: %w", err)
	}

	relSQL := `SELECT ` + relationshipColumns + ` FROM sg_relationships
		WHERE source_id = ANY($1) AND target_id = ANY($1)
		ORDER BY created_at, id LIMIT ` + fmt.Sprintf("%d", neighborhoodEdgeLimit)

	relRows, err := tx.Query(ctx, relSQL, order)
	if err != nil {
		return nil, nil, fmt.Errorf("querying neighborhood relationships: %w", err)
	}

	rels, err := collectRelationships(relRows)
	relRows.Close()

	if err != nil {
		return nil, nil, fmt.Errorf("collecting neighborhood relationships: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("committing neighborhood: %w", err)
	}

	return nodes, rels, nil
}
