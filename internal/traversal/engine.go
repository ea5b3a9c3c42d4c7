package traversal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campusgraph/socialgraph/internal/models"
)

// Engine safety limits.
const (
	defaultMaxResults = 10000
	maxFetchWorkers   = 64
)

// Engine performs bounded breadth-first traversals. It holds configuration
// only; all per-call state is local to Traverse, so one Engine may be shared.
type Engine struct {
	now              func() time.Time
	fetchConcurrency int
	maxResults       int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for expiry and recency.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFetchConcurrency fetches up to n neighbor nodes of one dequeued node concurrently.
func WithFetchConcurrency(n int) Option {
	return func(e *Engine) {
		e.fetchConcurrency = min(max(n, 1), maxFetchWorkers)
	}
}

// WithMaxResults caps how many qualifying nodes one traversal may collect.
func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

// At returns a copy of e whose clock is fixed at t.
func (e *Engine) At(t time.Time) *Engine {
	cp := *e
	cp.now = func() time.Time { return t }

	return &cp
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:              time.Now,
		fetchConcurrency: 1,
		maxResults:       defaultMaxResults,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// traversedNode is the engine's working record for one discovered node.
type traversedNode struct {
	node      *models.GraphNode
	distance  int
	weight    float64
	relevance float64
	path      []string
	rels      []models.Relationship
}

// candidate is an edge that passed the edge filters and leads to an unvisited node.
type candidate struct {
	rel      *models.Relationship
	neighbor string
}

// Traverse walks the graph from startID and returns ranked, paginated results.
func (e *Engine) Traverse( //nolint:gocyclo,cyclop,funlen // BFS loop with filtering is inherently multi-step.
	ctx context.Context,
	startID string,
	opts models.TraversalOptions,
	acc Accessor,
) (*models.TraversalResult, error) {
	started := time.Now()
	now := e.now()

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start, err := acc.GetNode(ctx, startID)
	if err != nil {
		return nil, fmt.Errorf("resolving start node %s: %w", startID, err)
	}

	if start == nil {
		return nil, models.ErrNodeNotFound
	}

	visited := map[string]bool{startID: true}
	queue := []*traversedNode{{node: start, weight: 1.0, path: []string{startID}}}
	results := make([]*traversedNode, 0, 32)
	traversed := 0

	for len(queue) > 0 && len(results) < e.maxResults {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := queue[0]
		queue[0] = nil
		queue = queue[1:]

		if cur.distance < opts.MaxDepth {
			rels, err := acc.GetRelationships(ctx, cur.node.ID, opts.RelationshipTypes)
			if err != nil {
				return nil, fmt.Errorf("fetching relationships of %s: %w", cur.node.ID, err)
			}

			cands := make([]candidate, 0, len(rels))

			for i := range rels {
				traversed++

				r := &rels[i]

				neighbor := r.Other(cur.node.ID)
				if neighbor == cur.node.ID || visited[neighbor] {
					continue
				}

				if !edgePasses(r, &opts, now) {
					continue
				}

				cands = append(cands, candidate{rel: r, neighbor: neighbor})
			}

			nodes, err := e.fetchNodes(ctx, cands, acc)
			if err != nil {
				return nil, err
			}

			for _, c := range cands {
				if visited[c.neighbor] {
					continue
				}

				n := nodes[c.neighbor]
				if n == nil || !attributesMatch(c.rel, n, &opts.Filters) {
					continue
				}

				w := edgeWeight(cur.weight, cur.distance, c.rel, n)

				next := &traversedNode{
					node:      n,
					distance:  cur.distance + 1,
					weight:    w,
					relevance: relevance(w, n, now),
					path:      appendCopy(cur.path, c.neighbor),
					rels:      appendCopy(cur.rels, *c.rel),
				}

				visited[c.neighbor] = true
				queue = append(queue, next)
			}
		}

		if cur.distance > 0 && nodeIncluded(cur, &opts.Filters) {
			results = append(results, cur)
		}
	}

	total := len(results)

	sortResults(results, opts.SortBy)
	page := paginate(results, opts.Offset, opts.Limit)

	out := buildResult(page, total)
	out.Metadata = models.TraversalMetadata{
		Duration:               time.Since(started),
		NodesVisited:           len(visited),
		RelationshipsTraversed: traversed,
		MemoryBytes:            int64(len(visited))*1024 + int64(traversed)*512,
	}

	if hc, ok := acc.(HitCounter); ok {
		out.Metadata.CacheHits = hc.CacheHits()
	}

	return out, nil
}

// fetchNodes resolves the distinct neighbors of cands. Lookups run
// concurrently when the engine allows it; the caller stays the only writer
// of the visited set.
func (e *Engine) fetchNodes(ctx context.Context, cands []candidate, acc Accessor) (map[string]*models.GraphNode, error) {
	nodes := make(map[string]*models.GraphNode, len(cands))

	ids := make([]string, 0, len(cands))
	seen := make(map[string]bool, len(cands))

	for _, c := range cands {
		if !seen[c.neighbor] {
			seen[c.neighbor] = true
			ids = append(ids, c.neighbor)
		}
	}

	if e.fetchConcurrency <= 1 || len(ids) <= 1 {
		for _, id := range ids {
			n, err := acc.GetNode(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("resolving node %s: %w", id, err)
			}

			nodes[id] = n
		}

		return nodes, nil
	}

	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			n, err := acc.GetNode(gCtx, id)
			if err != nil {
				return fmt.Errorf("resolving node %s: %w", id, err)
			}

			mu.Lock()
			nodes[id] = n
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return nodes, nil
}

func buildResult(page []*traversedNode, total int) *models.TraversalResult {
	out := &models.TraversalResult{
		Nodes:         make([]models.TraversedNode, 0, len(page)),
		Relationships: make([]models.Relationship, 0),
		Path:          make([]string, 0),
		Total:         total,
	}

	seen := make(map[string]bool)

	for _, tn := range page {
		out.Nodes = append(out.Nodes, models.TraversedNode{
			NodeID:        tn.node.ID,
			OwnerUserID:   tn.node.OwnerUserID,
			Distance:      tn.distance,
			Weight:        tn.weight,
			Relevance:     tn.relevance,
			Path:          tn.path,
			Relationships: tn.rels,
			Node:          *tn.node,
		})

		for _, r := range tn.rels {
			key := relationshipKey(&r)
			if !seen[key] {
				seen[key] = true
				out.Relationships = append(out.Relationships, r)
			}
		}
	}

	if len(page) > 0 {
		out.Path = page[0].path
		out.Distance = page[0].distance
		out.Weight = page[0].weight
	}

	return out
}

func relationshipKey(r *models.Relationship) string {
	if r.ID != "" {
		return r.ID
	}

	return r.SourceID + "|" + r.TargetID + "|" + string(r.Type)
}

// appendCopy returns a new slice holding s followed by v, never sharing s's backing array.
func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)

	return append(out, v)
}
