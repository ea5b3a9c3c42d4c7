// Package cache wraps a traversal accessor with an in-process LRU, an
// optional shared Redis tier, and collapsing of concurrent misses.
package cache

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/campusgraph/socialgraph/internal/metrics"
	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// Defaults for New.
const (
	DefaultSize = 10000
	DefaultTTL  = 5 * time.Minute
)

const keyPrefix = "sg:"

// fetchTimeout bounds one collapsed lookup. It is detached from the caller that
// started it, so a caller giving up does not fail the others waiting on it.
const fetchTimeout = 10 * time.Second

// Cache is a read-through accessor. Absent nodes are not cached.
type Cache struct {
	backend traversal.Accessor
	log     *logrus.Logger
	nodes   *expirable.LRU[string, *models.GraphNode]
	rels    *expirable.LRU[string, []models.Relationship]
	redis   redis.UniversalClient
	ttl     time.Duration
	size    int
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

var _ traversal.Accessor = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithSize bounds each in-process LRU to n entries.
func WithSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithTTL sets the entry lifetime for both tiers.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithRedis adds a shared Redis tier behind the in-process LRU.
func WithRedis(client redis.UniversalClient) Option {
	return func(c *Cache) {
		c.redis = client
	}
}

// New creates a Cache in front of backend.
func New(backend traversal.Accessor, log *logrus.Logger, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		log:     log,
		ttl:     DefaultTTL,
		size:    DefaultSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.nodes = expirable.NewLRU[string, *models.GraphNode](c.size, nil, c.ttl)
	c.rels = expirable.NewLRU[string, []models.Relationship](c.size, nil, c.ttl)

	return c
}

// GetNode returns the node with id from the first tier that has it.
func (c *Cache) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	n, _, err := c.getNode(ctx, id)
	return n, err
}

// GetRelationships returns the relationships touching id from the first tier that has them.
func (c *Cache) GetRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	rels, _, err := c.getRelationships(ctx, id, types)
	return rels, err
}

// Stats returns the lifetime hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// result is what one collapsed lookup produced and whether a cache tier served it.
type result[T any] struct {
	val T
	hit bool
}

// collapse runs fetch once per key across concurrent callers. Each caller
// stops waiting when its own ctx ends.
func collapse[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (result[T], error)) (result[T], error) {
	ch := c.flight.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		return fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return result[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return result[T]{}, res.Err
		}

		r, ok := res.Val.(result[T])
		if !ok {
			return result[T]{}, fmt.Errorf("cache: unexpected singleflight result type %T", res.Val)
		}

		return r, nil
	}
}

func (c *Cache) getNode(ctx context.Context, id string) (*models.GraphNode, bool, error) {
	key := nodeKey(id)

	if n, ok := c.nodes.Get(key); ok {
		c.recordHit("memory")
		return copyNode(n), true, nil
	}

	r, err := collapse(ctx, c, key, func(ctx context.Context) (result[*models.GraphNode], error) {
		if n, ok := c.nodes.Get(key); ok {
			return result[*models.GraphNode]{val: n, hit: true}, nil
		}

		var n models.GraphNode
		if c.readShared(ctx, key, &n) {
			c.recordHit("redis")
			c.nodes.Add(key, &n)

			return result[*models.GraphNode]{val: &n, hit: true}, nil
		}

		c.recordMiss()

		fetched, err := c.backend.GetNode(ctx, id)
		if err != nil {
			return result[*models.GraphNode]{}, err
		}

		if fetched != nil {
			c.nodes.Add(key, fetched)
			c.writeShared(ctx, key, fetched, id)
		}

		return result[*models.GraphNode]{val: fetched}, nil
	})
	if err != nil {
		return nil, false, err
	}

	return copyNode(r.val), r.hit, nil
}

func (c *Cache) getRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, bool, error) {
	key := relsKey(id, types)

	if rels, ok := c.rels.Get(key); ok {
		c.recordHit("memory")
		return slices.Clone(rels), true, nil
	}

	r, err := collapse(ctx, c, key, func(ctx context.Context) (result[[]models.Relationship], error) {
		if rels, ok := c.rels.Get(key); ok {
			return result[[]models.Relationship]{val: rels, hit: true}, nil
		}

		var rels []models.Relationship
		if c.readShared(ctx, key, &rels) {
			c.recordHit("redis")
			c.rels.Add(key, rels)

			return result[[]models.Relationship]{val: rels, hit: true}, nil
		}

		c.recordMiss()

		fetched, err := c.backend.GetRelationships(ctx, id, types)
		if err != nil {
			return result[[]models.Relationship]{}, err
		}

		c.rels.Add(key, fetched)
		c.writeShared(ctx, key, fetched, id)

		return result[[]models.Relationship]{val: fetched}, nil
	})
	if err != nil {
		return nil, false, err
	}

	return slices.Clone(r.val), r.hit, nil
}

// Invalidate drops every cached entry for the given node ids from both tiers.
func (c *Cache) Invalidate(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		c.nodes.Remove(nodeKey(id))

		prefix := relsPrefix(id)
		for _, k := range c.rels.Keys() {
			if strings.HasPrefix(k, prefix) {
				c.rels.Remove(k)
			}
		}
	}

	if c.redis == nil {
		return nil
	}

	return c.invalidateShared(ctx, ids)
}

// Purge empties the in-process tier.
func (c *Cache) Purge() {
	c.nodes.Purge()
	c.rels.Purge()
}

func (c *Cache) recordHit(tier string) {
	c.hits.Add(1)
	metrics.CacheRequests.WithLabelValues(tier, "hit").Inc()
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	metrics.CacheRequests.WithLabelValues("all", "miss").Inc()
}

func nodeKey(id string) string {
	return keyPrefix + "node:" + id
}

func relsPrefix(id string) string {
	return keyPrefix + "rels:" + id + ":"
}

// relsKey is independent of the order types are given in.
func relsKey(id string, types []models.RelationshipType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	slices.Sort(names)

	return relsPrefix(id) + strings.Join(slices.Compact(names), ",")
}

func registryKey(id string) string {
	return keyPrefix + "registry:" + id
}

func copyNode(n *models.GraphNode) *models.GraphNode {
	if n == nil {
		return nil
	}

	cp := *n

	return &cp
}
