package cache

import (
	"context"
	"sync/atomic"

	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// Session is a per-call view of a Cache that counts its own hits, so one
// traversal can report how many lookups the cache served.
type Session struct {
	cache *Cache
	hits  atomic.Int64
}

var (
	_ traversal.Accessor   = (*Session)(nil)
	_ traversal.HitCounter = (*Session)(nil)
)

// Session starts a new hit-counting view.
func (c *Cache) Session() *Session {
	return &Session{cache: c}
}

// GetNode delegates to the cache and counts hits.
func (s *Session) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	n, hit, err := s.cache.getNode(ctx, id)
	if hit {
		s.hits.Add(1)
	}

	return n, err
}

// GetRelationships delegates to the cache and counts hits.
func (s *Session) GetRelationships(ctx context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	rels, hit, err := s.cache.getRelationships(ctx, id, types)
	if hit {
		s.hits.Add(1)
	}

	return rels, err
}

// CacheHits returns the number of lookups this session served from cache.
func (s *Session) CacheHits() int64 {
	return s.hits.Load()
}
