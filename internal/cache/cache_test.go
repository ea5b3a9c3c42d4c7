package cache_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/cache"
	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// countingBackend serves a fixed graph and counts lookups.
type countingBackend struct {
	nodeCalls atomic.Int64
	relCalls  atomic.Int64
	gate      chan struct{}
	err       error
}

func (b *countingBackend) GetNode(_ context.Context, id string) (*models.GraphNode, error) {
	b.nodeCalls.Add(1)

	if b.gate != nil {
		<-b.gate
	}

	if b.err != nil {
		return nil, b.err
	}

	if id == "missing" {
		return nil, nil
	}

	return &models.GraphNode{ID: id, Type: models.NodeUser}, nil
}

func (b *countingBackend) GetRelationships(_ context.Context, id string, _ []models.RelationshipType) ([]models.Relationship, error) {
	b.relCalls.Add(1)

	if b.err != nil {
		return nil, b.err
	}

	return []models.Relationship{{ID: "r-" + id, SourceID: id, TargetID: "other", Type: models.TypeFollow}}, nil
}

func TestCache_NodeReadThrough(t *testing.T) {
	b := &countingBackend{}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	for range 3 {
		n, err := c.GetNode(ctx, "a")
		if err != nil || n == nil || n.ID != "a" {
			t.Fatalf("GetNode = %+v, %v", n, err)
		}
	}

	if got := b.nodeCalls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("stats = %d hits %d misses, want 2 and 1", hits, misses)
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := cache.New(&countingBackend{}, testLogger())
	ctx := context.Background()

	n, _ := c.GetNode(ctx, "a")
	n.Properties.DisplayName = "mutated"

	again, _ := c.GetNode(ctx, "a")
	if again.Properties.DisplayName != "" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestCache_AbsentNodesNotCached(t *testing.T) {
	b := &countingBackend{}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	for range 2 {
		n, err := c.GetNode(ctx, "missing")
		if err != nil || n != nil {
			t.Fatalf("GetNode(missing) = %+v, %v", n, err)
		}
	}

	if got := b.nodeCalls.Load(); got != 2 {
		t.Errorf("backend called %d times, want 2", got)
	}
}

func TestCache_RelationshipKeyIgnoresTypeOrder(t *testing.T) {
	b := &countingBackend{}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	_, _ = c.GetRelationships(ctx, "a", []models.RelationshipType{models.TypeFollow, models.TypeBlock})
	_, _ = c.GetRelationships(ctx, "a", []models.RelationshipType{models.TypeBlock, models.TypeFollow})

	if got := b.relCalls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}

	_, _ = c.GetRelationships(ctx, "a", nil)

	if got := b.relCalls.Load(); got != 2 {
		t.Errorf("different type set should miss, backend called %d times", got)
	}
}

func TestCache_Invalidate(t *testing.T) {
	b := &countingBackend{}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	_, _ = c.GetNode(ctx, "a")
	_, _ = c.GetRelationships(ctx, "a", nil)
	_, _ = c.GetRelationships(ctx, "a", []models.RelationshipType{models.TypeFollow})
	_, _ = c.GetRelationships(ctx, "ab", nil)

	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	_, _ = c.GetNode(ctx, "a")
	_, _ = c.GetRelationships(ctx, "a", nil)
	_, _ = c.GetRelationships(ctx, "a", []models.RelationshipType{models.TypeFollow})
	_, _ = c.GetRelationships(ctx, "ab", nil)

	if got := b.nodeCalls.Load(); got != 2 {
		t.Errorf("node fetched %d times, want 2", got)
	}

	// "ab" shares a prefix with "a" but must stay cached.
	if got := b.relCalls.Load(); got != 5 {
		t.Errorf("relationships fetched %d times, want 5", got)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	errBoom := errors.New("boom")
	b := &countingBackend{err: errBoom}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	if _, err := c.GetNode(ctx, "a"); !errors.Is(err, errBoom) {
		t.Fatalf("expected backend error, got %v", err)
	}

	b.err = nil

	if n, err := c.GetNode(ctx, "a"); err != nil || n == nil {
		t.Fatalf("GetNode after recovery = %+v, %v", n, err)
	}
}

func TestCache_CollapsesConcurrentMisses(t *testing.T) {
	b := &countingBackend{gate: make(chan struct{})}
	c := cache.New(b, testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := c.GetNode(ctx, "a"); err != nil {
				t.Errorf("GetNode: %v", err)
			}
		}()
	}

	for b.nodeCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	time.Sleep(20 * time.Millisecond)
	close(b.gate)
	wg.Wait()

	if got := b.nodeCalls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	b := &countingBackend{}
	c := cache.New(b, testLogger(), cache.WithTTL(20*time.Millisecond))
	ctx := context.Background()

	_, _ = c.GetNode(ctx, "a")
	time.Sleep(60 * time.Millisecond)
	_, _ = c.GetNode(ctx, "a")

	if got := b.nodeCalls.Load(); got != 2 {
		t.Errorf("backend called %d times, want 2 after expiry", got)
	}
}

func TestSession_CountsOwnHits(t *testing.T) {
	c := cache.New(&countingBackend{}, testLogger())
	ctx := context.Background()

	warm := c.Session()
	_, _ = warm.GetNode(ctx, "a")

	if warm.CacheHits() != 0 {
		t.Errorf("cold lookup counted as hit")
	}

	s := c.Session()
	_, _ = s.GetNode(ctx, "a")
	_, _ = s.GetRelationships(ctx, "a", nil)
	_, _ = s.GetRelationships(ctx, "a", nil)

	if got := s.CacheHits(); got != 2 {
		t.Errorf("CacheHits = %d, want 2", got)
	}

	var _ traversal.HitCounter = s
}

func TestCache_RedisTier(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	client, err := cache.NewRedisClient(url)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	id := "redis-test-" + time.Now().Format("150405.000000")
	b := &countingBackend{}

	first := cache.New(b, testLogger(), cache.WithRedis(client))
	if _, err := first.GetNode(ctx, id); err != nil {
		t.Fatalf("GetNode: %v", err)
	}

	// A second process with a cold LRU is served by Redis.
	second := cache.New(b, testLogger(), cache.WithRedis(client))

	s := second.Session()
	if n, err := s.GetNode(ctx, id); err != nil || n == nil || n.ID != id {
		t.Fatalf("GetNode via redis = %+v, %v", n, err)
	}

	if b.nodeCalls.Load() != 1 || s.CacheHits() != 1 {
		t.Errorf("expected redis hit, backend calls %d hits %d", b.nodeCalls.Load(), s.CacheHits())
	}

	if err := second.Invalidate(ctx, id); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	third := cache.New(b, testLogger(), cache.WithRedis(client))
	_, _ = third.GetNode(ctx, id)

	if b.nodeCalls.Load() != 2 {
		t.Errorf("invalidated entry served from redis")
	}
}

// ctxBackend blocks each node lookup until released or its ctx ends.
type ctxBackend struct {
	countingBackend
	started chan struct{}
}

func (b *ctxBackend) GetNode(ctx context.Context, id string) (*models.GraphNode, error) {
	b.nodeCalls.Add(1)
	b.started <- struct{}{}

	select {
	case <-b.gate:
		return &models.GraphNode{ID: id, Type: models.NodeUser}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCache_CallerCancelDoesNotFailWaiters(t *testing.T) {
	b := &ctxBackend{countingBackend: countingBackend{gate: make(chan struct{})}, started: make(chan struct{}, 1)}
	c := cache.New(b, testLogger())

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)

	go func() {
		_, err := c.GetNode(leaderCtx, "a")
		leaderErr <- err
	}()

	<-b.started

	type lookup struct {
		n   *models.GraphNode
		err error
	}

	waiter := make(chan lookup, 1)

	go func() {
		n, err := c.GetNode(context.Background(), "a")
		waiter <- lookup{n, err}
	}()

	cancel()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("leader error = %v, want context.Canceled", err)
	}

	close(b.gate)

	select {
	case got := <-waiter:
		if got.err != nil || got.n == nil || got.n.ID != "a" {
			t.Errorf("waiter got %+v, %v", got.n, got.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never returned")
	}
}
