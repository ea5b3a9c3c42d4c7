package service

import (
	"context"
	"sync"

	"github.com/campusgraph/socialgraph/internal/models"
)

// mockRelationshipStore records calls and returns configured responses.
type mockRelationshipStore struct {
	mu    sync.Mutex
	calls []string

	create         func(ctx context.Context, r *models.Relationship) (*models.Relationship, error)
	get            func(ctx context.Context, id string) (*models.Relationship, error)
	between        func(ctx context.Context, a, b string) ([]models.Relationship, error)
	updateStrength func(ctx context.Context, id string, strength float64, mutual int) (*models.Relationship, error)
	updateStatus   func(ctx context.Context, id string, status models.RelationshipStatus) (*models.Relationship, error)
}

func (m *mockRelationshipStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockRelationshipStore) called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.calls {
		if c == name {
			return true
		}
	}

	return false
}

func (m *mockRelationshipStore) CreateRelationship(ctx context.Context, r *models.Relationship) (*models.Relationship, error) {
	m.record("CreateRelationship")
	return m.create(ctx, r)
}

func (m *mockRelationshipStore) GetRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	m.record("GetRelationship")
	return m.get(ctx, id)
}

func (m *mockRelationshipStore) RelationshipsBetween(ctx context.Context, a, b string) ([]models.Relationship, error) {
	m.record("RelationshipsBetween")

	if m.between == nil {
		return nil, nil
	}

	return m.between(ctx, a, b)
}

func (m *mockRelationshipStore) UpdateStrength(ctx context.Context, id string, strength float64, mutual int) (*models.Relationship, error) {
	m.record("UpdateStrength")
	return m.updateStrength(ctx, id, strength, mutual)
}

func (m *mockRelationshipStore) UpdateStatus(ctx context.Context, id string, status models.RelationshipStatus) (*models.Relationship, error) {
	m.record("UpdateStatus")
	return m.updateStatus(ctx, id, status)
}

// mockInvalidator records invalidated node ids.
type mockInvalidator struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (m *mockInvalidator) Invalidate(_ context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, ids...)

	return m.err
}

// mockNeighborhoods serves a fixed subgraph for any root it knows.
type mockNeighborhoods struct {
	nodes []models.GraphNode
	rels  []models.Relationship
	hops  int
}

func (m *mockNeighborhoods) Neighborhood(_ context.Context, rootID string, maxHops int) ([]models.GraphNode, []models.Relationship, error) {
	m.hops = maxHops

	for _, n := range m.nodes {
		if n.ID == rootID {
			return m.nodes, m.rels, nil
		}
	}

	return nil, nil, models.ErrNodeNotFound
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	eventType string
	nodeIDs   []string
}

func (m *mockPublisher) Publish(eventType string, nodeIDs []string, _ any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{eventType: eventType, nodeIDs: nodeIDs})
}
