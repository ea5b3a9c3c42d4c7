package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

func newTestRelationshipService(store *mockRelationshipStore, inv *mockInvalidator) *RelationshipService {
	svc := NewRelationshipService(store, inv, models.DefaultDecayRate, testLogger())
	svc.now = func() time.Time { return testNow }

	return svc
}

func echoCreate(_ context.Context, r *models.Relationship) (*models.Relationship, error) {
	out := *r
	return &out, nil
}

func TestRelationshipService_Create(t *testing.T) {
	store := &mockRelationshipStore{create: echoCreate}
	inv := &mockInvalidator{}
	svc := newTestRelationshipService(store, inv)

	mutual := 3
	r, err := svc.CreateRelationship(context.Background(), models.CreateRelationshipRequest{
		SourceID: "A",
		TargetID: "B",
		Type:     models.TypeUniversityConnection,
		Metadata: models.RelationshipMetadata{Context: models.RelationshipContext{MutualConnections: mutual}},
	})
	if err != nil {
		t.Fatalf("CreateRelationship: %v", err)
	}

	if r.ID == "" || r.Status != models.StatusActive || r.Metadata.Source != models.SourceManual {
		t.Errorf("unexpected defaults: %+v", r)
	}

	// 70 base + min(3*2, 20).
	if r.Strength != 76 {
		t.Errorf("strength = %v, want 76", r.Strength)
	}

	if !r.CreatedAt.Equal(testNow) {
		t.Errorf("created_at = %v, want %v", r.CreatedAt, testNow)
	}

	if len(inv.ids) != 2 || inv.ids[0] != "A" || inv.ids[1] != "B" {
		t.Errorf("invalidated %v, want [A B]", inv.ids)
	}
}

func TestRelationshipService_CreateRefused(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.Relationship
		typ      models.RelationshipType
	}{
		{
			name:     "blocked by target",
			existing: []models.Relationship{link("B", "A", models.TypeBlock)},
			typ:      models.TypeFollow,
		},
		{
			name:     "active duplicate",
			existing: []models.Relationship{link("A", "B", models.TypeFollow)},
			typ:      models.TypeFollow,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockRelationshipStore{
				create: echoCreate,
				between: func(_ context.Context, _, _ string) ([]models.Relationship, error) {
					return tc.existing, nil
				},
			}
			svc := newTestRelationshipService(store, &mockInvalidator{})

			_, err := svc.CreateRelationship(context.Background(), models.CreateRelationshipRequest{
				SourceID: "A", TargetID: "B", Type: tc.typ,
			})
			if !errors.Is(err, models.ErrNotAllowed) {
				t.Fatalf("expected ErrNotAllowed, got %v", err)
			}

			if store.called("CreateRelationship") {
				t.Error("store must not be written when policy refuses")
			}
		})
	}
}

func TestRelationshipService_CreateInvalid(t *testing.T) {
	store := &mockRelationshipStore{create: echoCreate}
	svc := newTestRelationshipService(store, nil)

	_, err := svc.CreateRelationship(context.Background(), models.CreateRelationshipRequest{
		SourceID: "A", TargetID: "A", Type: models.TypeFollow,
	})
	if !errors.Is(err, models.ErrSelfRelationship) {
		t.Fatalf("expected ErrSelfRelationship, got %v", err)
	}

	if store.called("RelationshipsBetween") {
		t.Error("invalid request must not reach the store")
	}
}

func TestRelationshipService_CreateInvalidationFailureIsNotFatal(t *testing.T) {
	store := &mockRelationshipStore{create: echoCreate}
	svc := newTestRelationshipService(store, &mockInvalidator{err: errors.New("redis down")})

	if _, err := svc.CreateRelationship(context.Background(), models.CreateRelationshipRequest{
		SourceID: "A", TargetID: "B", Type: models.TypeFollow,
	}); err != nil {
		t.Fatalf("CreateRelationship: %v", err)
	}
}

func TestRelationshipService_RecalculateStrength(t *testing.T) {
	existing := link("A", "B", models.TypeFollow)
	existing.Strength = 80
	existing.UpdatedAt = testNow.Add(-10 * 24 * time.Hour)

	var gotStrength float64
	var gotMutual int

	store := &mockRelationshipStore{
		get: func(_ context.Context, _ string) (*models.Relationship, error) {
			r := existing
			return &r, nil
		},
		updateStrength: func(_ context.Context, _ string, strength float64, mutual int) (*models.Relationship, error) {
			gotStrength, gotMutual = strength, mutual
			r := existing
			r.Strength = strength

			return &r, nil
		},
	}
	inv := &mockInvalidator{}
	svc := newTestRelationshipService(store, inv)

	if _, err := svc.RecalculateStrength(context.Background(), existing.ID, models.RecalculateStrengthRequest{MutualCount: 2}); err != nil {
		t.Fatalf("RecalculateStrength: %v", err)
	}

	// 80 + 0 + 2 - 10*0.1.
	if gotStrength != 81 || gotMutual != 2 {
		t.Errorf("stored strength=%v mutual=%d, want 81 and 2", gotStrength, gotMutual)
	}

	if len(inv.ids) != 2 {
		t.Errorf("expected both endpoints invalidated, got %v", inv.ids)
	}
}

func TestRelationshipService_RecalculateNotFound(t *testing.T) {
	store := &mockRelationshipStore{
		get: func(_ context.Context, _ string) (*models.Relationship, error) {
			return nil, models.ErrRelationshipNotFound
		},
	}
	svc := newTestRelationshipService(store, nil)

	_, err := svc.RecalculateStrength(context.Background(), "x", models.RecalculateStrengthRequest{})
	if !errors.Is(err, models.ErrRelationshipNotFound) {
		t.Fatalf("expected ErrRelationshipNotFound, got %v", err)
	}
}

func TestRelationshipService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		from      models.RelationshipStatus
		to        models.RelationshipStatus
		wantErr   error
		wantWrite bool
	}{
		{name: "mute", from: models.StatusActive, to: models.StatusMuted, wantWrite: true},
		{name: "unmute", from: models.StatusMuted, to: models.StatusActive, wantWrite: true},
		{name: "same status is a no-op", from: models.StatusActive, to: models.StatusActive},
		{name: "archived is final", from: models.StatusArchived, to: models.StatusActive, wantErr: models.ErrNotAllowed},
		{name: "unknown status", from: models.StatusActive, to: "gone", wantErr: models.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockRelationshipStore{
				get: func(_ context.Context, _ string) (*models.Relationship, error) {
					r := link("A", "B", models.TypeFollow)
					r.Status = tc.from

					return &r, nil
				},
				updateStatus: func(_ context.Context, _ string, status models.RelationshipStatus) (*models.Relationship, error) {
					r := link("A", "B", models.TypeFollow)
					r.Status = status

					return &r, nil
				},
			}
			svc := newTestRelationshipService(store, &mockInvalidator{})

			got, err := svc.UpdateStatus(context.Background(), "id", models.UpdateStatusRequest{Status: tc.to})

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}

			if got.Status != tc.to {
				t.Errorf("status = %s, want %s", got.Status, tc.to)
			}

			if store.called("UpdateStatus") != tc.wantWrite {
				t.Errorf("store write = %v, want %v", store.called("UpdateStatus"), tc.wantWrite)
			}
		})
	}
}

func TestRelationshipService_PublishesChanges(t *testing.T) {
	store := &mockRelationshipStore{
		create: echoCreate,
		get: func(_ context.Context, _ string) (*models.Relationship, error) {
			r := link("A", "B", models.TypeFollow)
			return &r, nil
		},
		updateStatus: func(_ context.Context, _ string, status models.RelationshipStatus) (*models.Relationship, error) {
			r := link("A", "B", models.TypeFollow)
			r.Status = status

			return &r, nil
		},
	}
	pub := &mockPublisher{}
	svc := newTestRelationshipService(store, &mockInvalidator{}).WithPublisher(pub)
	ctx := context.Background()

	if _, err := svc.CreateRelationship(ctx, models.CreateRelationshipRequest{
		SourceID: "A", TargetID: "B", Type: models.TypeFollow,
	}); err != nil {
		t.Fatalf("CreateRelationship: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "id", models.UpdateStatusRequest{Status: models.StatusActive}); err != nil {
		t.Fatalf("no-op UpdateStatus: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "id", models.UpdateStatusRequest{Status: models.StatusMuted}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	want := []string{eventCreated, eventStatus}
	if len(pub.events) != len(want) {
		t.Fatalf("published %d events, want %d: %+v", len(pub.events), len(want), pub.events)
	}

	for i, evt := range pub.events {
		if evt.eventType != want[i] {
			t.Errorf("event %d = %s, want %s", i, evt.eventType, want[i])
		}
		if len(evt.nodeIDs) != 2 || evt.nodeIDs[0] != "A" || evt.nodeIDs[1] != "B" {
			t.Errorf("event %d node ids = %v", i, evt.nodeIDs)
		}
	}
}
