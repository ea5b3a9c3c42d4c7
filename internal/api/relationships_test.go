package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusgraph/socialgraph/internal/api"
	"github.com/campusgraph/socialgraph/internal/httputil"
	"github.com/campusgraph/socialgraph/internal/models"
)

func newRelationshipRouter(svc *mockRelationshipService) *gin.Engine {
	r := gin.New()
	h := api.NewRelationshipHandler(svc, testLogger())
	r.POST("/relationships", h.Create)
	r.POST("/relationships/:id/recalculate", h.Recalculate)
	r.PATCH("/relationships/:id/status", h.UpdateStatus)

	return r
}

func TestCreateRelationship(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockRelationshipService{
		createFn: func(_ context.Context, req models.CreateRelationshipRequest) (*models.Relationship, error) {
			if req.Metadata.Context.MutualConnections != 2 {
				t.Errorf("mutual = %d, want 2", req.Metadata.Context.MutualConnections)
			}

			return &models.Relationship{
				ID:        "r1",
				SourceID:  req.SourceID,
				TargetID:  req.TargetID,
				Type:      req.Type,
				Status:    models.StatusActive,
				Strength:  52,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}

	body := `{"source_id":"a","target_id":"b","relationship_type":"follow","metadata":{"context":{"mutual_connections":2}}}`

	w := doRequest(newRelationshipRouter(svc), http.MethodPost, "/relationships", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	rel := decode[models.Relationship](t, w)
	if rel.ID != "r1" || rel.SourceID != "a" || rel.Type != models.TypeFollow {
		t.Errorf("unexpected relationship: %+v", rel)
	}
}

func TestCreateRelationship_BadRequests(t *testing.T) {
	t.Parallel()

	// createFn is nil: any of these reaching the service would panic.
	r := newRelationshipRouter(&mockRelationshipService{})

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"source_id":`, wantCode: api.ErrCodeInvalidRequest},
		{name: "missing target", body: `{"source_id":"a","relationship_type":"follow"}`, wantCode: api.ErrCodeValidationError},
		{name: "self", body: `{"source_id":"a","target_id":"a","relationship_type":"follow"}`, wantCode: api.ErrCodeValidationError},
		{name: "unknown type", body: `{"source_id":"a","target_id":"b","relationship_type":"enemy"}`, wantCode: api.ErrCodeValidationError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := doRequest(r, http.MethodPost, "/relationships", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}

			if got := decode[httputil.ErrorResponse](t, w); got.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tc.wantCode)
			}
		})
	}
}

func TestCreateRelationship_Conflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode string
	}{
		{name: "refused by policy", err: fmt.Errorf("%w: blocked by target", models.ErrNotAllowed), wantHTTP: http.StatusConflict, wantCode: api.ErrCodeNotAllowed},
		{name: "duplicate", err: fmt.Errorf("creating: %w", models.ErrDuplicateRelationship), wantHTTP: http.StatusConflict, wantCode: api.ErrCodeConflict},
		{name: "missing endpoint", err: models.ErrNodeNotFound, wantHTTP: http.StatusNotFound, wantCode: api.ErrCodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockRelationshipService{
				createFn: func(_ context.Context, _ models.CreateRelationshipRequest) (*models.Relationship, error) {
					return nil, tc.err
				},
			}

			w := doRequest(newRelationshipRouter(svc), http.MethodPost, "/relationships",
				`{"source_id":"a","target_id":"b","relationship_type":"follow"}`)
			if w.Code != tc.wantHTTP {
				t.Fatalf("expected %d, got %d", tc.wantHTTP, w.Code)
			}

			if got := decode[httputil.ErrorResponse](t, w); got.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tc.wantCode)
			}
		})
	}
}

func TestRecalculate(t *testing.T) {
	t.Parallel()

	svc := &mockRelationshipService{
		recalculateFn: func(_ context.Context, id string, req models.RecalculateStrengthRequest) (*models.Relationship, error) {
			if id != "r1" || req.InteractionCount != 4 || req.MutualCount != 1 {
				t.Errorf("unexpected call: %s %+v", id, req)
			}

			return &models.Relationship{ID: id, Strength: 71}, nil
		},
	}
	r := newRelationshipRouter(svc)

	w := doRequest(r, http.MethodPost, "/relationships/r1/recalculate", `{"interaction_count":4,"mutual_count":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if rel := decode[models.Relationship](t, w); rel.Strength != 71 {
		t.Errorf("strength = %v, want 71", rel.Strength)
	}

	svc.recalculateFn = func(_ context.Context, _ string, _ models.RecalculateStrengthRequest) (*models.Relationship, error) {
		return nil, models.ErrRelationshipNotFound
	}

	if w := doRequest(r, http.MethodPost, "/relationships/gone/recalculate", `{}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHTTP int
	}{
		{name: "ok", wantHTTP: http.StatusOK},
		{name: "unknown status", err: models.ErrInvalidEnum("status", "friends"), wantHTTP: http.StatusBadRequest},
		{name: "archived is final", err: fmt.Errorf("%w: cannot move relationship from archived to active", models.ErrNotAllowed), wantHTTP: http.StatusConflict},
		{name: "not found", err: models.ErrRelationshipNotFound, wantHTTP: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockRelationshipService{
				updateStatusFn: func(_ context.Context, id string, req models.UpdateStatusRequest) (*models.Relationship, error) {
					if tc.err != nil {
						return nil, tc.err
					}

					return &models.Relationship{ID: id, Status: req.Status}, nil
				},
			}

			w := doRequest(newRelationshipRouter(svc), http.MethodPatch, "/relationships/r1/status", `{"status":"muted"}`)
			if w.Code != tc.wantHTTP {
				t.Fatalf("expected %d, got %d: %s", tc.wantHTTP, w.Code, w.Body.String())
			}

			if tc.err == nil {
				if rel := decode[models.Relationship](t, w); rel.Status != models.StatusMuted {
					t.Errorf("status = %q, want muted", rel.Status)
				}
			}
		})
	}
}
