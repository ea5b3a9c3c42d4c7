package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/campusgraph/socialgraph/internal/api"
	"github.com/campusgraph/socialgraph/internal/httputil"
	"github.com/campusgraph/socialgraph/internal/models"
)

func newGraphRouter(svc *mockGraphService) *gin.Engine {
	r := gin.New()
	h := api.NewGraphHandler(svc, testLogger())
	r.GET("/graph/traverse/:id", h.Traverse)
	r.GET("/graph/mutual/:a/:b", h.Mutual)
	r.GET("/graph/suggestions/:id", h.Suggestions)
	r.GET("/graph/metrics/:id", h.Metrics)
	r.GET("/graph/communities/:id", h.Communities)
	r.GET("/graph/influential/:id", h.Influential)
	r.GET("/graph/path/:from/:to", h.Path)
	r.GET("/graph/export/:id", h.Export)

	return r
}

func ptr[T any](v T) *T { return &v }

func TestTraverse_ParsesQuery(t *testing.T) {
	t.Parallel()

	var got models.TraversalOptions

	svc := &mockGraphService{
		traverseFn: func(_ context.Context, startID string, opts models.TraversalOptions) (*models.TraversalResult, error) {
			if startID != "u1" {
				t.Errorf("startID = %q, want u1", startID)
			}

			got = opts

			return &models.TraversalResult{Nodes: []models.TraversedNode{{NodeID: "u2", Distance: 1}}, Total: 1}, nil
		},
	}

	path := "/graph/traverse/u1?depth=3&types=follow,university_connection&sort=strength&limit=5&offset=10" +
		"&min_strength=25.5&max_distance=2&university=uni-1&department=cs&year=2026&interests=chess,go" +
		"&activity=high&privacy=university&include_blocked=true&include_muted=1&include_mutual=false"

	w := doRequest(newGraphRouter(svc), http.MethodGet, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	want := models.TraversalOptions{
		MaxDepth:          3,
		RelationshipTypes: []models.RelationshipType{models.TypeFollow, models.TypeUniversityConnection},
		SortBy:            models.SortStrength,
		Limit:             5,
		Offset:            10,
		Filters: models.TraversalFilters{
			UniversityID:   "uni-1",
			DepartmentID:   "cs",
			Year:           ptr(2026),
			Interests:      []string{"chess", "go"},
			MinStrength:    ptr(25.5),
			MaxDistance:    2,
			ActivityLevels: []models.ActivityLevel{models.ActivityHigh},
			PrivacyLevel:   models.VisibilityUniversity,
			ExcludeBlocked: ptr(false),
			IncludeMuted:   true,
			IncludeMutual:  ptr(false),
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	res := decode[models.TraversalResult](t, w)
	if res.Total != 1 || res.Nodes[0].NodeID != "u2" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestTraverse_Defaults(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{
		traverseFn: func(_ context.Context, _ string, opts models.TraversalOptions) (*models.TraversalResult, error) {
			if opts.Limit != models.DefaultLimit || opts.Filters.ExcludeBlocked != nil || opts.Filters.IncludeMutual != nil {
				t.Errorf("unexpected defaults: %+v", opts)
			}

			return &models.TraversalResult{}, nil
		},
	}

	if w := doRequest(newGraphRouter(svc), http.MethodGet, "/graph/traverse/u1", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestTraverse_BadQuery(t *testing.T) {
	t.Parallel()

	r := newGraphRouter(&mockGraphService{})

	for _, q := range []string{"depth=two", "year=soon", "min_strength=lots", "include_blocked=maybe"} {
		w := doRequest(r, http.MethodGet, "/graph/traverse/u1?"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestTraverse_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "unknown start", err: models.ErrNodeNotFound, wantCode: http.StatusNotFound, wantBody: api.ErrCodeNotFound},
		{name: "invalid options", err: &models.ValidationError{Errors: []string{"sort_by has unknown value"}}, wantCode: http.StatusBadRequest, wantBody: api.ErrCodeValidationError},
		{name: "timeout", err: fmt.Errorf("fetching: %w", context.DeadlineExceeded), wantCode: http.StatusGatewayTimeout, wantBody: api.ErrCodeTimeout},
		{name: "storage failure", err: errors.New("db down"), wantCode: http.StatusInternalServerError, wantBody: api.ErrCodeInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockGraphService{
				traverseFn: func(_ context.Context, _ string, _ models.TraversalOptions) (*models.TraversalResult, error) {
					return nil, tc.err
				},
			}

			w := doRequest(newGraphRouter(svc), http.MethodGet, "/graph/traverse/u1", "")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}

			if body := decode[httputil.ErrorResponse](t, w); body.Code != tc.wantBody {
				t.Errorf("code = %q, want %q", body.Code, tc.wantBody)
			}

			if tc.wantCode == http.StatusInternalServerError && strings.Contains(w.Body.String(), "db down") {
				t.Error("internal error detail leaked to client")
			}
		})
	}
}

func TestMutual(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{
		mutualFn: func(_ context.Context, a, b string) (*models.MutualConnectionsResult, error) {
			return &models.MutualConnectionsResult{NodeA: a, NodeB: b, Count: 2}, nil
		},
	}

	w := doRequest(newGraphRouter(svc), http.MethodGet, "/graph/mutual/a/b", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if res := decode[models.MutualConnectionsResult](t, w); res.NodeA != "a" || res.NodeB != "b" || res.Count != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSuggestions(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{
		suggestFn: func(_ context.Context, _ string, limit int) ([]models.TraversedNode, error) {
			if limit != 3 {
				t.Errorf("limit = %d, want 3", limit)
			}

			return []models.TraversedNode{{NodeID: "c"}}, nil
		},
	}

	w := doRequest(newGraphRouter(svc), http.MethodGet, "/graph/suggestions/a?limit=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decode[struct {
		Suggestions []models.TraversedNode `json:"suggestions"`
		Count       int                    `json:"count"`
	}](t, w)

	if body.Count != 1 || body.Suggestions[0].NodeID != "c" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{
		metricsFn: func(_ context.Context, _ string, hops int) (*models.NetworkMetrics, error) {
			if hops != 3 {
				t.Errorf("hops = %d, want 3", hops)
			}

			return &models.NetworkMetrics{NodeCount: 4, EdgeCount: 3}, nil
		},
		communitiesFn: func(_ context.Context, _ string, _ int) ([]models.Community, error) {
			return []models.Community{{ID: 1, Members: []string{"a", "b"}, Size: 2, Density: 1}}, nil
		},
		influentialFn: func(_ context.Context, _ string, _, limit int) ([]models.InfluentialNode, error) {
			return []models.InfluentialNode{{NodeID: "a", Score: float64(limit)}}, nil
		},
		pathFn: func(_ context.Context, from, to string, _ int) (*models.PathResult, error) {
			return &models.PathResult{From: from, To: to, Path: []string{from, to}, Length: 1}, nil
		},
	}
	r := newGraphRouter(svc)

	if m := decode[models.NetworkMetrics](t, doRequest(r, http.MethodGet, "/graph/metrics/a?hops=3", "")); m.NodeCount != 4 {
		t.Errorf("metrics = %+v", m)
	}

	comms := decode[struct {
		Communities []models.Community `json:"communities"`
	}](t, doRequest(r, http.MethodGet, "/graph/communities/a", ""))
	if len(comms.Communities) != 1 {
		t.Errorf("communities = %+v", comms)
	}

	infl := decode[struct {
		Nodes []models.InfluentialNode `json:"nodes"`
	}](t, doRequest(r, http.MethodGet, "/graph/influential/a?limit=7", ""))
	if len(infl.Nodes) != 1 || infl.Nodes[0].Score != 7 {
		t.Errorf("influential = %+v", infl)
	}

	if p := decode[models.PathResult](t, doRequest(r, http.MethodGet, "/graph/path/a/b", "")); p.Length != 1 {
		t.Errorf("path = %+v", p)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	svc := &mockGraphService{
		exportFn: func(_ context.Context, nodeID string, _ int) (*models.ExportFormat, error) {
			return &models.ExportFormat{
				SchemaVersion: models.ExportSchemaVersion,
				RootID:        nodeID,
				Nodes:         []models.GraphNode{{ID: nodeID, Type: models.NodeUser}},
			}, nil
		},
	}
	r := newGraphRouter(svc)

	w := doRequest(r, http.MethodGet, "/graph/export/a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if ex := decode[models.ExportFormat](t, w); ex.RootID != "a" || len(ex.Nodes) != 1 {
		t.Errorf("unexpected export: %+v", ex)
	}

	w = doRequest(r, http.MethodGet, "/graph/export/a?format=yaml", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "root_id: a") {
		t.Errorf("yaml export: %d %s", w.Code, w.Body.String())
	}

	if w := doRequest(r, http.MethodGet, "/graph/export/a?format=csv", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for csv, got %d", w.Code)
	}
}

func TestPathIDTooLong(t *testing.T) {
	t.Parallel()

	w := doRequest(newGraphRouter(&mockGraphService{}), http.MethodGet, "/graph/metrics/"+strings.Repeat("x", 256), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
