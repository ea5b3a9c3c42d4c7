package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GraphService handles traversal and analytics operations.
type GraphService struct {
	c *Client
}

func (o *TraverseOptions) values() url.Values { //nolint:gocyclo,cyclop // one branch per parameter.
	params := url.Values{}
	if o == nil {
		return params
	}
	if o.Depth > 0 {
		params.Set("depth", strconv.Itoa(o.Depth))
	}
	if len(o.Types) > 0 {
		params.Set("types", strings.Join(o.Types, ","))
	}
	if o.Sort != "" {
		params.Set("sort", o.Sort)
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.MinStrength != nil {
		params.Set("min_strength", strconv.FormatFloat(*o.MinStrength, 'f', -1, 64))
	}
	if o.MaxDistance > 0 {
		params.Set("max_distance", strconv.Itoa(o.MaxDistance))
	}
	if o.University != "" {
		params.Set("university", o.University)
	}
	if o.Department != "" {
		params.Set("department", o.Department)
	}
	if o.Year > 0 {
		params.Set("year", strconv.Itoa(o.Year))
	}
	if len(o.Interests) > 0 {
		params.Set("interests", strings.Join(o.Interests, ","))
	}
	if len(o.Activity) > 0 {
		params.Set("activity", strings.Join(o.Activity, ","))
	}
	if o.Privacy != "" {
		params.Set("privacy", o.Privacy)
	}
	if o.IncludeBlocked {
		params.Set("include_blocked", "true")
	}
	if o.IncludeMuted {
		params.Set("include_muted", "true")
	}
	if o.ExcludeMutual {
		params.Set("include_mutual", "false")
	}
	return params
}

func hopsParams(hops int) url.Values {
	params := url.Values{}
	if hops > 0 {
		params.Set("hops", strconv.Itoa(hops))
	}
	return params
}

// Traverse performs a filtered, ranked traversal starting at id.
func (s *GraphService) Traverse(ctx context.Context, id string, opts *TraverseOptions) (*TraverseResult, error) {
	var resp TraverseResult
	if err := s.c.get(ctx, "/api/v1/graph/traverse/"+url.PathEscape(id), opts.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Mutual returns the nodes directly connected to both a and b.
func (s *GraphService) Mutual(ctx context.Context, a, b string) (*MutualResult, error) {
	path := fmt.Sprintf("/api/v1/graph/mutual/%s/%s", url.PathEscape(a), url.PathEscape(b))
	var resp MutualResult
	if err := s.c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggestions returns friend-of-friend candidates for id.
func (s *GraphService) Suggestions(ctx context.Context, id string, limit int) ([]TraversedNode, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Suggestions []TraversedNode `json:"suggestions"`
	}
	if err := s.c.get(ctx, "/api/v1/graph/suggestions/"+url.PathEscape(id), params, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Metrics computes network metrics over the neighborhood of id.
func (s *GraphService) Metrics(ctx context.Context, id string, hops int) (*NetworkMetrics, error) {
	var resp NetworkMetrics
	if err := s.c.get(ctx, "/api/v1/graph/metrics/"+url.PathEscape(id), hopsParams(hops), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Communities detects communities in the neighborhood of id.
func (s *GraphService) Communities(ctx context.Context, id string, hops int) ([]Community, error) {
	var resp struct {
		Communities []Community `json:"communities"`
	}
	if err := s.c.get(ctx, "/api/v1/graph/communities/"+url.PathEscape(id), hopsParams(hops), &resp); err != nil {
		return nil, err
	}
	return resp.Communities, nil
}

// Influential ranks the most influential nodes in the neighborhood of id.
func (s *GraphService) Influential(ctx context.Context, id string, hops, limit int) ([]InfluentialNode, error) {
	params := hopsParams(hops)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Nodes []InfluentialNode `json:"nodes"`
	}
	if err := s.c.get(ctx, "/api/v1/graph/influential/"+url.PathEscape(id), params, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// ShortestPath finds the shortest path between two nodes within maxDepth hops.
func (s *GraphService) ShortestPath(ctx context.Context, fromID, toID string, maxDepth int) (*PathResult, error) {
	path := fmt.Sprintf("/api/v1/graph/path/%s/%s", url.PathEscape(fromID), url.PathEscape(toID))
	params := url.Values{}
	if maxDepth > 0 {
		params.Set("depth", strconv.Itoa(maxDepth))
	}
	var resp PathResult
	if err := s.c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export downloads the neighborhood of id as a snapshot document in format
// ("json" or "yaml"). The bytes can be fed back to the CLI's --snapshot flag.
func (s *GraphService) Export(ctx context.Context, id string, hops int, format string) ([]byte, error) {
	params := hopsParams(hops)
	if format != "" {
		params.Set("format", format)
	}
	path := "/api/v1/graph/export/" + url.PathEscape(id)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return s.c.raw(ctx, http.MethodGet, path, nil)
}
