package client

import (
	"context"
	"net/url"
)

// RelationshipService handles relationship mutations.
type RelationshipService struct {
	c *Client
}

// Create establishes a relationship. Policy refusals surface as IsNotAllowed errors.
func (s *RelationshipService) Create(ctx context.Context, req *CreateRelationshipRequest) (*Relationship, error) {
	var resp Relationship
	if err := s.c.post(ctx, "/api/v1/relationships", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recalculate rescores a relationship from fresh interaction counters.
func (s *RelationshipService) Recalculate(ctx context.Context, id string, req *RecalculateRequest) (*Relationship, error) {
	var resp Relationship
	if err := s.c.post(ctx, "/api/v1/relationships/"+url.PathEscape(id)+"/recalculate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateStatus moves a relationship to status (active, muted, blocked or archived).
func (s *RelationshipService) UpdateStatus(ctx context.Context, id, status string) (*Relationship, error) {
	var resp Relationship
	body := map[string]string{"status": status}
	if err := s.c.patch(ctx, "/api/v1/relationships/"+url.PathEscape(id)+"/status", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
