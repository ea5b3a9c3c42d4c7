package models

import (
	"time"
)

// RelationshipType enumerates the kinds of edges between two nodes.
type RelationshipType string

// Relationship types.
const (
	TypeFollow                RelationshipType = "follow"
	TypeBlock                 RelationshipType = "block"
	TypeUniversityConnection  RelationshipType = "university_connection"
	TypeMutualConnection      RelationshipType = "mutual_connection"
	TypeRecommendedConnection RelationshipType = "recommended_connection"
	TypeAlumniConnection      RelationshipType = "alumni_connection"
	TypeDepartmentConnection  RelationshipType = "department_connection"
	TypeYearConnection        RelationshipType = "year_connection"
	TypeInterestConnection    RelationshipType = "interest_connection"
	TypeEventConnection       RelationshipType = "event_connection"
)

// RelationshipTypes lists every known relationship type.
var RelationshipTypes = []RelationshipType{
	TypeFollow,
	TypeBlock,
	TypeUniversityConnection,
	TypeMutualConnection,
	TypeRecommendedConnection,
	TypeAlumniConnection,
	TypeDepartmentConnection,
	TypeYearConnection,
	TypeInterestConnection,
	TypeEventConnection,
}

// Valid reports whether t is a known relationship type.
func (t RelationshipType) Valid() bool {
	for _, known := range RelationshipTypes {
		if t == known {
			return true
		}
	}

	return false
}

// RelationshipStatus is the lifecycle state of a relationship.
type RelationshipStatus string

// Relationship statuses.
const (
	StatusActive   RelationshipStatus = "active"
	StatusPending  RelationshipStatus = "pending"
	StatusBlocked  RelationshipStatus = "blocked"
	StatusMuted    RelationshipStatus = "muted"
	StatusArchived RelationshipStatus = "archived"
	StatusExpired  RelationshipStatus = "expired"
)

// Valid reports whether s is a known relationship status.
func (s RelationshipStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusBlocked, StatusMuted, StatusArchived, StatusExpired:
		return true
	}

	return false
}

// CanTransitionTo reports whether a relationship in status s may be moved to next
// through the API. Pending and expired are assigned by the system only; blocked,
// archived and expired are final.
func (s RelationshipStatus) CanTransitionTo(next RelationshipStatus) bool {
	switch s {
	case StatusBlocked, StatusArchived, StatusExpired:
		return false
	}

	switch next {
	case StatusBlocked, StatusArchived:
		return true
	case StatusActive:
		return s == StatusPending || s == StatusMuted
	case StatusMuted:
		return s == StatusActive
	}

	return false
}

// MetadataSource records how a relationship came to exist.
type MetadataSource string

// Metadata sources.
const (
	SourceManual         MetadataSource = "manual"
	SourceAutomatic      MetadataSource = "automatic"
	SourceRecommendation MetadataSource = "recommendation"
	SourceUniversity     MetadataSource = "university"
	SourceEvent          MetadataSource = "event"
)

// Valid reports whether s is a known metadata source. The empty source is allowed.
func (s MetadataSource) Valid() bool {
	switch s {
	case "", SourceManual, SourceAutomatic, SourceRecommendation, SourceUniversity, SourceEvent:
		return true
	}

	return false
}

// RelationshipContext carries the contextual fields the scoring formulas read.
type RelationshipContext struct {
	UniversityID      string   `json:"university_id,omitempty" yaml:"university_id,omitempty"`
	DepartmentID      string   `json:"department_id,omitempty" yaml:"department_id,omitempty"`
	Year              *int     `json:"year,omitempty" yaml:"year,omitempty"`
	SharedInterests   []string `json:"shared_interests,omitempty" yaml:"shared_interests,omitempty"`
	MutualConnections int      `json:"mutual_connections" yaml:"mutual_connections"`
	InteractionScore  *float64 `json:"interaction_score,omitempty" yaml:"interaction_score,omitempty"`
}

// RelationshipPrivacy controls who may see and share a relationship.
type RelationshipPrivacy struct {
	Visible      bool `json:"visible" yaml:"visible"`
	Discoverable bool `json:"discoverable" yaml:"discoverable"`
	Shareable    bool `json:"shareable" yaml:"shareable"`
}

// RelationshipMetadata is the provenance and context attached to a relationship.
type RelationshipMetadata struct {
	Source     MetadataSource      `json:"source,omitempty" yaml:"source,omitempty"`
	Confidence *float64            `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Tags       []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	Context    RelationshipContext `json:"context" yaml:"context"`
	Privacy    RelationshipPrivacy `json:"privacy" yaml:"privacy"`
}

// Relationship is a directed, typed edge from SourceID (follower) to TargetID (following).
type Relationship struct {
	ID        string               `json:"id" yaml:"id"`
	SourceID  string               `json:"source_id" yaml:"source_id"`
	TargetID  string               `json:"target_id" yaml:"target_id"`
	Type      RelationshipType     `json:"relationship_type" yaml:"relationship_type"`
	Status    RelationshipStatus   `json:"status" yaml:"status"`
	Strength  float64              `json:"strength" yaml:"strength"`
	Metadata  RelationshipMetadata `json:"metadata" yaml:"metadata"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" yaml:"updated_at"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// IsActive reports whether the relationship is active and not expired at now.
func (r *Relationship) IsActive(now time.Time) bool {
	if r.Status != StatusActive {
		return false
	}

	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// Other returns the endpoint of r that is not nodeID.
func (r *Relationship) Other(nodeID string) string {
	if r.SourceID == nodeID {
		return r.TargetID
	}

	return r.SourceID
}

// Touches reports whether nodeID is one of r's endpoints.
func (r *Relationship) Touches(nodeID string) bool {
	return r.SourceID == nodeID || r.TargetID == nodeID
}

// IsBlocking reports whether r expresses a block, by type or by status.
func (r *Relationship) IsBlocking() bool {
	return r.Type == TypeBlock || r.Status == StatusBlocked
}

// CreateRelationshipRequest is the payload for creating a new relationship.
type CreateRelationshipRequest struct {
	SourceID  string               `json:"source_id"`
	TargetID  string               `json:"target_id"`
	Type      RelationshipType     `json:"relationship_type"`
	Metadata  RelationshipMetadata `json:"metadata"`
	ExpiresAt *time.Time           `json:"expires_at,omitempty"`
}

// Validate checks that required fields are present and within limits on CreateRelationshipRequest.
func (r *CreateRelationshipRequest) Validate() error {
	if r.SourceID == "" {
		return ErrMissingSource
	}

	if len(r.SourceID) > 255 {
		return ErrFieldTooLong("source_id", 255)
	}

	if r.TargetID == "" {
		return ErrMissingTarget
	}

	if len(r.TargetID) > 255 {
		return ErrFieldTooLong("target_id", 255)
	}

	if r.Type == "" {
		return ErrMissingType
	}

	if !r.Type.Valid() {
		return ErrInvalidEnum("relationship_type", string(r.Type))
	}

	if r.SourceID == r.TargetID {
		return ErrSelfRelationship
	}

	if c := r.Metadata.Confidence; c != nil && (*c < 0 || *c > 100) {
		return ErrOutOfRange("metadata.confidence", 0, 100)
	}

	return nil
}

// RecalculateStrengthRequest carries fresh interaction signals for a relationship.
type RecalculateStrengthRequest struct {
	InteractionCount int `json:"interaction_count"`
	MutualCount      int `json:"mutual_count"`
}

// Validate rejects negative counters.
func (r *RecalculateStrengthRequest) Validate() error {
	if r.InteractionCount < 0 {
		return ErrNegative("interaction_count")
	}

	if r.MutualCount < 0 {
		return ErrNegative("mutual_count")
	}

	return nil
}

// UpdateStatusRequest moves a relationship to a new lifecycle status.
type UpdateStatusRequest struct {
	Status RelationshipStatus `json:"status"`
}

// Validate checks the requested status.
func (r *UpdateStatusRequest) Validate() error {
	if r.Status == "" {
		return ErrMissingStatus
	}

	if !r.Status.Valid() {
		return ErrInvalidEnum("status", string(r.Status))
	}

	return nil
}
