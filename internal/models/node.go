// Package models defines data types for the campus social graph and the pure
// functions that score relationships.
package models

import (
	"time"
)

// NodeType is the kind of vertex a GraphNode represents.
type NodeType string

// Node types.
const (
	NodeUser       NodeType = "user"
	NodeUniversity NodeType = "university"
	NodeDepartment NodeType = "department"
	NodeInterest   NodeType = "interest"
	NodeEvent      NodeType = "event"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeUser, NodeUniversity, NodeDepartment, NodeInterest, NodeEvent:
		return true
	}

	return false
}

// ActivityLevel buckets how active a user is.
type ActivityLevel string

// Activity levels.
const (
	ActivityHigh   ActivityLevel = "high"
	ActivityMedium ActivityLevel = "medium"
	ActivityLow    ActivityLevel = "low"
)

// Valid reports whether a is a known activity level. The empty level is allowed.
func (a ActivityLevel) Valid() bool {
	switch a {
	case "", ActivityHigh, ActivityMedium, ActivityLow:
		return true
	}

	return false
}

// Visibility is a privacy level, ordered from least to most restrictive.
type Visibility string

// Visibility levels.
const (
	VisibilityPublic      Visibility = "public"
	VisibilityUniversity  Visibility = "university"
	VisibilityConnections Visibility = "connections"
	VisibilityPrivate     Visibility = "private"
)

// Rank orders visibility levels; higher is more restrictive. Unknown and empty
// levels rank as public.
func (v Visibility) Rank() int {
	switch v {
	case VisibilityUniversity:
		return 1
	case VisibilityConnections:
		return 2
	case VisibilityPrivate:
		return 3
	default:
		return 0
	}
}

// Valid reports whether v is a known visibility. The empty visibility is allowed.
func (v Visibility) Valid() bool {
	switch v {
	case "", VisibilityPublic, VisibilityUniversity, VisibilityConnections, VisibilityPrivate:
		return true
	}

	return false
}

// PrivacySettings are a user's profile privacy preferences.
type PrivacySettings struct {
	ProfileVisibility    Visibility `json:"profile_visibility" yaml:"profile_visibility"`
	ConnectionVisibility Visibility `json:"connection_visibility" yaml:"connection_visibility"`
	DiscoveryEnabled     bool       `json:"discovery_enabled" yaml:"discovery_enabled"`
}

// NodeProperties is the descriptive profile data of a node.
type NodeProperties struct {
	DisplayName  string          `json:"display_name" yaml:"display_name"`
	UniversityID string          `json:"university_id,omitempty" yaml:"university_id,omitempty"`
	DepartmentID string          `json:"department_id,omitempty" yaml:"department_id,omitempty"`
	Year         *int            `json:"year,omitempty" yaml:"year,omitempty"`
	Location     string          `json:"location,omitempty" yaml:"location,omitempty"`
	Interests    []string        `json:"interests,omitempty" yaml:"interests,omitempty"`
	Privacy      PrivacySettings `json:"privacy" yaml:"privacy"`
}

// ConnectionCounts are precomputed connection counters maintained by storage.
type ConnectionCounts struct {
	Followers  int `json:"followers" yaml:"followers"`
	Following  int `json:"following" yaml:"following"`
	Mutual     int `json:"mutual" yaml:"mutual"`
	Blocked    int `json:"blocked" yaml:"blocked"`
	University int `json:"university" yaml:"university"`
	Department int `json:"department" yaml:"department"`
	Year       int `json:"year" yaml:"year"`
	Interest   int `json:"interest" yaml:"interest"`
	Event      int `json:"event" yaml:"event"`
}

// NodeMetrics are engagement statistics for a node.
type NodeMetrics struct {
	EngagementScore      float64       `json:"engagement_score" yaml:"engagement_score"`
	InfluenceScore       float64       `json:"influence_score" yaml:"influence_score"`
	ActivityLevel        ActivityLevel `json:"activity_level" yaml:"activity_level"`
	ConnectionGrowth     float64       `json:"connection_growth" yaml:"connection_growth"`
	InteractionFrequency float64       `json:"interaction_frequency" yaml:"interaction_frequency"`
	LastInteraction      *time.Time    `json:"last_interaction,omitempty" yaml:"last_interaction,omitempty"`
	TopInterests         []string      `json:"top_interests,omitempty" yaml:"top_interests,omitempty"`
	ActiveHours          [24]int       `json:"active_hours" yaml:"active_hours"`
}

// GraphNode is a vertex in the social graph, usually a user.
type GraphNode struct {
	ID           string           `json:"id" yaml:"id"`
	OwnerUserID  string           `json:"owner_user_id" yaml:"owner_user_id"`
	Type         NodeType         `json:"node_type" yaml:"node_type"`
	Properties   NodeProperties   `json:"properties" yaml:"properties"`
	Connections  ConnectionCounts `json:"connections" yaml:"connections"`
	Metrics      NodeMetrics      `json:"metrics" yaml:"metrics"`
	LastActivity time.Time        `json:"last_activity" yaml:"last_activity"`
	CreatedAt    time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" yaml:"updated_at"`
}

// HasInterest reports whether any of interests appears in the node's interest list.
func (n *GraphNode) HasInterest(interests []string) bool {
	for _, want := range interests {
		for _, have := range n.Properties.Interests {
			if want == have {
				return true
			}
		}
	}

	return false
}
