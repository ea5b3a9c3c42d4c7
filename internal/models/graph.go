package models

import (
	"time"
)

// SortBy selects how traversal results are ordered.
type SortBy string

// Sort orders.
const (
	SortDistance  SortBy = "distance"
	SortStrength  SortBy = "strength"
	SortRelevance SortBy = "relevance"
	SortActivity  SortBy = "activity"
)

// Valid reports whether s is a known sort order. The empty order is allowed.
func (s SortBy) Valid() bool {
	switch s {
	case "", SortDistance, SortStrength, SortRelevance, SortActivity:
		return true
	}

	return false
}

// Traversal defaults.
const (
	DefaultMaxDepth = 2
	DefaultLimit    = 20
)

// TraversalFilters narrow which edges are followed and which nodes are returned.
type TraversalFilters struct {
	UniversityID   string          `json:"university_id,omitempty"`
	DepartmentID   string          `json:"department_id,omitempty"`
	Year           *int            `json:"year,omitempty"`
	Interests      []string        `json:"interests,omitempty"`
	MinStrength    *float64        `json:"min_strength,omitempty"`
	MaxDistance    int             `json:"max_distance,omitempty"`
	ActivityLevels []ActivityLevel `json:"activity_levels,omitempty"`
	PrivacyLevel   Visibility      `json:"privacy_level,omitempty"`
	ExcludeBlocked *bool           `json:"exclude_blocked,omitempty"`
	IncludeMuted   bool            `json:"include_muted,omitempty"`
	IncludeMutual  *bool           `json:"include_mutual,omitempty"`
}

// ExcludesBlocked reports the effective ExcludeBlocked value (default true).
func (f *TraversalFilters) ExcludesBlocked() bool {
	return f.ExcludeBlocked == nil || *f.ExcludeBlocked
}

// IncludesMutual reports the effective IncludeMutual value (default true).
func (f *TraversalFilters) IncludesMutual() bool {
	return f.IncludeMutual == nil || *f.IncludeMutual
}

// MinStrengthValue returns the strength floor, or 0 when unset.
func (f *TraversalFilters) MinStrengthValue() float64 {
	if f.MinStrength == nil {
		return 0
	}

	return *f.MinStrength
}

// TraversalOptions bound and shape a traversal.
type TraversalOptions struct {
	MaxDepth          int                `json:"max_depth"`
	RelationshipTypes []RelationshipType `json:"relationship_types,omitempty"`
	Filters           TraversalFilters   `json:"filters"`
	SortBy            SortBy             `json:"sort_by"`
	Limit             int                `json:"limit"`
	Offset            int                `json:"offset"`
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o TraversalOptions) WithDefaults() TraversalOptions {
	if o.MaxDepth < 1 {
		o.MaxDepth = DefaultMaxDepth
	}

	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = SortRelevance
	}

	return o
}

// Validate checks enumerated option values.
func (o *TraversalOptions) Validate() error {
	var errs []string

	if !o.SortBy.Valid() {
		errs = append(errs, ErrInvalidEnum("sort_by", string(o.SortBy)).Error())
	}

	for _, t := range o.RelationshipTypes {
		if !t.Valid() {
			errs = append(errs, ErrInvalidEnum("relationship_types", string(t)).Error())
		}
	}

	for _, a := range o.Filters.ActivityLevels {
		if a == "" || !a.Valid() {
			errs = append(errs, ErrInvalidEnum("activity_levels", string(a)).Error())
		}
	}

	if !o.Filters.PrivacyLevel.Valid() {
		errs = append(errs, ErrInvalidEnum("privacy_level", string(o.Filters.PrivacyLevel)).Error())
	}

	if m := o.Filters.MinStrength; m != nil && (*m < MinStrength || *m > MaxStrength) {
		errs = append(errs, ErrOutOfRange("min_strength", MinStrength, MaxStrength).Error())
	}

	if o.Filters.MaxDistance < 0 {
		errs = append(errs, ErrNegative("max_distance").Error())
	}

	if o.Offset < 0 {
		errs = append(errs, ErrNegative("offset").Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// TraversedNode is a node reached by a traversal with its scoring.
type TraversedNode struct {
	NodeID        string         `json:"node_id"`
	OwnerUserID   string         `json:"owner_user_id"`
	Distance      int            `json:"distance"`
	Weight        float64        `json:"weight"`
	Relevance     float64        `json:"relevance"`
	Path          []string       `json:"path"`
	Relationships []Relationship `json:"relationships"`
	Node          GraphNode      `json:"node"`
}

// TraversalMetadata describes the work a traversal performed.
type TraversalMetadata struct {
	Duration               time.Duration `json:"duration_ns"`
	NodesVisited           int           `json:"nodes_visited"`
	RelationshipsTraversed int           `json:"relationships_traversed"`
	CacheHits              int64         `json:"cache_hits"`
	MemoryBytes            int64         `json:"memory_bytes"`
}

// TraversalResult is the ranked, paginated output of a traversal.
type TraversalResult struct {
	Nodes         []TraversedNode   `json:"nodes"`
	Relationships []Relationship    `json:"relationships"`
	Path          []string          `json:"path"`
	Distance      int               `json:"distance"`
	Weight        float64           `json:"weight"`
	Total         int               `json:"total"`
	Metadata      TraversalMetadata `json:"metadata"`
}

// MutualConnectionsResult lists nodes directly connected to both A and B.
type MutualConnectionsResult struct {
	NodeA  string          `json:"node_a"`
	NodeB  string          `json:"node_b"`
	Mutual []TraversedNode `json:"mutual"`
	Count  int             `json:"count"`
}

// Community is a connected component of size two or more.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
	Density float64  `json:"density"`
}

// InfluentialNode pairs a node with its influence score.
type InfluentialNode struct {
	NodeID    string  `json:"node_id"`
	Score     float64 `json:"score"`
	Followers int     `json:"followers"`
}

// NetworkMetrics summarizes the structure of a node and relationship set.
type NetworkMetrics struct {
	NodeCount             int     `json:"node_count"`
	EdgeCount             int     `json:"edge_count"`
	Density               float64 `json:"density"`
	AverageDegree         float64 `json:"average_degree"`
	AveragePathLength     float64 `json:"average_path_length"`
	ClusteringCoefficient float64 `json:"clustering_coefficient"`
	ComponentCount        int     `json:"component_count"`
}

// PathResult is a shortest path between two nodes. Length is -1 when unreachable.
type PathResult struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Path   []string `json:"path"`
	Length int      `json:"length"`
}
