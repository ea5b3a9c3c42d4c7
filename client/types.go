package client

import (
	"time"
)

// Node is a vertex of the social graph: a user, group, university, department or event.
type Node struct {
	ID           string         `json:"id"`
	OwnerUserID  string         `json:"owner_user_id"`
	Type         string         `json:"node_type"`
	Properties   map[string]any `json:"properties"`
	Connections  map[string]int `json:"connections"`
	Metrics      map[string]any `json:"metrics"`
	LastActivity time.Time      `json:"last_activity"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Relationship is a directed, typed, scored edge between two nodes.
type Relationship struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      string         `json:"relationship_type"`
	Status    string         `json:"status"`
	Strength  float64        `json:"strength"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
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
	Node          Node           `json:"node"`
}

// TraversalMetadata describes the work a traversal performed.
type TraversalMetadata struct {
	DurationNS             int64 `json:"duration_ns"`
	NodesVisited           int   `json:"nodes_visited"`
	RelationshipsTraversed int   `json:"relationships_traversed"`
	CacheHits              int64 `json:"cache_hits"`
	MemoryBytes            int64 `json:"memory_bytes"`
}

// TraverseResult is the ranked page returned by the traverse endpoint.
type TraverseResult struct {
	Nodes         []TraversedNode   `json:"nodes"`
	Relationships []Relationship    `json:"relationships"`
	Total         int               `json:"total"`
	Metadata      TraversalMetadata `json:"metadata"`
}

// MutualResult lists nodes directly connected to both A and B.
type MutualResult struct {
	NodeA  string          `json:"node_a"`
	NodeB  string          `json:"node_b"`
	Mutual []TraversedNode `json:"mutual"`
	Count  int             `json:"count"`
}

// NetworkMetrics summarizes the structure of a neighborhood.
type NetworkMetrics struct {
	NodeCount             int     `json:"node_count"`
	EdgeCount             int     `json:"edge_count"`
	Density               float64 `json:"density"`
	AverageDegree         float64 `json:"average_degree"`
	AveragePathLength     float64 `json:"average_path_length"`
	ClusteringCoefficient float64 `json:"clustering_coefficient"`
	ComponentCount        int     `json:"component_count"`
}

// Community is a connected group of two or more nodes.
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

// PathResult is a shortest path. Length is -1 when the nodes are not connected.
type PathResult struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Path   []string `json:"path"`
	Length int      `json:"length"`
}

// CreateRelationshipRequest is the payload for creating a relationship.
type CreateRelationshipRequest struct {
	SourceID  string         `json:"source_id"`
	TargetID  string         `json:"target_id"`
	Type      string         `json:"relationship_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// RecalculateRequest carries the counters used to rescore a relationship.
type RecalculateRequest struct {
	InteractionCount int `json:"interaction_count"`
	MutualCount      int `json:"mutual_count"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by the readiness endpoint.
type ReadyResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	Nodes         int64             `json:"nodes"`
	Relationships int64             `json:"relationships"`
}

// TraverseOptions holds the traverse query parameters. Zero values are omitted
// and the server applies its defaults.
type TraverseOptions struct {
	Depth          int
	Types          []string
	Sort           string
	Limit          int
	Offset         int
	MinStrength    *float64
	MaxDistance    int
	University     string
	Department     string
	Year           int
	Interests      []string
	Activity       []string
	Privacy        string
	IncludeBlocked bool
	IncludeMuted   bool
	ExcludeMutual  bool
}
