package models

import "time"

// ExportSchemaVersion is the current version of the ExportFormat layout.
const ExportSchemaVersion = 1

// ExportFormat is the portable file layout for a set of nodes and relationships.
// Snapshot files read by the CLI and neighborhood exports served by the API share it.
type ExportFormat struct {
	SchemaVersion int            `json:"schema_version" yaml:"schema_version"`
	ExportedAt    time.Time      `json:"exported_at" yaml:"exported_at"`
	RootID        string         `json:"root_id,omitempty" yaml:"root_id,omitempty"`
	Stats         ExportStats    `json:"stats" yaml:"stats"`
	Nodes         []GraphNode    `json:"nodes" yaml:"nodes"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// ExportStats summarises the contents of an export.
type ExportStats struct {
	NodeCount         int `json:"node_count" yaml:"node_count"`
	RelationshipCount int `json:"relationship_count" yaml:"relationship_count"`
}

// NewExport builds an ExportFormat with computed stats.
func NewExport(rootID string, nodes []GraphNode, rels []Relationship, now time.Time) *ExportFormat {
	return &ExportFormat{
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now,
		RootID:        rootID,
		Stats: ExportStats{
			NodeCount:         len(nodes),
			RelationshipCount: len(rels),
		},
		Nodes:         nodes,
		Relationships: rels,
	}
}
