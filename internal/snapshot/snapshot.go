// Package snapshot holds a materialized set of nodes and relationships, reads
// and writes it as JSON or YAML, and serves it as an in-memory traversal accessor.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// ErrUnsupportedFormat is returned for snapshot files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Snapshot is an immutable node and relationship set indexed for lookups.
type Snapshot struct {
	Nodes         []models.GraphNode
	Relationships []models.Relationship

	nodeIndex map[string]int
	relIndex  map[string][]int
}

var _ traversal.Accessor = (*Snapshot)(nil)

// New indexes nodes and rels into a Snapshot.
func New(nodes []models.GraphNode, rels []models.Relationship) *Snapshot {
	s := &Snapshot{
		Nodes:         nodes,
		Relationships: rels,
		nodeIndex:     make(map[string]int, len(nodes)),
		relIndex:      make(map[string][]int, len(nodes)),
	}

	for i := range nodes {
		s.nodeIndex[nodes[i].ID] = i
	}

	for i := range rels {
		r := &rels[i]
		s.relIndex[r.SourceID] = append(s.relIndex[r.SourceID], i)

		if r.TargetID != r.SourceID {
			s.relIndex[r.TargetID] = append(s.relIndex[r.TargetID], i)
		}
	}

	return s
}

// FromExport builds a Snapshot from a decoded export file.
func FromExport(ex *models.ExportFormat) *Snapshot {
	return New(ex.Nodes, ex.Relationships)
}

// Export wraps the snapshot in the portable file layout.
func (s *Snapshot) Export(rootID string, now time.Time) *models.ExportFormat {
	return models.NewExport(rootID, s.Nodes, s.Relationships, now)
}

// GetNode returns a copy of the node with id, or nil when absent.
func (s *Snapshot) GetNode(_ context.Context, id string) (*models.GraphNode, error) {
	idx, ok := s.nodeIndex[id]
	if !ok {
		return nil, nil
	}

	n := s.Nodes[idx]

	return &n, nil
}

// GetRelationships returns the relationships touching id, optionally restricted to types.
func (s *Snapshot) GetRelationships(_ context.Context, id string, types []models.RelationshipType) ([]models.Relationship, error) {
	idxs := s.relIndex[id]
	out := make([]models.Relationship, 0, len(idxs))

	for _, i := range idxs {
		r := s.Relationships[i]
		if len(types) > 0 && !slices.Contains(types, r.Type) {
			continue
		}

		out = append(out, r)
	}

	return out, nil
}

// Validate checks every node and relationship and reports the first failure with its position.
func (s *Snapshot) Validate() error {
	for i := range s.Nodes {
		if err := s.Nodes[i].Validate(); err != nil {
			return fmt.Errorf("node %d (%s): %w", i, s.Nodes[i].ID, err)
		}
	}

	for i := range s.Relationships {
		if err := s.Relationships[i].Validate(); err != nil {
			return fmt.Errorf("relationship %d (%s): %w", i, s.Relationships[i].ID, err)
		}
	}

	return nil
}

// Load reads a snapshot file. The format follows the extension: .json, .yaml or .yml.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator-supplied.
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file.

	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	return Decode(f, format)
}

// Decode reads a snapshot in the given format ("json" or "yaml").
func Decode(r io.Reader, format string) (*Snapshot, error) {
	var ex models.ExportFormat

	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&ex); err != nil {
			return nil, fmt.Errorf("decoding json snapshot: %w", err)
		}
	case "yaml":
		if err := yaml.NewDecoder(r).Decode(&ex); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if ex.SchemaVersion > models.ExportSchemaVersion {
		return nil, fmt.Errorf("snapshot schema version %d is newer than supported version %d",
			ex.SchemaVersion, models.ExportSchemaVersion)
	}

	return FromExport(&ex), nil
}

// Write encodes ex to w in the given format.
func Write(w io.Writer, ex *models.ExportFormat, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(ex)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("encoding yaml snapshot: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
