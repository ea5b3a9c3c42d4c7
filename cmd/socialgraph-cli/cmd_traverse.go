package main

import (
	"github.com/spf13/cobra"

	"github.com/campusgraph/socialgraph/internal/models"
	"github.com/campusgraph/socialgraph/internal/traversal"
)

// traverseFlags are shared by the offline and remote traverse commands.
type traverseFlags struct {
	depth          int
	types          []string
	sort           string
	limit          int
	offset         int
	minStrength    float64
	university     string
	department     string
	interests      []string
	includeBlocked bool
	includeMuted   bool
}

func (f *traverseFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.depth, "depth", models.DefaultMaxDepth, "Max traversal depth")
	fl.StringSliceVar(&f.types, "types", nil, "Relationship types to follow")
	fl.StringVar(&f.sort, "sort", "", "Sort by distance|strength|relevance|activity")
	fl.IntVar(&f.limit, "limit", models.DefaultLimit, "Page size")
	fl.IntVar(&f.offset, "offset", 0, "Page offset")
	fl.Float64Var(&f.minStrength, "min-strength", 0, "Minimum relationship strength")
	fl.StringVar(&f.university, "university", "", "Only nodes at this university")
	fl.StringVar(&f.department, "department", "", "Only nodes in this department")
	fl.StringSliceVar(&f.interests, "interests", nil, "Only nodes sharing one of these interests")
	fl.BoolVar(&f.includeBlocked, "include-blocked", false, "Follow blocked relationships")
	fl.BoolVar(&f.includeMuted, "include-muted", false, "Follow muted relationships")
}

func (f *traverseFlags) options(cmd *cobra.Command) models.TraversalOptions {
	opts := models.TraversalOptions{
		MaxDepth: f.depth,
		SortBy:   models.SortBy(f.sort),
		Limit:    f.limit,
		Offset:   f.offset,
		Filters: models.TraversalFilters{
			UniversityID: f.university,
			DepartmentID: f.department,
			Interests:    f.interests,
			IncludeMuted: f.includeMuted,
		},
	}
	for _, t := range f.types {
		opts.RelationshipTypes = append(opts.RelationshipTypes, models.RelationshipType(t))
	}
	if cmd.Flags().Changed("min-strength") {
		v := f.minStrength
		opts.Filters.MinStrength = &v
	}
	if f.includeBlocked {
		exclude := false
		opts.Filters.ExcludeBlocked = &exclude
	}
	return opts
}

func newTraverseCmd() *cobra.Command {
	var (
		snapPath string
		flags    traverseFlags
	)

	cmd := &cobra.Command{
		Use:   "traverse <id>",
		Short: "Traverse a snapshot file from a node, offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(snapPath)
			if err != nil {
				return err
			}
			engine := traversal.New(traversal.WithClock(now))
			res, err := engine.Traverse(cmd.Context(), args[0], flags.options(cmd), snap)
			if err != nil {
				return err
			}
			return output(traversalView(*res), traversedIDs(res.Nodes))
		},
	}
	cmd.Flags().StringVar(&snapPath, "snapshot", "", "Snapshot file (.json, .yaml)")
	flags.register(cmd)
	return cmd
}
