package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusgraph/socialgraph/internal/analytics"
	"github.com/campusgraph/socialgraph/internal/snapshot"
)

// now is swapped by tests.
var now = time.Now

func loadSnapshot(path string) (*snapshot.Snapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("--snapshot is required")
	}
	snap, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return snap, nil
}

func newAnalyzeCmd() *cobra.Command {
	var snapPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Offline network analytics over a snapshot file",
		Long: `Compute network analytics over a JSON or YAML snapshot, such as the file
written by 'socialgraph remote export'. Only active relationships count as edges.`,
	}
	cmd.PersistentFlags().StringVar(&snapPath, "snapshot", "", "Snapshot file (.json, .yaml)")

	build := func() (*analytics.Graph, error) {
		snap, err := loadSnapshot(snapPath)
		if err != nil {
			return nil, err
		}
		return analytics.Build(snap.Nodes, snap.Relationships, now().UTC()), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "metrics",
		Short: "Density, degree, path length, clustering and components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := build()
			if err != nil {
				return err
			}
			m := g.Metrics()
			return output(metricsView(m), nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "density",
		Short: "Edge density of the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := build()
			if err != nil {
				return err
			}
			d := g.Density()
			if flagFmt == "quiet" {
				return output(nil, []string{ftoa(d)})
			}
			return output(map[string]float64{"density": d}, nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "communities",
		Short: "Connected groups of two or more nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := build()
			if err != nil {
				return err
			}
			comms := g.Communities()
			quiet := make([]string, len(comms))
			for i, c := range comms {
				quiet[i] = fmt.Sprint(c.ID)
			}
			return output(communitiesView(comms), quiet)
		},
	})

	var limit int
	influential := &cobra.Command{
		Use:   "influential",
		Short: "Nodes ranked by influence score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := build()
			if err != nil {
				return err
			}
			nodes := g.InfluentialNodes(limit)
			quiet := make([]string, len(nodes))
			for i, n := range nodes {
				quiet[i] = n.NodeID
			}
			return output(influentialView(nodes), quiet)
		},
	}
	influential.Flags().IntVar(&limit, "limit", 10, "Max nodes to return")
	cmd.AddCommand(influential)

	return cmd
}
