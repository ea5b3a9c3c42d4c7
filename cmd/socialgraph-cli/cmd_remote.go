package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campusgraph/socialgraph/client"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running social graph server",
	}
	cmd.AddCommand(remoteTraverseCmd())
	cmd.AddCommand(remoteMutualCmd())
	cmd.AddCommand(remoteSuggestCmd())
	cmd.AddCommand(remotePathCmd())
	cmd.AddCommand(remoteExportCmd())
	cmd.AddCommand(remoteRelateCmd())
	cmd.AddCommand(remoteStatusCmd())
	return cmd
}

func remoteTraverseCmd() *cobra.Command {
	var flags traverseFlags
	cmd := &cobra.Command{
		Use:   "traverse <id>",
		Short: "Filtered, ranked traversal from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.TraverseOptions{
				Depth:          flags.depth,
				Types:          flags.types,
				Sort:           flags.sort,
				Limit:          flags.limit,
				Offset:         flags.offset,
				University:     flags.university,
				Department:     flags.department,
				Interests:      flags.interests,
				IncludeBlocked: flags.includeBlocked,
				IncludeMuted:   flags.includeMuted,
			}
			if cmd.Flags().Changed("min-strength") {
				v := flags.minStrength
				opts.MinStrength = &v
			}
			res, err := apiClient.Graph.Traverse(cmd.Context(), args[0], opts)
			if err != nil {
				return fmt.Errorf("traverse: %w", err)
			}
			if flagFmt == "table" {
				return output(remoteNodesView(res.Nodes), nil)
			}
			return output(res, remoteIDs(res.Nodes))
		},
	}
	flags.register(cmd)
	return cmd
}

func remoteMutualCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutual <a> <b>",
		Short: "Nodes directly connected to both a and b",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Graph.Mutual(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("mutual: %w", err)
			}
			if flagFmt == "table" {
				return output(remoteNodesView(res.Mutual), nil)
			}
			return output(res, remoteIDs(res.Mutual))
		},
	}
}

func remoteSuggestCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest <id>",
		Short: "Friend-of-friend connection suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Graph.Suggestions(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("suggest: %w", err)
			}
			return output(remoteNodesView(res), remoteIDs(res))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Max suggestions")
	return cmd
}

func remotePathCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Graph.ShortestPath(cmd.Context(), args[0], args[1], depth)
			if err != nil {
				return fmt.Errorf("path: %w", err)
			}
			if flagFmt == "table" {
				fmt.Fprintf(stdout, "%s (length %d)\n", strings.Join(res.Path, " > "), res.Length)
				return nil
			}
			return output(res, res.Path)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 0, "Max path length (server default when 0)")
	return cmd
}

func remoteExportCmd() *cobra.Command {
	var (
		hops       int
		format     string
		outputPath string
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Download a node's neighborhood as a snapshot file",
		Long: `Export the neighborhood of a node as a JSON or YAML snapshot. The file can be
analysed offline with 'socialgraph analyze --snapshot FILE'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := apiClient.Graph.Export(cmd.Context(), args[0], hops, format)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if outputPath == "" || outputPath == "-" {
				_, err = stdout.Write(data)
				return err
			}

			if err := os.WriteFile(outputPath, data, 0o600); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported neighborhood of %s to %s\n", args[0], outputPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&hops, "hops", 0, "Neighborhood radius (server default when 0)")
	cmd.Flags().StringVar(&format, "as", "json", "File format: json|yaml")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func remoteRelateCmd() *cobra.Command {
	var mutual int
	cmd := &cobra.Command{
		Use:   "relate <source> <target> <type>",
		Short: "Create a relationship",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &client.CreateRelationshipRequest{SourceID: args[0], TargetID: args[1], Type: args[2]}
			if mutual > 0 {
				req.Metadata = map[string]any{"context": map[string]any{"mutual_connections": mutual}}
			}
			rel, err := apiClient.Relationships.Create(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("relate: %w", err)
			}
			return output(rel, []string{rel.ID})
		},
	}
	cmd.Flags().IntVar(&mutual, "mutual", 0, "Mutual connection count used for the initial strength")
	return cmd
}

func remoteStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <relationship-id> <active|muted|blocked|archived>",
		Short: "Change a relationship's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := apiClient.Relationships.UpdateStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			return output(rel, []string{rel.ID})
		},
	}
}
