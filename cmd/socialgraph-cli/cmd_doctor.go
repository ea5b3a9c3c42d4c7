package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and server readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func doctorChecks(ctx context.Context) []checkResult {
	var results []checkResult

	cfgPath, _, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Passed: false, Detail: cfgPath,
			Hint: "Run: socialgraph init (optional when using --url or SOCIALGRAPH_URL)",
		})
	} else {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: cfgPath})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := apiClient.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Passed: false, Detail: flagURL,
			Hint: fmt.Sprintf("Is socialgraph-server running? Error: %v", err),
		})
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: "v" + health.Version})

	results = append(results, checkResult{
		Name:   "Database",
		Passed: health.Database == "connected",
		Detail: health.Database,
		Hint:   "Check DATABASE_URL on the server",
	})

	ready, err := apiClient.Ready(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Ready", Passed: false,
			Hint: fmt.Sprintf("Migrations may not have run. Error: %v", err),
		})
	}

	return append(results, checkResult{
		Name: "Ready", Passed: true,
		Detail: fmt.Sprintf("schema v%d, %d nodes, %d relationships", health.SchemaVersion, ready.Nodes, ready.Relationships),
	})
}

func runDoctor(ctx context.Context) error {
	fmt.Fprintln(stdout, "\nSocial Graph Doctor")
	fmt.Fprintln(stdout, "===================")
	fmt.Fprintln(stdout)

	allPassed := true
	for _, r := range doctorChecks(ctx) {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Fprintf(stdout, "[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Fprintf(stdout, "[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Fprintf(stdout, "       Hint: %s\n", r.Hint)
		}
	}

	fmt.Fprintln(stdout)
	if !allPassed {
		return fmt.Errorf("doctor found issues")
	}
	fmt.Fprintln(stdout, "All checks passed.")
	return nil
}
