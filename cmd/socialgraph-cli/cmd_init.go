package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campusgraph/socialgraph/client"
)

func newInitCmd() *cobra.Command {
	var (
		initURL        string
		initAPIKey     string
		skipConnection bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up CLI configuration",
		Long:  "Interactive setup that creates ~/.socialgraph/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initURL != ""
			return runInit(cmd.Context(), initURL, initAPIKey, nonInteractive, !skipConnection)
		},
	}

	cmd.Flags().StringVar(&initURL, "server", "", "Server URL (non-interactive mode)")
	cmd.Flags().StringVar(&initAPIKey, "token", "", "Optional bearer token")
	cmd.Flags().BoolVar(&skipConnection, "offline", false, "Do not test the connection")
	return cmd
}

func runInit(ctx context.Context, url, apiKey string, nonInteractive, testConn bool) error {
	if !nonInteractive {
		fmt.Fprintln(stdout, "\n  Social Graph Setup")
		fmt.Fprintln(stdout)

		reader := bufio.NewReader(os.Stdin)

		fmt.Fprintf(stdout, "  Server URL [%s]: ", defaultURL)
		line, _ := reader.ReadString('\n')
		url = strings.TrimSpace(line)

		fmt.Fprint(stdout, "  Bearer token (optional): ")
		keyLine, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(keyLine)
	}

	if url == "" {
		url = defaultURL
	}

	if testConn {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		opts := []client.Option{}
		if apiKey != "" {
			opts = append(opts, client.WithAPIKey(apiKey))
		}
		health, err := client.New(url, opts...).Health(ctx)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		fmt.Fprintf(stdout, "Connected to %s (v%s)\n", url, health.Version)
	}

	cfgPath, err := writeConfig(url, apiKey)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(stdout, "Config saved to %s\n", cfgPath)
	return nil
}

func writeConfig(url, apiKey string) (string, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	cfg := configFile{
		Profiles: map[string]configProfile{
			"default": {URL: url, APIKey: apiKey},
		},
		ActiveProfile: "default",
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
