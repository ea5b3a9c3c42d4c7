package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".socialgraph")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name    string
		flagURL string
		envURL  string
		config  string
		wantURL string
		wantKey string
	}{
		{name: "default", flagURL: defaultURL, wantURL: defaultURL},
		{name: "env overrides default", flagURL: defaultURL, envURL: "http://env:9000", wantURL: "http://env:9000"},
		{name: "flag beats env", flagURL: "http://flag:1", envURL: "http://env:9000", wantURL: "http://flag:1"},
		{
			name:    "config file fills gaps",
			flagURL: defaultURL,
			config:  "active_profile: campus\nprofiles:\n  campus:\n    url: http://campus:3040\n    api_key: tok\n",
			wantURL: "http://campus:3040",
			wantKey: "tok",
		},
		{
			name:    "env beats config file",
			flagURL: defaultURL,
			envURL:  "http://env:9000",
			config:  "profiles:\n  default:\n    url: http://file:3040\n",
			wantURL: "http://env:9000",
		},
		{
			name:    "unknown active profile ignored",
			flagURL: defaultURL,
			config:  "active_profile: nope\nprofiles:\n  default:\n    url: http://file:3040\n",
			wantURL: defaultURL,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobals(t)
			home := isolateHome(t)
			t.Setenv("SOCIALGRAPH_URL", tc.envURL)
			if tc.config != "" {
				writeConfigFile(t, home, tc.config)
			}

			flagURL = tc.flagURL
			flagKey = ""
			resolveConfig()

			if flagURL != tc.wantURL {
				t.Errorf("url = %q, want %q", flagURL, tc.wantURL)
			}
			if flagKey != tc.wantKey {
				t.Errorf("key = %q, want %q", flagKey, tc.wantKey)
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	resetGlobals(t)
	isolateHome(t)

	path, err := writeConfig("http://written:3040", "")
	if err != nil {
		t.Fatalf("writeConfig: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	flagURL = defaultURL
	flagKey = ""
	resolveConfig()
	if flagURL != "http://written:3040" {
		t.Errorf("url = %q after init", flagURL)
	}
}
