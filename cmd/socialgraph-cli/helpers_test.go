package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// resetGlobals restores global flag and output state after each test.
// Tests in this package mutate globals and must not run in parallel.
func resetGlobals(t *testing.T) {
	t.Helper()
	orig := struct {
		url, key, fmt string
		out           io.Writer
		now           func() time.Time
	}{flagURL, flagKey, flagFmt, stdout, now}
	t.Cleanup(func() {
		flagURL = orig.url
		flagKey = orig.key
		flagFmt = orig.fmt
		stdout = orig.out
		now = orig.now
	})
}

// isolateHome points HOME at an empty temp dir and clears CLI env vars.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SOCIALGRAPH_URL", "")
	t.Setenv("SOCIALGRAPH_API_KEY", "")
	return home
}

// run executes the full command tree with args and returns captured stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetGlobals(t)

	var buf bytes.Buffer
	stdout = &buf

	root := newRootCmd()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return buf.String(), err
}

// findCmd resolves a command path in a fresh tree.
func findCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := newRootCmd().Find(args)
	if err != nil {
		t.Fatalf("Find(%v): %v", args, err)
	}
	return cmd
}

// twoPairs has two follow pairs (a-b, c-d), an isolated e, and a blocked d->a edge.
const twoPairs = `schema_version: 1
nodes:
  - {id: a, owner_user_id: ua, node_type: user}
  - {id: b, owner_user_id: ub, node_type: user}
  - {id: c, owner_user_id: uc, node_type: user}
  - {id: d, owner_user_id: ud, node_type: user}
  - {id: e, owner_user_id: ue, node_type: user}
relationships:
  - {id: r1, source_id: a, target_id: b, relationship_type: follow, status: active, strength: 60}
  - {id: r2, source_id: c, target_id: d, relationship_type: follow, status: active, strength: 70}
  - {id: r3, source_id: d, target_id: a, relationship_type: block, status: blocked, strength: 0}
`

func writeSnapshot(t *testing.T, content, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
