package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdout is swapped by tests.
var stdout io.Writer = os.Stdout

func formatJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Fprintln(stdout, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// tableView is a value that knows how to render itself as a table.
type tableView interface {
	table() (headers []string, rows [][]string)
}

// output renders v in the selected format. Quiet mode prints one id per line.
func output(v any, quiet []string) error {
	switch flagFmt {
	case "quiet":
		for _, id := range quiet {
			fmt.Fprintln(stdout, id)
		}
		return nil
	case "table":
		if tv, ok := v.(tableView); ok {
			formatTable(tv.table())
			return nil
		}
		return formatJSON(v)
	case "json", "":
		return formatJSON(v)
	default:
		return fmt.Errorf("unknown output format %q (want json, table or quiet)", flagFmt)
	}
}

func ftoa(f float64) string {
	return fmt.Sprintf("%.3f", f)
}
