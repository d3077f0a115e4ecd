// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking renders a scoring result for people and for other
// programs. It never reorders: rows come out in the rank order the engine
// produced.
package ranking

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rarity-engine/internal/rarity"
)

// Row is one exported ranking entry.
type Row struct {
	Rank       int     `json:"rank" yaml:"rank"`
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Collection string  `json:"collection,omitempty" yaml:"collection,omitempty"`
	Score      float64 `json:"score" yaml:"score"`
}

// RowError is a per-asset failure carried alongside the rows.
type RowError struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// Document is the structured form written by FormatJSON, FormatYAML and
// Export.
type Document struct {
	Strategy string     `json:"strategy" yaml:"strategy"`
	Order    string     `json:"order" yaml:"order"`
	Assets   int        `json:"assets" yaml:"assets"`
	Ranking  []Row      `json:"ranking" yaml:"ranking"`
	Errors   []RowError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Rows converts every ranked asset of res into a Row.
func Rows(res *rarity.Result) []Row {
	return rows(res, 0)
}

func rows(res *rarity.Result, top int) []Row {
	ranked := res.Top(top)
	out := make([]Row, len(ranked))
	for i, r := range ranked {
		out[i] = Row{
			Rank:       r.Rank,
			ID:         string(r.ID),
			Name:       r.Name,
			Collection: r.Collection,
			Score:      r.Score,
		}
	}
	return out
}

func document(res *rarity.Result, top int) Document {
	doc := Document{
		Strategy: res.Strategy,
		Order:    res.Order.String(),
		Assets:   len(res.Ranking),
		Ranking:  rows(res, top),
	}
	for _, e := range res.Report.Errors {
		doc.Errors = append(doc.Errors, RowError{ID: string(e.AssetID), Error: e.Err.Error()})
	}
	return doc
}

// FormatTable writes the top rows of res as a human-readable table. A top
// of zero or less writes every row.
func FormatTable(w io.Writer, res *rarity.Result, top int) {
	if len(res.Ranking) == 0 {
		fmt.Fprintln(w, "No assets scored.")
		return
	}

	fmt.Fprintf(w, "%-6s  %-12s  %-40s  %s\n", "Rank", "ID", "Name", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 78))

	for _, r := range rows(res, top) {
		fmt.Fprintf(w, "%-6d  %-12s  %-40s  %.6g\n",
			r.Rank, truncate(r.ID, 12), truncate(r.Name, 40), r.Score)
	}

	fmt.Fprintf(w, "\n%d assets ranked by %s (%s)", len(res.Ranking), res.Strategy, res.Order)
	if n := res.Report.Len(); n > 0 {
		fmt.Fprintf(w, ", %d skipped", n)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the ranking document as indented JSON.
func FormatJSON(w io.Writer, res *rarity.Result, top int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document(res, top))
}

// FormatYAML writes the ranking document as YAML.
func FormatYAML(w io.Writer, res *rarity.Result, top int) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document(res, top)); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Export writes the full ranking to path as JSON or YAML, chosen by the
// file extension.
func Export(path string, res *rarity.Result) error {
	var write func(io.Writer, *rarity.Result, int) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		write = FormatJSON
	case ".yaml", ".yml":
		write = FormatYAML
	default:
		return fmt.Errorf("unsupported export format %q: use .json, .yaml or .yml", filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, res, 0); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// truncate shortens s to n runes so multi-byte names are never split.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
