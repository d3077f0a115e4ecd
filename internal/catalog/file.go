// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads asset snapshots from YAML or JSON files and keeps
// imported collections in a local SQLite database so they can be scored
// again without re-reading the source files.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads a collection snapshot. The file is either a document with
// collection and assets keys or a bare list of assets. When the document
// names no collection the file's base name is used as the slug; assets
// without a collection inherit the slug.
func LoadFile(path string) (types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Collection{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var col types.Collection
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		col, err = decodeJSON(data)
	case ".yaml", ".yml":
		col, err = decodeYAML(data)
	default:
		return types.Collection{}, fmt.Errorf("unsupported file type %q: use .json, .yaml or .yml", filepath.Ext(path))
	}
	if err != nil {
		return types.Collection{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if col.Info.Slug == "" {
		base := filepath.Base(path)
		col.Info.Slug = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for i := range col.Assets {
		if col.Assets[i].Collection == "" {
			col.Assets[i].Collection = col.Info.Slug
		}
	}
	return col, nil
}

func decodeJSON(data []byte) (types.Collection, error) {
	var col types.Collection
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &col.Assets)
		return col, err
	}
	err := json.Unmarshal(trimmed, &col)
	return col, err
}

func decodeYAML(data []byte) (types.Collection, error) {
	var col types.Collection
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return col, err
	}
	if len(doc.Content) == 0 {
		return col, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		err := root.Decode(&col.Assets)
		return col, err
	}
	err := root.Decode(&col)
	return col, err
}

// WriteFile saves a collection snapshot as YAML or JSON, chosen by the
// extension of path.
func WriteFile(path string, col types.Collection) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(col, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&col)
	default:
		return fmt.Errorf("unsupported file type %q: use .json, .yaml or .yml", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("marshaling collection: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
