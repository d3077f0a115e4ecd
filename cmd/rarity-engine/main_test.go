// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rarity-engine/internal/ranking"
	"github.com/pdiddy/rarity-engine/pkg/types"
)

const snapshot = `collection:
  slug: azuki
assets:
  - id: "1"
    traits:
      - {trait_type: Background, trait_count: 1}
  - id: "2"
    traits:
      - {trait_type: Background, trait_count: 2}
  - id: "3"
    traits:
      - {trait_type: Background, trait_count: 2}
  - id: "4"
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReadWeightsKeepsCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rarity-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`weights:
  traits:
    Background: 0.5
    Fur: 2
  factors:
    Uniqueness: 0.6
engine:
  workers: 4
`), 0o644))

	got, err := readWeights(path)
	require.NoError(t, err)
	assert.Equal(t, types.WeightsConfig{
		Traits:  map[string]float64{"Background": 0.5, "Fur": 2},
		Factors: map[string]float64{"Uniqueness": 0.6},
	}, got)

	empty, err := readWeights("")
	require.NoError(t, err)
	assert.Empty(t, empty.Traits)

	_, err = readWeights(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.RarityConfig
	}{
		{"composite order", types.RarityConfig{Composite: types.CompositeConfig{Order: "sideways"}}},
		{"attribute", types.RarityConfig{Distribution: types.DistributionConfig{Attribute: "height"}}},
		{"self component", types.RarityConfig{Composite: types.CompositeConfig{Components: []string{"composite"}}}},
		{"negative weight", types.RarityConfig{Weights: types.WeightsConfig{Traits: map[string]float64{"Fur": -1}}}},
		{"negative workers", types.RarityConfig{Engine: types.EngineConfig{Workers: -2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(tt.cfg)
			assert.Error(t, err)
		})
	}

	_, err := newEngine(types.RarityConfig{})
	assert.NoError(t, err)
}

// The subtests share rootCmd, so flags set in one carry into the next.
func TestCLI(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "azuki.yaml")
	require.NoError(t, os.WriteFile(input, []byte(snapshot), 0o644))
	catalogDir := filepath.Join(dir, "catalog")

	t.Run("score table", func(t *testing.T) {
		out, errOut, err := execute(t, "score", "--input", input)
		require.NoError(t, err)
		assert.Contains(t, out, "3 assets ranked by normalized (lower_is_rarer), 1 skipped")
		assert.Contains(t, errOut, `skipped 4: malformed asset "4": missing traits field`)
	})

	t.Run("score json with export", func(t *testing.T) {
		export := filepath.Join(dir, "out", "ranking.yaml")
		out, _, err := execute(t, "score", "--input", input, "--format", "json", "--top", "1", "--export", export)
		require.NoError(t, err)

		var doc ranking.Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		require.Len(t, doc.Ranking, 1)
		assert.Equal(t, "1", doc.Ranking[0].ID)
		assert.FileExists(t, export)
	})

	t.Run("score fail fast", func(t *testing.T) {
		_, _, err := execute(t, "score", "--input", input, "--fail-fast")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing traits field")
	})

	t.Run("index", func(t *testing.T) {
		out, _, err := execute(t, "index", "--input", input)
		require.NoError(t, err)
		assert.Contains(t, out, "Assets:     4")
		assert.Contains(t, out, "Max count:  2")
		assert.Contains(t, out, "Background")
	})

	t.Run("strategies", func(t *testing.T) {
		out, _, err := execute(t, "strategies", "--input", "")
		require.NoError(t, err)
		for _, name := range []string{"normalized", "weighted", "distribution", "composite", "inverse_frequency"} {
			assert.Contains(t, out, name)
		}
	})

	t.Run("catalog import and score", func(t *testing.T) {
		out, _, err := execute(t, "catalog", "import", input, "--catalog-dir", catalogDir)
		require.NoError(t, err)
		assert.Contains(t, out, "imported azuki (4 assets)")

		out, _, err = execute(t, "catalog", "list", "--catalog-dir", catalogDir)
		require.NoError(t, err)
		assert.Contains(t, out, "1 collections")

		out, _, err = execute(t, "score", "--input", "", "--fail-fast=false", "--format", "table", "--top", "0",
			"--export", "", "--collection", "azuki", "--catalog-dir", catalogDir)
		require.NoError(t, err)
		assert.Contains(t, out, "3 assets ranked by normalized")

		_, _, err = execute(t, "catalog", "delete", "azuki", "--catalog-dir", catalogDir)
		require.NoError(t, err)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, _, err := execute(t, "score", "--input", input, "--collection", "", "--strategy", "rarity_tools")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rarity_tools")
	})

	t.Run("composite ranks rarest first", func(t *testing.T) {
		out, _, err := execute(t, "score", "--input", input, "--strategy", "composite",
			"--components", "inverse_frequency", "--format", "json", "--top", "0")
		require.NoError(t, err)

		var doc ranking.Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "higher_is_rarer", doc.Order)
		require.Len(t, doc.Ranking, 3)
		// Asset 1 holds the only count-1 Background.
		assert.Equal(t, "1", doc.Ranking[0].ID)
		assert.Greater(t, doc.Ranking[0].Score, doc.Ranking[1].Score)
	})
}
