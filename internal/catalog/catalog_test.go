// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := NewStore(types.CatalogConfig{Dir: filepath.Join(tmpDir, "catalog")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, tmpDir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const azukiYAML = `collection:
  slug: azuki
  name: Azuki
assets:
  - id: "1"
    name: "Azuki #1"
    traits:
      - trait_type: Background
        value: Off White
        trait_count: 2
      - trait_type: Type
        value: Human
    factors:
      - name: age
        score: 0.5
  - id: "2"
    traits: []
  - id: "3"
`

const bareJSON = `[
  {"id": 17, "traits": [{"trait_type": "Eyes", "value": "Laser"}]},
  {"id": "18", "traits": [{"trait_type": "Eyes", "value": "Bored", "trait_count": 4}]}
]`

// --- LoadFile ---

func TestLoadFileYAMLDocument(t *testing.T) {
	dir := t.TempDir()
	col, err := LoadFile(writeFile(t, dir, "snapshot.yaml", azukiYAML))
	require.NoError(t, err)

	assert.Equal(t, "azuki", col.Info.Slug)
	assert.Equal(t, "Azuki", col.Info.Name)
	require.Len(t, col.Assets, 3)

	first := col.Assets[0]
	assert.Equal(t, types.AssetID("1"), first.ID)
	assert.Equal(t, "azuki", first.Collection)
	assert.Equal(t, []types.Trait{
		{TraitType: "Background", Value: "Off White", TraitCount: 2},
		{TraitType: "Type", Value: "Human"},
	}, first.Traits)
	assert.Equal(t, []types.Factor{{Name: "age", Score: 0.5}}, first.Factors)

	assert.True(t, col.Assets[1].HasTraits())
	assert.Empty(t, col.Assets[1].Traits)
	assert.False(t, col.Assets[2].HasTraits(), "a missing traits key stays nil")
}

func TestLoadFileBareJSONList(t *testing.T) {
	dir := t.TempDir()
	col, err := LoadFile(writeFile(t, dir, "bayc.json", bareJSON))
	require.NoError(t, err)

	assert.Equal(t, "bayc", col.Info.Slug)
	require.Len(t, col.Assets, 2)
	assert.Equal(t, types.AssetID("17"), col.Assets[0].ID, "numeric ids are read as strings")
	assert.Equal(t, "bayc", col.Assets[1].Collection)
	assert.Equal(t, 4, col.Assets[1].Traits[0].TraitCount)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		file string
		body string
	}{
		{"unsupported extension", "assets.csv", "id,trait\n"},
		{"bad json", "broken.json", `{"assets": [`},
		{"bad yaml", "broken.yaml", "assets: [\n  - id: 1\n  traits: {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, dir, tt.file, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	col, err := LoadFile(writeFile(t, dir, "azuki.yaml", azukiYAML))
	require.NoError(t, err)

	for _, name := range []string{"copy.json", "copy.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, col))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, col.Info, got.Info)
			assert.Equal(t, col.Assets, got.Assets)
			for i := range col.Assets {
				assert.Equal(t, col.Assets[i].HasTraits(), got.Assets[i].HasTraits(), "asset %s", col.Assets[i].ID)
			}
		})
	}

	assert.Error(t, WriteFile(filepath.Join(dir, "copy.txt"), col))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.json"))
	assert.True(t, Supported("a.YAML"))
	assert.True(t, Supported("a.yml"))
	assert.False(t, Supported("a.csv"))
	assert.False(t, Supported("README"))
}

// --- Store ---

func TestStoreImportAndLoad(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()
	path := writeFile(t, tmpDir, "azuki.yaml", azukiYAML)

	var out bytes.Buffer
	summary, err := store.Import(ctx, path, &out)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 1}, summary)
	assert.Contains(t, out.String(), "imported azuki (3 assets)")

	want, err := LoadFile(path)
	require.NoError(t, err)

	got, err := store.Load(ctx, "azuki")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NotNil(t, got.Assets[1].Traits, "an empty traits list survives the round trip")
	assert.Nil(t, got.Assets[2].Traits, "a missing traits list survives the round trip")
}

func TestStoreImportSkipsUnchanged(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()
	path := writeFile(t, tmpDir, "azuki.yaml", azukiYAML)

	_, err := store.Import(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := store.Import(ctx, path, &out)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Skipped: 1}, summary)
	assert.Contains(t, out.String(), "skipped azuki.yaml")

	// A newer file replaces the collection.
	writeFile(t, tmpDir, "azuki.yaml", azukiYAML+"  - id: \"4\"\n    traits: []\n")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	summary, err = store.Import(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Updated: 1}, summary)

	col, err := store.Load(ctx, "azuki")
	require.NoError(t, err)
	assert.Len(t, col.Assets, 4)
}

func TestStoreImportDir(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()
	src := filepath.Join(tmpDir, "snapshots")
	require.NoError(t, os.MkdirAll(src, 0o755))

	writeFile(t, src, "azuki.yaml", azukiYAML)
	writeFile(t, src, "bayc.json", bareJSON)
	writeFile(t, src, "broken.json", `{"assets": [`)
	writeFile(t, src, "notes.txt", "ignored")

	var out bytes.Buffer
	summary, err := store.ImportDir(ctx, src, &out)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 2, Failed: 1}, summary)
	assert.Equal(t, 3, summary.Total())
	assert.Contains(t, out.String(), "failed  broken.json")

	cols, err := store.Collections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "azuki", cols[0].Slug)
	assert.Equal(t, 3, cols[0].Assets)
	assert.Equal(t, "bayc", cols[1].Slug)
	assert.Equal(t, 2, cols[1].Assets)

	slugs, err := store.Slugs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"azuki", "bayc"}, slugs)

	_, err = store.ImportDir(ctx, filepath.Join(tmpDir, "missing"), &out)
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()
	path := writeFile(t, tmpDir, "azuki.yaml", azukiYAML)

	_, err := store.Import(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "azuki"))

	_, err = store.Load(ctx, "azuki")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "azuki"))

	// Deleting clears the import record so the file imports again.
	summary, err := store.Import(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Imported: 1}, summary)
}

func TestStoreLoadUnknown(t *testing.T) {
	store, _ := testStore(t)
	_, err := store.Load(context.Background(), "nope")
	assert.Error(t, err)
}

func TestStoreKeepsMalformedAssets(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()
	path := writeFile(t, tmpDir, "messy.json", `[
  {"id": "7", "traits": []},
  {"id": "7", "traits": [{"trait_type": "Hat", "value": "Cap"}]},
  {"traits": null},
  {"name": "no id"}
]`)

	_, err := store.Import(ctx, path, &bytes.Buffer{})
	require.NoError(t, err)

	col, err := store.Load(ctx, "messy")
	require.NoError(t, err)
	require.Len(t, col.Assets, 4, "validation is left to the scoring engine")
	assert.Equal(t, []types.Trait{{TraitType: "Hat", Value: "Cap"}}, col.Assets[1].Traits)
	assert.Equal(t, "no id", col.Assets[3].Name)
	assert.False(t, col.Assets[3].HasTraits())
}
