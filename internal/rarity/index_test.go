// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// --- fixtures ---

func trait(typ, value string) types.Trait {
	return types.Trait{TraitType: typ, Value: value}
}

func asset(id string, traits ...types.Trait) types.Asset {
	if traits == nil {
		traits = []types.Trait{}
	}
	return types.Asset{ID: types.AssetID(id), Collection: "azuki", Traits: traits}
}

// declaredBackgrounds is the three-asset collection whose Background trait
// counts are declared upstream as 1, 2 and 2.
func declaredBackgrounds() []types.Asset {
	return []types.Asset{
		asset("asset-1", types.Trait{TraitType: "Background", TraitCount: 1}),
		asset("asset-2", types.Trait{TraitType: "Background", TraitCount: 2}),
		asset("asset-3", types.Trait{TraitType: "Background", TraitCount: 2}),
	}
}

// apes is a small valued collection: Background Blue is unique, Red is
// shared; Fur is on three of four assets.
func apes() []types.Asset {
	return []types.Asset{
		asset("1", trait("Background", "Blue"), trait("Fur", "Gold")),
		asset("2", trait("Background", "Red"), trait("Fur", "Brown")),
		asset("3", trait("Background", "Red"), trait("Fur", "Brown"), trait("Hat", "Crown")),
		asset("4", trait("Background", "Red")),
	}
}

// generated returns n assets with a deterministic spread of traits.
func generated(n int) []types.Asset {
	backgrounds := []string{"Blue", "Red", "Green", "Purple", "Off White"}
	furs := []string{"Brown", "Gold", "Cheetah", "Noise", "Black", "Trippy", "Zombie"}
	out := make([]types.Asset, n)
	for i := 0; i < n; i++ {
		traits := []types.Trait{
			trait("Background", backgrounds[(i*7)%len(backgrounds)]),
			trait("Fur", furs[(i*i+3)%len(furs)]),
		}
		if i%3 == 0 {
			traits = append(traits, trait("Hat", fmt.Sprintf("Hat %d", i%4)))
		}
		if i%11 == 0 {
			traits = append(traits, trait("Earring", "Gold Stud"))
		}
		out[i] = asset(fmt.Sprintf("token-%d", i), traits...)
	}
	return out
}

// --- BuildIndex ---

func TestBuildIndexEmpty(t *testing.T) {
	for _, assets := range [][]types.Asset{nil, {}} {
		idx, err := BuildIndex(assets)
		assert.Nil(t, idx)
		assert.True(t, errors.Is(err, ErrEmptyCollection))
	}
}

func TestBuildIndexCounts(t *testing.T) {
	idx, err := BuildIndex(apes())
	require.NoError(t, err)

	assert.Equal(t, 4, idx.TotalAssets())
	assert.Equal(t, 4, idx.TypeCount("Background"))
	assert.Equal(t, 3, idx.TypeCount("Fur"))
	assert.Equal(t, 1, idx.TypeCount("Hat"))
	assert.Equal(t, 0, idx.TypeCount("background"), "trait types are case-sensitive")

	assert.Equal(t, 1, idx.ValueCount("Background", "Blue"))
	assert.Equal(t, 3, idx.ValueCount("Background", "Red"))
	assert.Equal(t, 2, idx.ValueCount("Fur", "Brown"))

	assert.Equal(t, 2, idx.DistinctValues("Background"))
	assert.Equal(t, 2, idx.DistinctValues("Fur"))
	assert.Equal(t, []string{"Background", "Fur", "Hat"}, idx.Types())
	assert.Equal(t, []string{"Blue", "Red"}, idx.Values("Background"))

	// Red on three assets is the most frequent value.
	assert.Equal(t, 3, idx.MaxCount())
}

func TestBuildIndexDeclaredCounts(t *testing.T) {
	idx, err := BuildIndex(declaredBackgrounds())
	require.NoError(t, err)

	assert.Equal(t, 3, idx.TotalAssets())
	assert.Equal(t, 2, idx.MaxCount())
	assert.Equal(t, 2, idx.DeclaredCount("Background", ""))
	assert.Equal(t, 1, idx.CountOf(types.Trait{TraitType: "Background", TraitCount: 1}))
	// Without its own declaration a trait falls back to the largest one.
	assert.Equal(t, 2, idx.CountOf(types.Trait{TraitType: "Background"}))
}

func TestBuildIndexIgnoresOutOfRangeDeclarations(t *testing.T) {
	assets := []types.Asset{
		asset("a", types.Trait{TraitType: "Eyes", Value: "Laser", TraitCount: 50}),
		asset("b", trait("Eyes", "Laser")),
	}
	idx, err := BuildIndex(assets)
	require.NoError(t, err)

	assert.Equal(t, 0, idx.DeclaredCount("Eyes", "Laser"))
	assert.Equal(t, 2, idx.CountOf(trait("Eyes", "Laser")))
}

func TestBuildIndexCountsRepeatedTraitOnce(t *testing.T) {
	idx, err := BuildIndex([]types.Asset{
		asset("a", trait("Hat", "Cap"), trait("Hat", "Cap")),
		asset("b", trait("Hat", "Beanie")),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, idx.TypeCount("Hat"))
	assert.Equal(t, 1, idx.ValueCount("Hat", "Cap"))
}

func TestBuildIndexDuplicateIDs(t *testing.T) {
	_, err := BuildIndex([]types.Asset{asset("7"), asset("7")})

	var dup *DuplicateAssetError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, types.AssetID("7"), dup.AssetID)
}

func TestBuildIndexKeepsMalformedAssetsInTotal(t *testing.T) {
	assets := apes()
	assets = append(assets, types.Asset{ID: "no-traits"})

	idx, err := BuildIndex(assets)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.TotalAssets())
	assert.Equal(t, 4, idx.TypeCount("Background"))
}

func TestBuildIndexDeterministic(t *testing.T) {
	assets := generated(200)

	first, err := BuildIndex(assets)
	require.NoError(t, err)
	second, err := BuildIndex(assets)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.TotalAssets(), second.TotalAssets())
	assert.Equal(t, first.MaxCount(), second.MaxCount())
}

func TestBuildIndexDoesNotMutateInput(t *testing.T) {
	assets := apes()
	before := fmt.Sprintf("%+v", assets)

	_, err := BuildIndex(assets)
	require.NoError(t, err)
	assert.Equal(t, before, fmt.Sprintf("%+v", assets))
}
