// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestAssetYAMLKeepsMissingTraits(t *testing.T) {
	tests := []struct {
		name      string
		asset     Asset
		wantLine  string
		hasTraits bool
	}{
		{"missing", Asset{ID: "3"}, "traits: null", false},
		{"empty", Asset{ID: "2", Traits: []Trait{}}, "traits: []", true},
		{"listed", Asset{ID: "1", Traits: []Trait{{TraitType: "Hat", Value: "Cap"}}}, "trait_type: Hat", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := yaml.Marshal(tt.asset)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.wantLine)

			var got Asset
			require.NoError(t, yaml.Unmarshal(data, &got))
			assert.Equal(t, tt.hasTraits, got.HasTraits())
			assert.Equal(t, tt.asset, got)
		})
	}
}

func TestAssetIDAcceptsNumbers(t *testing.T) {
	var a Asset
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "traits": []}`), &a))
	assert.Equal(t, AssetID("42"), a.ID)
	assert.True(t, a.HasTraits())
}
