// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// AssetID identifies an asset within its collection. Upstream sources emit
// token ids as either strings or numbers; both decode to the same AssetID.
type AssetID string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (id *AssetID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding asset id: %w", err)
		}
		*id = AssetID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding asset id %s: %w", data, err)
	}
	*id = AssetID(n.String())
	return nil
}

// Trait is one categorical attribute of an asset (e.g. Background = Blue).
type Trait struct {
	// TraitType is the attribute name. Case-sensitive; must match exactly
	// across assets to be aggregated together.
	TraitType string `json:"trait_type" yaml:"trait_type"`

	// Value is the attribute value within TraitType. Optional: when empty
	// the trait is counted at type level only.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// TraitCount is the number of assets in the whole collection sharing
	// this trait, as declared by the upstream source. Zero means not
	// declared; the trait index derives the count instead.
	TraitCount int `json:"trait_count,omitempty" yaml:"trait_count,omitempty"`
}

// Factor is a named, externally computed rarity signal for an asset.
type Factor struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// Asset is a collectible record consumed by the scoring core. The core
// never mutates it.
type Asset struct {
	// ID is unique within the collection.
	ID AssetID `json:"id" yaml:"id"`

	// Collection is the slug of the parent collection (display only).
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`

	// Name is an optional display name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Traits lists the asset's traits. A nil slice means the source record
	// had no traits field at all, which makes the asset malformed; an empty
	// slice is an asset with zero traits.
	Traits []Trait `json:"traits" yaml:"traits"`

	// Factors are optional signals consumed by the composite index.
	Factors []Factor `json:"factors,omitempty" yaml:"factors,omitempty"`
}

// MarshalYAML writes a nil trait list as null so an asset without a traits
// field stays malformed after a round trip; yaml would otherwise emit [].
func (a Asset) MarshalYAML() (any, error) {
	type plain Asset
	var n yaml.Node
	if err := n.Encode(plain(a)); err != nil {
		return nil, err
	}
	if a.Traits != nil {
		return &n, nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "traits" {
			n.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
	}
	return &n, nil
}

// HasTraits reports whether the traits field was present on the record.
func (a Asset) HasTraits() bool {
	return a.Traits != nil
}

// DisplayName returns Name, or "<collection> #<id>" when Name is empty.
func (a Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Collection != "" {
		return fmt.Sprintf("%s #%s", a.Collection, a.ID)
	}
	return "#" + string(a.ID)
}

// CollectionInfo describes the collection an asset file belongs to.
type CollectionInfo struct {
	Slug string `json:"slug" yaml:"slug"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Collection is a deserialized asset snapshot: the collection metadata and
// its assets in source order.
type Collection struct {
	Info   CollectionInfo `json:"collection" yaml:"collection"`
	Assets []Asset        `json:"assets" yaml:"assets"`
}
