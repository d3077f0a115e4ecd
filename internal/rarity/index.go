// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rarity scores collectible assets by the frequency of their traits
// and ranks a collection from rarest to most common.
//
// The package is a pure computation over an in-memory collection: BuildIndex
// aggregates trait frequencies once, a Strategy turns one asset plus the
// index into a score, and Engine applies a strategy to every asset and
// ranks the results. Nothing here performs I/O.
package rarity

import (
	"sort"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// TraitKey identifies a trait at value granularity. Value is empty for
// traits recorded at type level only.
type TraitKey struct {
	Type  string
	Value string
}

// Index is the aggregate trait frequency table over one collection. It is
// read-only after BuildIndex returns and safe for concurrent use.
type Index struct {
	assets      []types.Asset
	total       int
	typeCounts  map[string]int
	valueCounts map[TraitKey]int
	declared    map[TraitKey]int
	distinct    map[string]int
	maxCount    int
}

// BuildIndex counts, for every trait type and every (type, value) pair, the
// number of assets carrying it. Declared trait counts within [1, total] are
// kept alongside the observed ones; when assets disagree the largest
// declaration wins. Assets without a traits field still count toward the
// total and are reported as malformed when scored.
func BuildIndex(assets []types.Asset) (*Index, error) {
	if len(assets) == 0 {
		return nil, ErrEmptyCollection
	}

	idx := &Index{
		assets:      assets,
		total:       len(assets),
		typeCounts:  make(map[string]int),
		valueCounts: make(map[TraitKey]int),
		declared:    make(map[TraitKey]int),
		distinct:    make(map[string]int),
	}

	seenIDs := make(map[types.AssetID]struct{}, len(assets))
	for _, a := range assets {
		if a.ID != "" {
			if _, dup := seenIDs[a.ID]; dup {
				return nil, &DuplicateAssetError{AssetID: a.ID}
			}
			seenIDs[a.ID] = struct{}{}
		}

		// An asset listing the same trait twice is counted once.
		seenTypes := make(map[string]struct{}, len(a.Traits))
		seenValues := make(map[TraitKey]struct{}, len(a.Traits))
		for _, t := range a.Traits {
			if t.TraitType == "" {
				continue
			}
			key := TraitKey{Type: t.TraitType, Value: t.Value}
			if _, ok := seenTypes[t.TraitType]; !ok {
				seenTypes[t.TraitType] = struct{}{}
				idx.typeCounts[t.TraitType]++
			}
			if _, ok := seenValues[key]; !ok {
				seenValues[key] = struct{}{}
				if idx.valueCounts[key] == 0 && t.Value != "" {
					idx.distinct[t.TraitType]++
				}
				idx.valueCounts[key]++
			}
			if t.TraitCount >= 1 && t.TraitCount <= idx.total && t.TraitCount > idx.declared[key] {
				idx.declared[key] = t.TraitCount
			}
		}
	}

	for _, a := range assets {
		for _, t := range a.Traits {
			if t.TraitType == "" {
				continue
			}
			if c := idx.CountOf(t); c > idx.maxCount {
				idx.maxCount = c
			}
		}
	}

	return idx, nil
}

// Assets returns the collection the index was built from, in input order.
// Callers must not modify it.
func (idx *Index) Assets() []types.Asset { return idx.assets }

// TotalAssets returns the number of assets the index was built from.
func (idx *Index) TotalAssets() int { return idx.total }

// TypeCount returns the number of assets carrying traitType.
func (idx *Index) TypeCount(traitType string) int { return idx.typeCounts[traitType] }

// ValueCount returns the number of assets carrying traitType = value.
func (idx *Index) ValueCount(traitType, value string) int {
	return idx.valueCounts[TraitKey{Type: traitType, Value: value}]
}

// DeclaredCount returns the largest valid upstream trait_count declared for
// the pair, or 0 when none was declared.
func (idx *Index) DeclaredCount(traitType, value string) int {
	return idx.declared[TraitKey{Type: traitType, Value: value}]
}

// DistinctValues returns the number of distinct non-empty values observed
// for traitType.
func (idx *Index) DistinctValues(traitType string) int { return idx.distinct[traitType] }

// CountOf resolves the occurrence count used for t: t's own declared count
// when valid, else the count another asset declared for the same pair,
// else the value-level count when t carries a value, else the type-level
// count. It returns 0 for a trait the collection never carries.
func (idx *Index) CountOf(t types.Trait) int {
	if t.TraitCount >= 1 && t.TraitCount <= idx.total {
		return t.TraitCount
	}
	key := TraitKey{Type: t.TraitType, Value: t.Value}
	if c := idx.declared[key]; c > 0 {
		return c
	}
	if t.Value != "" {
		return idx.valueCounts[key]
	}
	return idx.typeCounts[t.TraitType]
}

// MaxCount returns the highest resolved count of any trait in the
// collection, or 0 when no asset carries a trait.
func (idx *Index) MaxCount() int { return idx.maxCount }

// Types returns every observed trait type in sorted order.
func (idx *Index) Types() []string {
	out := make([]string, 0, len(idx.typeCounts))
	for t := range idx.typeCounts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Values returns the observed values of traitType in sorted order.
func (idx *Index) Values(traitType string) []string {
	var out []string
	for k := range idx.valueCounts {
		if k.Type == traitType && k.Value != "" {
			out = append(out, k.Value)
		}
	}
	sort.Strings(out)
	return out
}
