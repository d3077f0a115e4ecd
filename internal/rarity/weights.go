package rarity

import (
	"fmt"
	"math"
	"sort"
)

// defaultWeight applies to every key absent from a WeightTable.
const defaultWeight = 1.0

// WeightTable maps a trait type or factor name to a non-negative weight.
// It is immutable once built; the zero value weighs every key 1.0.
type WeightTable struct {
	m map[string]float64
}

// NewWeightTable validates and copies w. Negative, NaN and infinite weights
// are rejected.
func NewWeightTable(w map[string]float64) (WeightTable, error) {
	if len(w) == 0 {
		return WeightTable{}, nil
	}
	m := make(map[string]float64, len(w))
	for k, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return WeightTable{}, fmt.Errorf("weight %q is not finite", k)
		}
		if v < 0 {
			return WeightTable{}, fmt.Errorf("weight %q is negative: %v", k, v)
		}
		m[k] = v
	}
	return WeightTable{m: m}, nil
}

// Weight returns the weight for key, or 1.0 when the key is absent.
func (t WeightTable) Weight(key string) float64 {
	if v, ok := t.m[key]; ok {
		return v
	}
	return defaultWeight
}

// Len returns the number of explicitly weighted keys.
func (t WeightTable) Len() int { return len(t.m) }

// Keys returns the explicitly weighted keys in sorted order.
func (t WeightTable) Keys() []string {
	keys := make([]string, 0, len(t.m))
	for k := range t.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Weights groups the tables a strategy may consult: Traits for per-trait
// weighting and Factors for the composite index.
type Weights struct {
	Traits  WeightTable
	Factors WeightTable
}

// NewWeights builds both tables from raw maps.
func NewWeights(traits, factors map[string]float64) (Weights, error) {
	tw, err := NewWeightTable(traits)
	if err != nil {
		return Weights{}, fmt.Errorf("trait weights: %w", err)
	}
	fw, err := NewWeightTable(factors)
	if err != nil {
		return Weights{}, fmt.Errorf("factor weights: %w", err)
	}
	return Weights{Traits: tw, Factors: fw}, nil
}
