package rarity

import (
	"fmt"
	"math"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// Normalized multiplies, over an asset's traits, each trait's count divided
// by the collection's max trait count. Scores lie in (0, 1]; values near 0
// are rare and 1 means every trait is the most frequent one. An asset with
// zero traits scores 1.0.
type Normalized struct{}

func (Normalized) Name() string { return StrategyNormalized }

func (Normalized) Order() Order { return LowerIsRarer }

func (Normalized) Score(a types.Asset, idx *Index, _ Weights) (float64, error) {
	if err := ValidateAsset(a, idx); err != nil {
		return 0, err
	}
	if len(a.Traits) == 0 {
		return 1.0, nil
	}
	maxCount := idx.MaxCount()
	if maxCount == 0 {
		return 0, &DegenerateInputError{Strategy: StrategyNormalized, Reason: "max trait count is zero"}
	}

	terms := make([]float64, len(a.Traits))
	for i, t := range a.Traits {
		count := idx.CountOf(t)
		if count > maxCount {
			return 0, &MalformedAssetError{
				AssetID: a.ID,
				Reason:  fmt.Sprintf("trait %q count %d exceeds the collection's max trait count %d", t.TraitType, count, maxCount),
			}
		}
		terms[i] = float64(count) / float64(maxCount)
	}
	p := product(terms)
	if p == 0 {
		return 0, &DegenerateInputError{Strategy: StrategyNormalized, Reason: "product underflowed to zero"}
	}
	return finite(StrategyNormalized, p)
}

// Weighted multiplies, over an asset's traits, each trait's raw count times
// the weight of its trait type. Smaller products are rarer. The result is
// not divided by the collection size, so scores from collections of
// different sizes are not comparable. An asset with zero traits scores 1.0.
type Weighted struct{}

func (Weighted) Name() string { return StrategyWeighted }

func (Weighted) Order() Order { return LowerIsRarer }

func (Weighted) Score(a types.Asset, idx *Index, w Weights) (float64, error) {
	if err := ValidateAsset(a, idx); err != nil {
		return 0, err
	}

	terms := make([]float64, len(a.Traits))
	for i, t := range a.Traits {
		weight := w.Traits.Weight(t.TraitType)
		if weight == 0 {
			return 0, &DegenerateInputError{Strategy: StrategyWeighted, Reason: fmt.Sprintf("trait type %q has zero weight", t.TraitType)}
		}
		terms[i] = float64(idx.CountOf(t)) * weight
	}
	p := product(terms)
	if p == 0 {
		return 0, &DegenerateInputError{Strategy: StrategyWeighted, Reason: "product underflowed to zero"}
	}
	if math.IsInf(p, 0) {
		return 0, &DegenerateInputError{Strategy: StrategyWeighted, Reason: "product overflowed"}
	}
	return finite(StrategyWeighted, p)
}

// InverseFrequency sums, over an asset's traits, 1 / (value count ×
// distinct values of the trait type). A trait shared by few assets in a
// type with many values contributes most, so larger sums are rarer. An
// asset with zero traits scores 0.
type InverseFrequency struct{}

func (InverseFrequency) Name() string { return StrategyInverseFrequency }

func (InverseFrequency) Order() Order { return HigherIsRarer }

func (InverseFrequency) Score(a types.Asset, idx *Index, _ Weights) (float64, error) {
	if err := ValidateAsset(a, idx); err != nil {
		return 0, err
	}

	terms := make([]float64, len(a.Traits))
	for i, t := range a.Traits {
		count := idx.CountOf(t)
		if t.Value != "" {
			if vc := idx.ValueCount(t.TraitType, t.Value); vc > 0 {
				count = vc
			}
		}
		distinct := idx.DistinctValues(t.TraitType)
		if distinct == 0 {
			distinct = 1
		}
		terms[i] = 1 / (float64(count) * float64(distinct))
	}
	return finite(StrategyInverseFrequency, sum(terms))
}
