// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// Attribute names the per-asset scalar the distribution strategy models.
type Attribute string

const (
	// AttributeTraitCount is the number of traits an asset carries.
	AttributeTraitCount Attribute = "trait_count"
	// AttributeRarestTraitCount is the smallest resolved count among an
	// asset's traits.
	AttributeRarestTraitCount Attribute = "rarest_trait_count"
	// AttributeMeanTraitCount is the mean resolved count of an asset's traits.
	AttributeMeanTraitCount Attribute = "mean_trait_count"
)

type attributeFunc func(a types.Asset, idx *Index) (float64, bool)

var attributes = map[Attribute]attributeFunc{
	AttributeTraitCount: func(a types.Asset, _ *Index) (float64, bool) {
		return float64(len(a.Traits)), true
	},
	AttributeRarestTraitCount: func(a types.Asset, idx *Index) (float64, bool) {
		if len(a.Traits) == 0 {
			return 0, false
		}
		lowest := math.MaxInt
		for _, t := range a.Traits {
			lowest = min(lowest, idx.CountOf(t))
		}
		return float64(lowest), true
	},
	AttributeMeanTraitCount: func(a types.Asset, idx *Index) (float64, bool) {
		if len(a.Traits) == 0 {
			return 0, false
		}
		total := 0
		for _, t := range a.Traits {
			total += idx.CountOf(t)
		}
		return float64(total) / float64(len(a.Traits)), true
	},
}

// Attributes returns the supported attribute names.
func Attributes() []Attribute {
	return []Attribute{AttributeTraitCount, AttributeRarestTraitCount, AttributeMeanTraitCount}
}

// Distribution scores an asset by the upper tail probability of its
// attribute under a normal distribution fitted to the whole collection:
// 1 - CDF(x). Scores lie in [0, 1]; smaller values sit further into the
// tail and are rarer. The fit is fixed when the strategy is built.
type Distribution struct {
	attr   Attribute
	value  attributeFunc
	normal distuv.Normal
}

// FitDistribution fits location (mean) and scale (population standard
// deviation) of attr over every well-formed asset in idx. Fewer than two
// samples or zero variance is a *DegenerateInputError.
func FitDistribution(idx *Index, attr Attribute) (*Distribution, error) {
	value, ok := attributes[attr]
	if !ok {
		return nil, fmt.Errorf("unknown distribution attribute %q", attr)
	}

	var sample []float64
	for _, a := range idx.Assets() {
		if ValidateAsset(a, idx) != nil {
			continue
		}
		if x, ok := value(a, idx); ok {
			sample = append(sample, x)
		}
	}
	if len(sample) < 2 {
		return nil, &DegenerateInputError{
			Strategy: StrategyDistribution,
			Reason:   fmt.Sprintf("need at least 2 samples of %s, have %d", attr, len(sample)),
		}
	}

	mu, sigma := stat.PopMeanStdDev(sample, nil)
	if sigma == 0 || math.IsNaN(sigma) {
		return nil, &DegenerateInputError{
			Strategy: StrategyDistribution,
			Reason:   fmt.Sprintf("%s has zero variance across %d assets", attr, len(sample)),
		}
	}

	return &Distribution{
		attr:   attr,
		value:  value,
		normal: distuv.Normal{Mu: mu, Sigma: sigma},
	}, nil
}

func (d *Distribution) Name() string { return StrategyDistribution }

func (d *Distribution) Order() Order { return LowerIsRarer }

// Location returns the fitted mean.
func (d *Distribution) Location() float64 { return d.normal.Mu }

// Scale returns the fitted standard deviation.
func (d *Distribution) Scale() float64 { return d.normal.Sigma }

// Attribute returns the modelled attribute.
func (d *Distribution) Attribute() Attribute { return d.attr }

func (d *Distribution) Score(a types.Asset, idx *Index, _ Weights) (float64, error) {
	if err := ValidateAsset(a, idx); err != nil {
		return 0, err
	}
	x, ok := d.value(a, idx)
	if !ok {
		return 0, &DegenerateInputError{
			Strategy: StrategyDistribution,
			Reason:   fmt.Sprintf("asset %q has no traits to measure %s", a.ID, d.attr),
		}
	}
	return finite(StrategyDistribution, d.normal.Survival(x))
}
