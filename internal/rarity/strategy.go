// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// Strategy names registered by DefaultRegistry.
const (
	StrategyNormalized       = "normalized"
	StrategyWeighted         = "weighted"
	StrategyDistribution     = "distribution"
	StrategyComposite        = "composite"
	StrategyInverseFrequency = "inverse_frequency"
)

// Order is a strategy's sign convention. Strategies do not share one: a
// product of counts is rarer when small, an information sum is rarer when
// large.
type Order int

const (
	// LowerIsRarer ranks the smallest score first.
	LowerIsRarer Order = iota
	// HigherIsRarer ranks the largest score first.
	HigherIsRarer
)

func (o Order) String() string {
	if o == HigherIsRarer {
		return "higher_is_rarer"
	}
	return "lower_is_rarer"
}

// ParseOrder parses "lower_is_rarer" or "higher_is_rarer". An empty string
// yields def.
func ParseOrder(s string, def Order) (Order, error) {
	switch s {
	case "":
		return def, nil
	case "lower_is_rarer", "lower":
		return LowerIsRarer, nil
	case "higher_is_rarer", "higher":
		return HigherIsRarer, nil
	default:
		return def, fmt.Errorf("unknown order %q: use lower_is_rarer or higher_is_rarer", s)
	}
}

// rarer reports whether score a ranks strictly before score b.
func (o Order) rarer(a, b float64) bool {
	if o == HigherIsRarer {
		return a > b
	}
	return a < b
}

// Strategy turns one asset plus a precomputed index into a rarity score.
// Implementations are immutable once bound and safe for concurrent use.
type Strategy interface {
	Name() string
	Order() Order
	Score(asset types.Asset, idx *Index, w Weights) (float64, error)
}

// Binder hands a factory the index it binds to and resolves other
// strategies against that same index.
type Binder interface {
	Index() *Index
	Bind(name string) (Strategy, error)
}

// Factory binds a strategy to one collection. Collection-wide work, such
// as fitting a distribution, happens here and never per asset.
type Factory func(b Binder) (Strategy, error)

// Registry maps strategy names to factories.
type Registry struct {
	factories map[string]Factory
	names     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Names are unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("strategy name is empty")
	}
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.factories[name] = f
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the factory for name or an *UnknownStrategyError.
func (r *Registry) Lookup(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name, Known: r.Names()}
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.names...)
	sort.Strings(out)
	return out
}

// RegistryOptions configures the strategies built by DefaultRegistry.
type RegistryOptions struct {
	// Attribute is the per-asset attribute the distribution strategy fits.
	Attribute Attribute

	// Components are the strategies the composite index folds in as factors.
	Components []string

	// CompositeOrder is the composite index's sign convention.
	CompositeOrder Order
}

// DefaultRegistry registers normalized, weighted, distribution, composite
// and inverse_frequency.
func DefaultRegistry(opts RegistryOptions) (*Registry, error) {
	attr := opts.Attribute
	if attr == "" {
		attr = AttributeTraitCount
	}
	if _, ok := attributes[attr]; !ok {
		return nil, fmt.Errorf("unknown distribution attribute %q", attr)
	}
	for _, c := range opts.Components {
		if c == StrategyComposite {
			return nil, fmt.Errorf("composite index cannot include itself as a component")
		}
	}

	r := NewRegistry()
	entries := []struct {
		name string
		f    Factory
	}{
		{StrategyNormalized, func(Binder) (Strategy, error) { return Normalized{}, nil }},
		{StrategyWeighted, func(Binder) (Strategy, error) { return Weighted{}, nil }},
		{StrategyDistribution, func(b Binder) (Strategy, error) { return FitDistribution(b.Index(), attr) }},
		{StrategyComposite, func(b Binder) (Strategy, error) {
			return NewComposite(b, opts.Components, opts.CompositeOrder)
		}},
		{StrategyInverseFrequency, func(Binder) (Strategy, error) { return InverseFrequency{}, nil }},
	}
	for _, e := range entries {
		if err := r.Register(e.name, e.f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ValidateAsset checks the fields every strategy relies on. A nil trait
// list, an empty id, an untyped trait, a declared count outside
// [1, total], a trait the index never saw, or a non-finite factor make the
// asset malformed.
func ValidateAsset(a types.Asset, idx *Index) error {
	if a.ID == "" {
		return &MalformedAssetError{AssetID: a.ID, Reason: "missing identifier"}
	}
	if !a.HasTraits() {
		return &MalformedAssetError{AssetID: a.ID, Reason: "missing traits field"}
	}
	for i, t := range a.Traits {
		if t.TraitType == "" {
			return &MalformedAssetError{AssetID: a.ID, Reason: fmt.Sprintf("trait %d has no trait_type", i)}
		}
		if t.TraitCount < 0 {
			return &MalformedAssetError{AssetID: a.ID, Reason: fmt.Sprintf("trait %q has negative trait_count %d", t.TraitType, t.TraitCount)}
		}
		if idx == nil {
			continue
		}
		if t.TraitCount > idx.TotalAssets() {
			return &MalformedAssetError{AssetID: a.ID, Reason: fmt.Sprintf("trait %q trait_count %d exceeds collection size %d", t.TraitType, t.TraitCount, idx.TotalAssets())}
		}
		if idx.CountOf(t) == 0 {
			return &MalformedAssetError{AssetID: a.ID, Reason: fmt.Sprintf("trait %q not present in index", t.TraitType)}
		}
	}
	for _, f := range a.Factors {
		if f.Name == "" {
			return &MalformedAssetError{AssetID: a.ID, Reason: "factor has no name"}
		}
		if math.IsNaN(f.Score) || math.IsInf(f.Score, 0) {
			return &MalformedAssetError{AssetID: a.ID, Reason: fmt.Sprintf("factor %q score is not finite", f.Name)}
		}
	}
	return nil
}

// finite rejects NaN and infinite scores.
func finite(strategy string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DegenerateInputError{Strategy: strategy, Reason: fmt.Sprintf("score is not finite (%v)", v)}
	}
	return v, nil
}

// product multiplies terms in ascending order so the result does not depend
// on the order an asset lists its traits.
func product(terms []float64) float64 {
	sort.Float64s(terms)
	p := 1.0
	for _, t := range terms {
		p *= t
	}
	return p
}

// sum adds terms in ascending order for the same reason.
func sum(terms []float64) float64 {
	sort.Float64s(terms)
	var s float64
	for _, t := range terms {
		s += t
	}
	return s
}
