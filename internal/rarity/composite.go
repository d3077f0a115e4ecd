package rarity

import (
	"fmt"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// Composite combines named factors into a weighted sum:
// Σ factor.Score × Factors.Weight(factor.Name). The factors are the asset's
// own Factors plus one factor per component strategy, named after it. The
// composite does not know how its factors were produced.
type Composite struct {
	components []Strategy
	order      Order
}

// NewComposite resolves each component through b so components share the
// binder's index and any collection-wide fit.
func NewComposite(b Binder, components []string, order Order) (*Composite, error) {
	c := &Composite{order: order}
	for _, name := range components {
		if name == StrategyComposite {
			return nil, fmt.Errorf("composite index cannot include itself as a component")
		}
		s, err := b.Bind(name)
		if err != nil {
			return nil, fmt.Errorf("binding composite component %s: %w", name, err)
		}
		c.components = append(c.components, s)
	}
	return c, nil
}

func (c *Composite) Name() string { return StrategyComposite }

func (c *Composite) Order() Order { return c.order }

// Components returns the names of the folded-in strategies.
func (c *Composite) Components() []string {
	names := make([]string, len(c.components))
	for i, s := range c.components {
		names[i] = s.Name()
	}
	return names
}

func (c *Composite) Score(a types.Asset, idx *Index, w Weights) (float64, error) {
	if err := ValidateAsset(a, idx); err != nil {
		return 0, err
	}

	terms := make([]float64, 0, len(a.Factors)+len(c.components))
	for _, f := range a.Factors {
		terms = append(terms, f.Score*w.Factors.Weight(f.Name))
	}
	for _, s := range c.components {
		v, err := s.Score(a, idx, w)
		if err != nil {
			return 0, err
		}
		terms = append(terms, v*w.Factors.Weight(s.Name()))
	}
	return finite(StrategyComposite, sum(terms))
}

// CompositeIndex is the factor combination on its own, for callers holding
// precomputed factors and no collection.
func CompositeIndex(factors []types.Factor, w WeightTable) float64 {
	terms := make([]float64, len(factors))
	for i, f := range factors {
		terms[i] = f.Score * w.Weight(f.Name)
	}
	return sum(terms)
}
