package types

// WeightsConfig holds the weight tables handed to the rarity engine.
// Absent keys weigh 1.0.
type WeightsConfig struct {
	// Traits maps a trait type (e.g. "Background") to its weight for the
	// weighted strategy.
	Traits map[string]float64 `json:"traits" yaml:"traits" mapstructure:"traits"`

	// Factors maps a factor name (e.g. "Uniqueness") to its weight for the
	// composite index.
	Factors map[string]float64 `json:"factors" yaml:"factors" mapstructure:"factors"`
}

// EngineConfig holds the scoring pass settings.
type EngineConfig struct {
	// Workers is the number of goroutines scoring assets (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// FailFast aborts a scoring pass on the first malformed asset instead
	// of skipping it and reporting.
	FailFast bool `json:"fail_fast" yaml:"fail_fast" mapstructure:"fail_fast"`

	// TieBreakByID orders equal scores by ascending asset id instead of
	// input order.
	TieBreakByID bool `json:"tie_break_by_id" yaml:"tie_break_by_id" mapstructure:"tie_break_by_id"`
}

// DistributionConfig selects the per-asset attribute the distribution
// strategy fits (trait_count, rarest_trait_count, mean_trait_count).
type DistributionConfig struct {
	Attribute string `json:"attribute" yaml:"attribute" mapstructure:"attribute"`
}

// CompositeConfig configures the composite index.
type CompositeConfig struct {
	// Components are strategy names whose scores become factors, named
	// after the strategy.
	Components []string `json:"components" yaml:"components" mapstructure:"components"`

	// Order is "higher_is_rarer" (default) or "lower_is_rarer".
	Order string `json:"order" yaml:"order" mapstructure:"order"`
}

// CatalogConfig holds settings for the local asset catalog.
type CatalogConfig struct {
	// Dir is the directory containing catalog.db (default "catalog").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// RarityConfig groups all settings read from rarity-engine.yaml.
type RarityConfig struct {
	Weights      WeightsConfig      `json:"weights" yaml:"weights" mapstructure:"weights"`
	Engine       EngineConfig       `json:"engine" yaml:"engine" mapstructure:"engine"`
	Distribution DistributionConfig `json:"distribution" yaml:"distribution" mapstructure:"distribution"`
	Composite    CompositeConfig    `json:"composite" yaml:"composite" mapstructure:"composite"`
	Catalog      CatalogConfig      `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}
