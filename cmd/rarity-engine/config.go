// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rarity-engine/internal/catalog"
	"github.com/pdiddy/rarity-engine/internal/rarity"
	"github.com/pdiddy/rarity-engine/pkg/types"
)

// loadConfig reads settings from viper. Weight tables are read straight
// from the config file because viper lowercases map keys and trait types
// are case-sensitive.
func loadConfig() (types.RarityConfig, error) {
	cfg := types.RarityConfig{
		Engine: types.EngineConfig{
			Workers:      viper.GetInt("engine.workers"),
			FailFast:     viper.GetBool("engine.fail_fast"),
			TieBreakByID: viper.GetBool("engine.tie_break_by_id"),
		},
		Distribution: types.DistributionConfig{Attribute: viper.GetString("distribution.attribute")},
		Composite: types.CompositeConfig{
			Components: viper.GetStringSlice("composite.components"),
			Order:      viper.GetString("composite.order"),
		},
		Catalog: types.CatalogConfig{Dir: viper.GetString("catalog.dir")},
	}

	weights, err := readWeights(viper.ConfigFileUsed())
	if err != nil {
		return cfg, err
	}
	cfg.Weights = weights
	return cfg, nil
}

// readWeights extracts the weights section of a YAML config file. An empty
// path yields empty tables.
func readWeights(path string) (types.WeightsConfig, error) {
	if path == "" {
		return types.WeightsConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.WeightsConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var doc struct {
		Weights types.WeightsConfig `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.WeightsConfig{}, fmt.Errorf("parsing weights in %s: %w", path, err)
	}
	return doc.Weights, nil
}

// applyEngineFlags lets explicitly set command flags override config
// values.
func applyEngineFlags(cmd *cobra.Command, cfg *types.RarityConfig) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Engine.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("fail-fast") {
		cfg.Engine.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("tie-break-id") {
		cfg.Engine.TieBreakByID, _ = flags.GetBool("tie-break-id")
	}
	if flags.Changed("attribute") {
		cfg.Distribution.Attribute, _ = flags.GetString("attribute")
	}
	if flags.Changed("components") {
		cfg.Composite.Components, _ = flags.GetStringSlice("components")
	}
}

// newEngine builds the registry and weight tables described by cfg.
func newEngine(cfg types.RarityConfig) (*rarity.Engine, error) {
	order, err := rarity.ParseOrder(cfg.Composite.Order, rarity.HigherIsRarer)
	if err != nil {
		return nil, err
	}
	registry, err := rarity.DefaultRegistry(rarity.RegistryOptions{
		Attribute:      rarity.Attribute(cfg.Distribution.Attribute),
		Components:     cfg.Composite.Components,
		CompositeOrder: order,
	})
	if err != nil {
		return nil, err
	}
	weights, err := rarity.NewWeights(cfg.Weights.Traits, cfg.Weights.Factors)
	if err != nil {
		return nil, err
	}
	return rarity.NewEngine(rarity.Config{
		Weights:      weights,
		Registry:     registry,
		Workers:      cfg.Engine.Workers,
		FailFast:     cfg.Engine.FailFast,
		TieBreakByID: cfg.Engine.TieBreakByID,
	})
}

// loadCollection reads the collection named by --input or --collection.
func loadCollection(ctx context.Context, cmd *cobra.Command, cfg types.RarityConfig) (types.Collection, error) {
	input, _ := cmd.Flags().GetString("input")
	slug, _ := cmd.Flags().GetString("collection")

	switch {
	case input != "" && slug != "":
		return types.Collection{}, fmt.Errorf("use either --input or --collection, not both")
	case input != "":
		return catalog.LoadFile(input)
	case slug != "":
		store, err := catalog.NewStore(cfg.Catalog)
		if err != nil {
			return types.Collection{}, err
		}
		defer store.Close()
		return store.Load(ctx, slug)
	default:
		return types.Collection{}, fmt.Errorf("a collection is required: provide --input FILE or --collection SLUG")
	}
}

// addSourceFlags registers the flags read by loadCollection.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "collection snapshot file (.yaml, .yml or .json)")
	cmd.Flags().StringP("collection", "c", "", "slug of a collection in the catalog")
}

// addEngineFlags registers the flags read by applyEngineFlags.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 1, "goroutines scoring assets")
	cmd.Flags().Bool("fail-fast", false, "abort on the first malformed asset")
	cmd.Flags().Bool("tie-break-id", false, "order equal scores by asset id")
	cmd.Flags().String("attribute", "", "distribution attribute: trait_count, rarest_trait_count, mean_trait_count")
	cmd.Flags().StringSlice("components", nil, "strategies folded into the composite index")
}
