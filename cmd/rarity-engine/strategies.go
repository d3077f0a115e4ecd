// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rarity-engine/internal/rarity"
)

var strategyDescriptions = map[string]string{
	rarity.StrategyNormalized:       "product of trait counts over the largest count",
	rarity.StrategyWeighted:         "product of trait counts times per-type weights",
	rarity.StrategyDistribution:     "survival probability under a fitted normal",
	rarity.StrategyComposite:        "weighted sum of factors and component scores",
	rarity.StrategyInverseFrequency: "sum of inverse value frequencies",
}

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered rarity strategies",
	Long: `Strategies lists every strategy name accepted by "score --strategy".
With --input or --collection each strategy is bound to that collection and
its ranking order is shown, along with the fitted distribution parameters
and the composite's components.`,
	RunE: runStrategies,
}

func runStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyEngineFlags(cmd, &cfg)

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	input, _ := cmd.Flags().GetString("input")
	slug, _ := cmd.Flags().GetString("collection")
	if input == "" && slug == "" {
		for _, name := range engine.Strategies() {
			fmt.Fprintf(w, "%-18s  %s\n", name, strategyDescriptions[name])
		}
		return nil
	}

	col, err := loadCollection(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}
	if err := engine.Load(col.Assets); err != nil {
		return fmt.Errorf("collection %s: %w", col.Info.Slug, err)
	}

	fmt.Fprintf(w, "%-18s  %-16s  %s\n", "Strategy", "Order", "Details")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, name := range engine.Strategies() {
		s, err := engine.Bind(name)
		if err != nil {
			fmt.Fprintf(w, "%-18s  %-16s  %v\n", name, "-", err)
			continue
		}
		fmt.Fprintf(w, "%-18s  %-16s  %s\n", name, s.Order(), strategyDetails(s))
	}
	return nil
}

func strategyDetails(s rarity.Strategy) string {
	switch v := s.(type) {
	case *rarity.Distribution:
		return fmt.Sprintf("%s: mean %.4g, stddev %.4g", v.Attribute(), v.Location(), v.Scale())
	case *rarity.Composite:
		if c := v.Components(); len(c) > 0 {
			return "components: " + strings.Join(c, ", ")
		}
		return "factors only"
	default:
		return strategyDescriptions[s.Name()]
	}
}

func init() {
	addSourceFlags(strategiesCmd)
	strategiesCmd.Flags().String("attribute", "", "distribution attribute: trait_count, rarest_trait_count, mean_trait_count")
	strategiesCmd.Flags().StringSlice("components", nil, "strategies folded into the composite index")

	rootCmd.AddCommand(strategiesCmd)
}
