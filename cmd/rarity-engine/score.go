// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rarity-engine/internal/ranking"
	"github.com/pdiddy/rarity-engine/internal/rarity"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a collection and print its rarity ranking",
	Long: `Score builds the trait index of a collection, applies one rarity
strategy to every asset and prints the ranking, rarest first.

Malformed assets are skipped and reported on stderr unless --fail-fast is
set, in which case the first one aborts the run with a non-zero exit.`,
	Example: `  rarity-engine score --input azuki.yaml
  rarity-engine score --collection azuki --strategy distribution --top 20
  rarity-engine score -c azuki --strategy composite --components inverse_frequency --format json`,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyEngineFlags(cmd, &cfg)

	strategy, _ := cmd.Flags().GetString("strategy")
	format, _ := cmd.Flags().GetString("format")
	top, _ := cmd.Flags().GetInt("top")
	export, _ := cmd.Flags().GetString("export")

	col, err := loadCollection(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if err := engine.Load(col.Assets); err != nil {
		return fmt.Errorf("collection %s: %w", col.Info.Slug, err)
	}

	res, err := engine.ScoreAll(strategy)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, e := range res.Report.Errors {
		fmt.Fprintf(stderr, "skipped %s: %v\n", e.AssetID, e.Err)
	}

	if err := writeRanking(cmd, res, format, top); err != nil {
		return err
	}

	if export != "" {
		if err := ranking.Export(export, res); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Exported %d assets to %s\n", len(res.Ranking), export)
	}
	return nil
}

func writeRanking(cmd *cobra.Command, res *rarity.Result, format string, top int) error {
	w := cmd.OutOrStdout()
	switch format {
	case "table", "":
		ranking.FormatTable(w, res, top)
		return nil
	case "json":
		return ranking.FormatJSON(w, res, top)
	case "yaml":
		return ranking.FormatYAML(w, res, top)
	default:
		return fmt.Errorf("unsupported format %q: use table, json or yaml", format)
	}
}

func init() {
	addSourceFlags(scoreCmd)
	addEngineFlags(scoreCmd)
	scoreCmd.Flags().StringP("strategy", "s", rarity.StrategyNormalized, "rarity strategy (see \"strategies\")")
	scoreCmd.Flags().Int("top", 0, "print only the N rarest assets (0 = all)")
	scoreCmd.Flags().String("format", "table", "output format: table, json or yaml")
	scoreCmd.Flags().String("export", "", "also write the full ranking to a .json, .yaml or .yml file")

	rootCmd.AddCommand(scoreCmd)
}
