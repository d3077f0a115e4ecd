// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Print trait index statistics for a collection",
	Long: `Index builds the trait index of a collection and prints the asset
total, the largest trait count and, per trait type, how many assets carry
it and how many distinct values it has. Use --values to list the count of
every value.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	showValues, _ := cmd.Flags().GetBool("values")

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
	idx := engine.Index()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Collection: %s\n", col.Info.Slug)
	fmt.Fprintf(w, "Assets:     %d\n", idx.TotalAssets())
	fmt.Fprintf(w, "Max count:  %d\n\n", idx.MaxCount())

	fmt.Fprintf(w, "%-30s  %-8s  %s\n", "Trait type", "Assets", "Distinct values")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, typ := range idx.Types() {
		fmt.Fprintf(w, "%-30s  %-8d  %d\n", typ, idx.TypeCount(typ), idx.DistinctValues(typ))
		if !showValues {
			continue
		}
		for _, v := range idx.Values(typ) {
			fmt.Fprintf(w, "  %-28s  %d\n", v, idx.ValueCount(typ, v))
		}
	}
	return nil
}

func init() {
	addSourceFlags(indexCmd)
	indexCmd.Flags().Bool("values", false, "list every value with its count")

	rootCmd.AddCommand(indexCmd)
}
