// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rarity-engine/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local collection catalog (import, list, delete, export)",
	Long: `Catalog keeps asset snapshots in a local SQLite database so a
collection can be scored by slug with "score --collection". It stores
assets only; scores are recomputed on every run.`,
}

// --- import subcommand ---

var catalogImportCmd = &cobra.Command{
	Use:   "import PATH...",
	Short: "Import snapshot files or directories into the catalog",
	Long: `Import reads .yaml, .yml and .json snapshot files into the catalog.
A directory imports every supported file in it. Files unchanged since
their last import are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogImport,
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	var summary catalog.ImportSummary
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		var one catalog.ImportSummary
		if info.IsDir() {
			one, err = store.ImportDir(ctx, path, w)
		} else {
			one, err = store.Import(ctx, path, w)
		}
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}
		summary.Imported += one.Imported
		summary.Updated += one.Updated
		summary.Skipped += one.Skipped
		summary.Failed += one.Failed
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to import", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported collections",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	cols, err := store.Collections(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cols)
	}

	if len(cols) == 0 {
		fmt.Fprintln(w, "No collections imported.")
		return nil
	}

	fmt.Fprintf(w, "%-24s  %-30s  %-8s  %s\n", "Slug", "Name", "Assets", "Imported")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, c := range cols {
		fmt.Fprintf(w, "%-24s  %-30s  %-8d  %s\n", c.Slug, c.Name, c.Assets, c.ImportedAt)
	}
	fmt.Fprintf(w, "\n%d collections\n", len(cols))
	return nil
}

// --- delete subcommand ---

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete SLUG...",
	Short: "Remove collections from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogDelete,
}

func runCatalogDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, slug := range args {
		if err := store.Delete(cmd.Context(), slug); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", slug)
	}
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export SLUG FILE",
	Short: "Write a catalog collection back to a snapshot file",
	Long: `Export writes the stored assets of a collection to a .yaml, .yml or
.json snapshot file that "catalog import" and "score --input" accept.`,
	Args: cobra.ExactArgs(2),
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	col, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := catalog.WriteFile(args[1], col); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%d assets) to %s\n", col.Info.Slug, len(col.Assets), args[1])
	return nil
}

func init() {
	catalogListCmd.Flags().Bool("json", false, "output collections as JSON")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
