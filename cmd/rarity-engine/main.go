// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rarity-engine CLI.
// It loads asset snapshots from files or the local catalog, builds a trait
// index and ranks assets with a named rarity strategy.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the rarity-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "rarity-engine",
	Short: "Score and rank collectibles by trait rarity",
	Long: `rarity-engine scores every asset of a collection with a named rarity
strategy and prints the ranking, rarest first.

Collections are read from YAML or JSON snapshot files, or from the local
catalog after "catalog import". Strategies are listed by "strategies";
weights and defaults come from rarity-engine.yaml.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./rarity-engine.yaml or ~/.config/rarity-engine/rarity-engine.yaml)")
	rootCmd.PersistentFlags().String("catalog-dir", "", "directory holding catalog.db (default: catalog)")
	_ = viper.BindPFlag("catalog.dir", rootCmd.PersistentFlags().Lookup("catalog-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rarity-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rarity-engine"))
		}
	}

	viper.SetEnvPrefix("RARITY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
