package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of rarity-engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rarity-engine %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
