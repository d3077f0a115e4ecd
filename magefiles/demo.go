//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Demo namespaces targets that run the CLI against the sample collection.
type Demo mg.Namespace

const sampleFile = "testdata/sample.yaml"

// Import loads the sample collection into the local catalog.
func (Demo) Import() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath(), "catalog", "import", sampleFile)
}

// Score ranks the sample collection with every built-in strategy and
// exports each ranking under output/rankings/.
func (Demo) Score() error {
	mg.Deps(Demo.Import)
	for _, strategy := range []string{"normalized", "weighted", "distribution", "composite", "inverse_frequency"} {
		fmt.Printf("\n== %s ==\n", strategy)
		out := filepath.Join("output", "rankings", strategy+".yaml")
		if err := sh.RunV(binPath(), "score", "--collection", "sample", "--strategy", strategy, "--top", "5", "--export", out); err != nil {
			return err
		}
	}
	return nil
}
