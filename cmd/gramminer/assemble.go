package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/pipeline"
)

func init() {
	cmd := &cobra.Command{
		Use:     "assemble",
		Short:   "Assemble a grammar from an already-built tree set, without querying the oracle",
		Example: `  gramminer assemble trees.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runAssemble,
	}
	rootCmd.AddCommand(cmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	seeds, err := pipeline.ReadTrees(args[0])
	if err != nil {
		return err
	}

	g := pipeline.AssembleMined(seeds)

	out := filepath.Join(filepath.Dir(args[0]), "mined_g.json")
	return pipeline.WriteGrammar(out, grammar.Start, g, "gramminer assemble "+args[0], 0)
}
