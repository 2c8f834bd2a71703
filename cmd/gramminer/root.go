package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gramminer",
	Short: "Mine a context-free grammar from dynamically traced program runs",
	Long: `gramminer turns traced runs of a program under a seed corpus into
a context-free grammar that describes the inputs it accepts:
- Builds derivation trees from per-method, per-scope execution traces.
- Generalizes recursive methods and loops into repeated productions.
- Assembles and widens the trees into a grammar, querying the program
  as an acceptance oracle along the way.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}
