package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nihei9/gramminer/internal/config"
	"github.com/nihei9/gramminer/internal/pipeline"
)

func init() {
	cmd := &cobra.Command{
		Use:     "trace",
		Short:   "Build derivation trees from traced runs, without querying the oracle",
		Example: `  gramminer trace gramminer.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTrace,
	}
	rootCmd.AddCommand(cmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	p := &pipeline.Pipeline{Cfg: cfg, Logger: logger}
	traces, err := p.LoadTraces(cfg.SeedDirectory, cfg.TraceDirectory)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		return fmt.Errorf("gramminer trace: no seed had a matching trace file")
	}
	if err := pipeline.WriteTraces(filepath.Join(cfg.OutputDirectory, "trace.json"), traces); err != nil {
		return err
	}

	seeds := p.BuildTrees(traces)
	if len(seeds) == 0 {
		return fmt.Errorf("gramminer trace: no trace yielded a usable derivation tree")
	}
	return pipeline.WriteSeedTrees(filepath.Join(cfg.OutputDirectory, "trees.json"), seeds)
}
