package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nihei9/gramminer/internal/config"
	"github.com/nihei9/gramminer/internal/genloop"
	"github.com/nihei9/gramminer/internal/genmethod"
	"github.com/nihei9/gramminer/internal/gentoken"
	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/pipeline"
)

func init() {
	cmd := &cobra.Command{
		Use:     "mine",
		Short:   "Run the full pipeline end to end and write a parsing grammar",
		Example: `  gramminer mine gramminer.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runMine,
	}
	rootCmd.AddCommand(cmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	traces, err := p.LoadTraces(cfg.SeedDirectory, cfg.TraceDirectory)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		return fmt.Errorf("gramminer mine: no seed had a matching trace file")
	}
	if err := pipeline.WriteTraces(filepath.Join(cfg.OutputDirectory, "trace.json"), traces); err != nil {
		return err
	}

	ctx := context.Background()

	seeds := p.BuildTrees(traces)
	if len(seeds) == 0 {
		return fmt.Errorf("gramminer mine: no trace yielded a usable derivation tree")
	}
	if err := pipeline.WriteSeedTrees(filepath.Join(cfg.OutputDirectory, "trees.json"), seeds); err != nil {
		return err
	}

	if err := genmethod.Run(ctx, seeds, p.Oracle, p.RNG, cfg.MaxProcSamples); err != nil {
		return fmt.Errorf("gramminer mine: method generalizer: %w", err)
	}
	if err := pipeline.WriteSeedTrees(filepath.Join(cfg.OutputDirectory, "method_trees.json"), seeds); err != nil {
		return err
	}

	if err := genloop.Run(ctx, seeds, p.Oracle, p.RNG, cfg.MaxProcSamples); err != nil {
		return fmt.Errorf("gramminer mine: loop generalizer: %w", err)
	}
	if err := pipeline.WriteSeedTrees(filepath.Join(cfg.OutputDirectory, "loop_trees.json"), seeds); err != nil {
		return err
	}

	mined := pipeline.AssembleMined(seeds)
	if err := pipeline.WriteGrammar(filepath.Join(cfg.OutputDirectory, "mined_g.json"), grammar.Start, mined, "gramminer mine "+args[0], p.Oracle.NumTested()); err != nil {
		return err
	}

	g := pipeline.AssemblePre(seeds)
	g, err = gentoken.Run(ctx, g, p.Oracle, p.RNG, gentoken.Config{
		MaxChecks: cfg.MaxChecks,
		MaxDepth:  pipeline.DefaultFuzzMaxDepth,
		FuzzRange: cfg.FuzzRange,
	})
	if err != nil {
		return fmt.Errorf("gramminer mine: token generalizer: %w", err)
	}
	parsing := pipeline.AssemblePost(g)

	return pipeline.WriteGrammar(filepath.Join(cfg.OutputDirectory, "parsing_g.json"), grammar.Start, parsing, "gramminer mine "+args[0], p.Oracle.NumTested())
}
