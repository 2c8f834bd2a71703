// Package pipeline orchestrates the mining stages (C → D → F → G → I →
// H → I) against one run's configuration, wiring the oracle, RNG and
// JSON artifact writers every stage needs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/nihei9/gramminer/internal/cfg"
	"github.com/nihei9/gramminer/internal/config"
	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/genloop"
	"github.com/nihei9/gramminer/internal/genmethod"
	"github.com/nihei9/gramminer/internal/gentoken"
	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/oracle"
	"github.com/nihei9/gramminer/internal/rngutil"
	"github.com/nihei9/gramminer/internal/tracedata"
	"github.com/nihei9/gramminer/internal/treebuild"
	"github.com/nihei9/gramminer/internal/treeminer"
)

// DefaultFuzzMaxDepth mirrors LimitFuzzer.fuzz's own default recursion
// depth in the original implementation.
const DefaultFuzzMaxDepth = 10

// Pipeline holds the run-wide collaborators every stage shares: the
// configuration, the cached oracle, the deterministic RNG and a logger.
type Pipeline struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Oracle *oracle.CachedOracle
	RNG    *rand.Rand
}

// New wires the oracle backend named by cfg.Oracle.Backend and seeds the
// pipeline's RNG from cfg.RNGSeed.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var backend oracle.Oracle
	switch cfg.Oracle.Backend {
	case "", "subprocess":
		sp, err := oracle.NewSubprocess(oracle.SubprocessConfig{
			Command:        cfg.Oracle.Command,
			RequestTimeout: cfg.Oracle.RequestTimeout,
			MaxRestarts:    cfg.Oracle.MaxRestarts,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		backend = sp
	default:
		return nil, fmt.Errorf("pipeline: unknown oracle backend %q", cfg.Oracle.Backend)
	}

	return &Pipeline{
		Cfg:    cfg,
		Logger: logger,
		Oracle: oracle.NewCached(backend, cfg.MaxChecks),
		RNG:    rngutil.New(cfg.RNGSeed),
	}, nil
}

// Close tears down the oracle backend.
func (p *Pipeline) Close() error {
	return p.Oracle.Close()
}

// BuildTrees runs the tree builder and tree miner (C + D) over every
// trace, skipping — with a warning, per §7's trace-shape-violation
// handling — any trace the builder or miner rejects.
func (p *Pipeline) BuildTrees(traces []*tracedata.Trace) []corpus.Seed {
	steps := make([][]cfg.TraceStep, len(traces))
	for i, t := range traces {
		steps[i] = toTraceSteps(t.Records)
	}
	built := cfg.Build(steps)

	builder := treebuild.New(built)
	builder.OriginalMimid = p.Cfg.OriginalMimid
	builder.DelayWatchpoints = p.Cfg.DelayedWatchpoints

	seeds := make([]corpus.Seed, 0, len(traces))
	for _, t := range traces {
		res, err := builder.Build(t)
		if err != nil {
			p.Logger.Warn("skipping trace with shape violation", "arg", t.Arg, "error", err)
			continue
		}
		root, err := treeminer.Mine(res)
		if err != nil {
			p.Logger.Warn("skipping trace the tree miner rejected", "arg", t.Arg, "error", err)
			continue
		}
		seeds = append(seeds, corpus.Seed{Root: root, Arg: res.Arg})
	}
	return seeds
}

func toTraceSteps(records []tracedata.Record) []cfg.TraceStep {
	out := make([]cfg.TraceStep, len(records))
	for i, r := range records {
		out[i] = cfg.TraceStep{Address: r.Address, FunctionName: r.FunctionName, Depth: r.Depth(), Stack: r.Stack}
	}
	return out
}

// Generalize runs the method and loop generalizers (F + G) over seeds in
// place.
func (p *Pipeline) Generalize(ctx context.Context, seeds []corpus.Seed) error {
	if err := genmethod.Run(ctx, seeds, p.Oracle, p.RNG, p.Cfg.MaxProcSamples); err != nil {
		return fmt.Errorf("pipeline: method generalizer: %w", err)
	}
	if err := genloop.Run(ctx, seeds, p.Oracle, p.RNG, p.Cfg.MaxProcSamples); err != nil {
		return fmt.Errorf("pipeline: loop generalizer: %w", err)
	}
	return nil
}

// AssemblePre runs the grammar assembler's (I) passes 1 through 7: every
// pass up to and including the post-PTA-collapse garbage collection,
// stopping short of token generalization (H), which §4.9 step 8 runs
// between this and AssemblePost.
func AssemblePre(seeds []corpus.Seed) grammar.Grammar {
	g := grammar.FromSeeds(seeds)
	g = grammar.GC(g)
	g = grammar.IntroduceEpsilon(g)
	g = grammar.EliminateNonProductive(g)
	g = grammar.GC(g)
	g = grammar.CollapsePTA(g)
	g = grammar.NormalizeNames(g)
	g = grammar.GC(g)
	return g
}

// AssemblePost runs the assembler's remaining passes 9 and 10: compaction
// and the parsing-grammar enhancer.
func AssemblePost(g grammar.Grammar) grammar.Grammar {
	g = grammar.Compact(g)
	g = grammar.Enhance(g)
	return g
}

// AssembleMined runs every assembler pass that needs no oracle access:
// passes 1-7 plus compaction (9), skipping token generalization (H, which
// needs the oracle) and the parsing enhancer (10, which only makes sense
// downstream of H). This is the `gramminer assemble` command's output,
// grounded on an already-built tree set with no SUT to query.
func AssembleMined(seeds []corpus.Seed) grammar.Grammar {
	g := AssemblePre(seeds)
	return grammar.Compact(g)
}

// Mine runs the full pipeline end to end: C → D → F → G → I(1-7) →
// H → I(9-10), returning the token-generalized, enhanced parsing
// grammar.
func (p *Pipeline) Mine(ctx context.Context, traces []*tracedata.Trace) (grammar.Grammar, error) {
	seeds := p.BuildTrees(traces)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("pipeline: no trace yielded a usable derivation tree")
	}

	if err := p.Generalize(ctx, seeds); err != nil {
		return nil, err
	}

	g := AssemblePre(seeds)

	g, err := gentoken.Run(ctx, g, p.Oracle, p.RNG, gentoken.Config{
		MaxChecks: p.Cfg.MaxChecks,
		MaxDepth:  DefaultFuzzMaxDepth,
		FuzzRange: p.Cfg.FuzzRange,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: token generalizer: %w", err)
	}

	return AssemblePost(g), nil
}
