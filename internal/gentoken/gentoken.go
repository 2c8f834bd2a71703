// Package gentoken implements the token generalizer (component H): it
// widens single-character terminals in the post-assembly grammar into
// ASCII character classes, and classes into one-or-more repetitions,
// wherever the oracle still accepts the result.
//
// Grounded on spec.md §4.8 and original_source/src/cmimid/fuzz.py's
// ASCII_MAP / CHARACTER_PARENT_MAP (carried over into internal/asciiclass).
package gentoken

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/nihei9/gramminer/internal/asciiclass"
	"github.com/nihei9/gramminer/internal/fuzzgen"
	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/oracle"
)

const generalizeSymbol = "<__GENERALIZE__>"

// Config bounds the carrier search and the fuzzer depth used while
// widening a single grammar position.
type Config struct {
	// MaxChecks is the number of carrier-generation attempts before a
	// position is blacklisted (left literal).
	MaxChecks int
	// MaxDepth is the fuzzer recursion depth used to generate carriers.
	MaxDepth int
	// FuzzRange bounds `X+` carrier expansions; 0 keeps fuzzgen's default.
	FuzzRange int
}

// Run widens every single-character terminal of g, returning a new
// grammar. rng drives both carrier generation and the random samples
// used by the length-widening probes, so the result is reproducible for
// a given seed.
func Run(ctx context.Context, g grammar.Grammar, checker *oracle.CachedOracle, rng *rand.Rand, cfg Config) (grammar.Grammar, error) {
	out := g.Clone()

	for _, name := range out.NonTerminals() {
		for ruleIdx := range out[name] {
			rule := out[name][ruleIdx]
			for pos := 0; pos < len(rule); pos++ {
				tok := rule[pos]
				if len(tok) != 1 {
					continue
				}
				c := tok[0]

				if pos > 0 {
					if prevClass, ok := widenedClassOf(rule[pos-1]); ok && classContains(prevClass, c) {
						rule[pos] = rule[pos-1]
						continue
					}
				}

				widened, err := widenPosition(ctx, out, name, ruleIdx, pos, c, checker, rng, cfg)
				if err != nil {
					return nil, err
				}
				rule[pos] = widened
			}
			out[name][ruleIdx] = dedupAdjacentPlus(rule)
		}
	}

	return out, nil
}

// widenPosition runs the five-step per-token widening procedure of
// §4.8 for the single-character terminal c at (name, ruleIdx, pos).
func widenPosition(ctx context.Context, g grammar.Grammar, name string, ruleIdx, pos int, c byte, checker *oracle.CachedOracle, rng *rand.Rand, cfg Config) (string, error) {
	testGrammar := g.Clone()
	rule := append(grammar.Rule(nil), testGrammar[name][ruleIdx]...)
	rule[pos] = generalizeSymbol
	testGrammar[name][ruleIdx] = rule
	testGrammar.AddRule(generalizeSymbol, grammar.Rule{string(c)})

	newStart, focused, err := fuzzgen.Focus(testGrammar, grammar.Start, generalizeSymbol)
	if err != nil {
		// Unreachable from the start symbol: nothing to widen against.
		return string(c), nil
	}
	f := fuzzgen.New(focused)
	f.SetFuzzRange(cfg.FuzzRange)

	var carrier *fuzzgen.Tree
	for attempt := 0; attempt < cfg.MaxChecks; attempt++ {
		t, err := f.GenerateTree(rng, newStart, cfg.MaxDepth)
		if err != nil {
			break
		}
		accepted, stop, err := checkAccepts(ctx, checker, []byte(t.Yield()))
		if err != nil {
			return "", err
		}
		if stop {
			break
		}
		if accepted {
			carrier = t
			break
		}
	}
	if carrier == nil {
		return string(c), nil
	}

	targets := carrier.Find(generalizeSymbol)
	if len(targets) == 0 {
		return string(c), nil
	}
	test := func(text string) (accepted, stop bool, err error) {
		for _, t := range targets {
			t.Children[0].Token = text
		}
		return checkAccepts(ctx, checker, []byte(carrier.Yield()))
	}

	kind, ok := asciiclass.InitialClass(c)
	if !ok {
		return string(c), nil
	}

climb:
	for {
		parent, hasParent := asciiclass.Parent(kind)
		if !hasParent {
			break
		}
		for _, m := range asciiclass.Members(parent) {
			accepted, stop, err := test(string(m))
			if err != nil {
				return "", err
			}
			if stop {
				break climb
			}
			if !accepted {
				break climb
			}
		}
		kind = parent
	}

	plus, err := widenLength(test, kind, rng)
	if err != nil {
		return "", err
	}
	if plus {
		return asciiclass.Token(kind) + "+", nil
	}
	return asciiclass.Token(kind), nil
}

// widenLength implements step 4: kind qualifies for one-or-more only if
// both a 2-character and a 4-character random sample from its class are
// accepted.
func widenLength(test func(string) (bool, bool, error), kind string, rng *rand.Rand) (bool, error) {
	for _, n := range []int{2, 4} {
		members := asciiclass.Members(kind)
		if len(members) == 0 {
			return false, nil
		}
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = members[rng.IntN(len(members))]
		}
		accepted, stop, err := test(string(buf))
		if err != nil {
			return false, err
		}
		if stop || !accepted {
			return false, nil
		}
	}
	return true, nil
}

func checkAccepts(ctx context.Context, checker *oracle.CachedOracle, input []byte) (accepted, budgetExhausted bool, err error) {
	ok, err := checker.Accepts(ctx, input)
	if err != nil {
		if errors.Is(err, oracle.ErrBudgetExhausted) {
			return false, true, nil
		}
		return false, false, err
	}
	return ok, false, nil
}

// widenedClassOf recognizes an already-widened `[__ASCII_x__]+` token
// and returns its bare class name.
func widenedClassOf(tok string) (string, bool) {
	if len(tok) < 2 || tok[len(tok)-1] != '+' {
		return "", false
	}
	base := tok[:len(tok)-1]
	for _, name := range asciiclass.Names() {
		if base == asciiclass.Token(name) {
			return name, true
		}
	}
	return "", false
}

func classContains(className string, c byte) bool {
	for _, m := range asciiclass.Members(className) {
		if m == c {
			return true
		}
	}
	return false
}

// dedupAdjacentPlus implements the post-pass half of coalescing: run a
// consecutive duplicate `X+` token down to one occurrence.
func dedupAdjacentPlus(rule grammar.Rule) grammar.Rule {
	out := make(grammar.Rule, 0, len(rule))
	for _, tok := range rule {
		if len(out) > 0 && out[len(out)-1] == tok && len(tok) > 1 && tok[len(tok)-1] == '+' {
			continue
		}
		out = append(out, tok)
	}
	return out
}
