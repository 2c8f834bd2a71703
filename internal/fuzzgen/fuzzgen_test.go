package fuzzgen

import (
	"math/rand/v2"
	"testing"

	"github.com/nihei9/gramminer/internal/grammar"
)

func TestGenerateTreeDeterministic(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"<a>", "<b>"}},
		"<a>":         {{"x"}, {"y"}},
		"<b>":         {{"1"}, {"2"}},
	}
	f := New(g)

	rng1 := rand.New(rand.NewPCG(1, 2))
	rng2 := rand.New(rand.NewPCG(1, 2))

	s1, err := f.Generate(rng1, grammar.Start, 10)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := f.Generate(rng2, grammar.Start, 10)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Fatalf("same seed produced different sentences: %q vs %q", s1, s2)
	}
}

func TestGenerateTreeRecursionBoundedByDepth(t *testing.T) {
	// <a> can recurse forever; past maxDepth only the cheapest
	// (non-recursive) alternative may be chosen.
	g := grammar.Grammar{
		grammar.Start: {{"<a>"}},
		"<a>":         {{"x", "<a>"}, {"x"}},
	}
	f := New(g)
	rng := rand.New(rand.NewPCG(7, 7))

	s, err := f.Generate(rng, grammar.Start, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) == 0 {
		t.Fatal("Generate() produced an empty sentence")
	}
	if len(s) > 50 {
		t.Fatalf("Generate() did not bound recursion by maxDepth, produced %d chars", len(s))
	}
}

func TestFindLocatesPlantedNode(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"a", "<mark>", "b"}},
		"<mark>":      {{"z"}},
	}
	f := New(g)
	rng := rand.New(rand.NewPCG(3, 4))

	tree, err := f.GenerateTree(rng, grammar.Start, 5)
	if err != nil {
		t.Fatal(err)
	}
	targets := tree.Find("<mark>")
	if len(targets) != 1 {
		t.Fatalf("Find() found %d nodes, want 1", len(targets))
	}
	targets[0].Children[0].Token = "Q"
	if got, want := tree.Yield(), "aQb"; got != want {
		t.Fatalf("mutating the found node's child did not change Yield(): got %q, want %q", got, want)
	}
}

func TestPlusTokenExpandsWithinFuzzRange(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"[__ASCII_DIGIT__]+"}},
	}
	f := New(g)
	f.SetFuzzRange(3)
	rng := rand.New(rand.NewPCG(9, 9))

	for i := 0; i < 20; i++ {
		s, err := f.Generate(rng, grammar.Start, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(s) < 1 || len(s) > 3 {
			t.Fatalf("Generate() produced %q with length %d outside [1,3]", s, len(s))
		}
		for _, c := range s {
			if c < '0' || c > '9' {
				t.Fatalf("Generate() produced non-digit byte %q in %q", c, s)
			}
		}
	}
}

func TestCostCycleIsInfinite(t *testing.T) {
	g := grammar.Grammar{
		"<a>": {{"<b>"}},
		"<b>": {{"<a>"}},
	}
	f := New(g)
	if c := f.cost["<a>"][0]; c < infCost {
		t.Fatalf("expansion cost for a pure cycle should be inf-capped, got %d", c)
	}
}

func TestCheapGrammarPicksMinimumCostRule(t *testing.T) {
	g := grammar.Grammar{
		"<a>": {{"x"}, {"<a>", "y"}},
	}
	f := New(g)
	cheap := f.cheapGrammar()
	rules := cheap["<a>"]
	if len(rules) != 1 || len(rules[0]) != 1 || rules[0][0] != "x" {
		t.Fatalf("cheapGrammar() should keep only the non-recursive rule, got %v", rules)
	}
}
