package fuzzgen

import (
	"math/rand/v2"
	"testing"

	"github.com/nihei9/gramminer/internal/grammar"
)

func TestFocusPrunesOffPathAlternatives(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"<helper>"}},
		"<helper>":    {{"<target>"}, {"off-path"}},
		"<target>":    {{"z"}},
	}

	newStart, focused, err := Focus(g, grammar.Start, "<target>")
	if err != nil {
		t.Fatal(err)
	}

	f := New(focused)
	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < 20; i++ {
		s, err := f.Generate(rng, newStart, 10)
		if err != nil {
			t.Fatal(err)
		}
		if s != "z" {
			t.Fatalf("Focus() should force every expansion to reach <target>, got %q", s)
		}
	}
}

func TestFocusLeavesSharedHelperUntouchedOffPath(t *testing.T) {
	// <shared> is reachable both via the path to <target> and via a
	// sibling that never reaches it; the off-path reference must keep
	// using the original (unconstrained) <shared>, not the shadow.
	g := grammar.Grammar{
		grammar.Start: {{"<path>"}, {"<other>"}},
		"<path>":      {{"<shared>", "<target>"}},
		"<other>":     {{"<shared>"}},
		"<shared>":    {{"a"}, {"b"}},
		"<target>":    {{"z"}},
	}

	_, focused, err := Focus(g, grammar.Start, "<target>")
	if err != nil {
		t.Fatal(err)
	}

	if len(focused["<shared>"]) != 2 {
		t.Fatalf("Focus() must not mutate the original <shared> definition, got %v", focused["<shared>"])
	}
	if len(focused["<other>"]) != 1 || focused["<other>"][0][0] != "<shared>" {
		t.Fatalf("Focus() must leave <other>'s reference to <shared> untouched, got %v", focused["<other>"])
	}
}

func TestFocusSameStartAndTarget(t *testing.T) {
	g := grammar.Grammar{"<a>": {{"x"}}}
	newStart, out, err := Focus(g, "<a>", "<a>")
	if err != nil {
		t.Fatal(err)
	}
	if newStart != "<a>" {
		t.Fatalf("Focus(start, start) should return start unchanged, got %q", newStart)
	}
	if len(out) != len(g) {
		t.Fatalf("Focus(start, start) should return the grammar unchanged")
	}
}

func TestFocusUnreachableTarget(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"a"}},
		"<target>":    {{"z"}},
	}
	_, _, err := Focus(g, grammar.Start, "<target>")
	if err == nil {
		t.Fatal("Focus() should error when target is unreachable from start")
	}
}
