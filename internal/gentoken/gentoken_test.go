package gentoken

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/nihei9/gramminer/internal/asciiclass"
	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/oracle"
)

// predicateOracle accepts an input iff every byte satisfies accept.
type predicateOracle struct {
	accept func(byte) bool
}

func (o *predicateOracle) Accepts(ctx context.Context, input []byte) (bool, error) {
	for _, b := range input {
		if !o.accept(b) {
			return false, nil
		}
	}
	return true, nil
}

func (o *predicateOracle) Close() error { return nil }

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func TestRunWidensToLetterClass(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"x"}},
	}
	checker := oracle.NewCached(&predicateOracle{accept: isLetter}, 0)
	rng := rand.New(rand.NewPCG(1, 1))

	out, err := Run(context.Background(), g, checker, rng, Config{MaxChecks: 5, MaxDepth: 5, FuzzRange: 4})
	if err != nil {
		t.Fatal(err)
	}

	want := asciiclass.Token(asciiclass.Letter) + "+"
	got := out[grammar.Start][0][0]
	if got != want {
		t.Fatalf("Run() widened %q, want %q", got, want)
	}
}

type rejectAllOracle struct{}

func (rejectAllOracle) Accepts(ctx context.Context, input []byte) (bool, error) { return false, nil }
func (rejectAllOracle) Close() error                                           { return nil }

func TestRunBlacklistsWhenNoCarrierAccepted(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"x"}},
	}
	checker := oracle.NewCached(rejectAllOracle{}, 0)
	rng := rand.New(rand.NewPCG(1, 1))

	out, err := Run(context.Background(), g, checker, rng, Config{MaxChecks: 5, MaxDepth: 5, FuzzRange: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := out[grammar.Start][0][0]; got != "x" {
		t.Fatalf("Run() should leave the terminal literal when no carrier is ever accepted, got %q", got)
	}
}

func TestRunSkipsMultiCharTerminals(t *testing.T) {
	g := grammar.Grammar{
		grammar.Start: {{"<a>"}},
		"<a>":         {{"ab"}},
	}
	checker := oracle.NewCached(&predicateOracle{accept: isLetter}, 0)
	rng := rand.New(rand.NewPCG(1, 1))

	out, err := Run(context.Background(), g, checker, rng, Config{MaxChecks: 5, MaxDepth: 5, FuzzRange: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := out["<a>"][0][0]; got != "ab" {
		t.Fatalf("Run() must not touch a multi-character terminal, got %q", got)
	}
}

func TestDedupAdjacentPlus(t *testing.T) {
	plus := asciiclass.Token(asciiclass.Digit) + "+"
	rule := grammar.Rule{plus, plus, "x", plus}
	got := dedupAdjacentPlus(rule)
	want := grammar.Rule{plus, "x", plus}
	if len(got) != len(want) {
		t.Fatalf("dedupAdjacentPlus() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupAdjacentPlus() = %v, want %v", got, want)
		}
	}
}
