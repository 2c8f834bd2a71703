package fuzzgen

import (
	"testing"

	"github.com/nihei9/gramminer/internal/grammar"
)

// FuzzExpansionCost exercises the cost table against arbitrarily shaped
// (and possibly cyclic) small grammars: New must always terminate and
// every recorded cost must be non-negative, whether or not the grammar
// has a production cycle.
func FuzzExpansionCost(f *testing.F) {
	f.Add(0, 0, false)
	f.Add(1, 1, true)
	f.Add(3, 2, true)
	f.Add(5, 0, false)

	f.Fuzz(func(t *testing.T, numSymbols, numRefs int, selfCycle bool) {
		if numSymbols < 0 {
			numSymbols = -numSymbols
		}
		if numSymbols > 20 {
			numSymbols = numSymbols % 20
		}
		if numRefs < 0 {
			numRefs = -numRefs
		}
		if numRefs > 5 {
			numRefs = numRefs%5 + 1
		}

		g := grammar.Grammar{}
		for i := 0; i < numSymbols; i++ {
			name := symbolName(i)
			rule := grammar.Rule{"x"}
			for j := 0; j < numRefs; j++ {
				target := (i + j + 1) % numSymbols
				rule = append(rule, symbolName(target))
			}
			if selfCycle && numSymbols > 0 {
				rule = append(rule, symbolName(i))
			}
			g[name] = append(g[name], rule)
		}
		if numSymbols == 0 {
			return
		}

		f2 := New(g)
		for name, costs := range f2.cost {
			for _, c := range costs {
				if c < 0 {
					t.Fatalf("negative cost %d for %s", c, name)
				}
			}
		}
	})
}

func symbolName(i int) string {
	return "<s" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + ">"
}
