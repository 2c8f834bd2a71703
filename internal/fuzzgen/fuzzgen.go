// Package fuzzgen implements the bounded, cost-guided fuzzer (component
// J): a context-free random sentence generator over an inferred grammar,
// used standalone and as the carrier generator inside the token
// generalizer (H).
//
// Grounded on original_source/src/cmimid/fuzz.py's LimitFuzzer.
package fuzzgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/nihei9/gramminer/internal/asciiclass"
	"github.com/nihei9/gramminer/internal/grammar"
)

// DefaultFuzzRange bounds how many members a widened `X+` token expands
// to when a Fuzzer isn't given an explicit override: a random count in
// [1, DefaultFuzzRange].
const DefaultFuzzRange = 10

const infCost = 1 << 30

// Fuzzer generates sentences from a fixed grammar using a precomputed,
// per-symbol expansion cost table.
type Fuzzer struct {
	grammar   grammar.Grammar
	fuzzRange int
	// cost[name] holds one entry per rule in grammar[name], in the same
	// order, giving that rule's expansion cost.
	cost map[string][]int
}

// New precomputes the cost table for g. The table is reused across every
// call to Generate.
func New(g grammar.Grammar) *Fuzzer {
	f := &Fuzzer{grammar: g, fuzzRange: DefaultFuzzRange, cost: map[string][]int{}}
	keyCost := map[string]int{}
	for name, rules := range g {
		costs := make([]int, len(rules))
		for i, r := range rules {
			costs[i] = expansionCost(g, r, map[string]bool{}, keyCost)
		}
		f.cost[name] = costs
	}
	return f
}

// SetFuzzRange overrides the `X+` expansion count bound, e.g. from the
// configuration document's fuzz_range.
func (f *Fuzzer) SetFuzzRange(n int) {
	if n > 0 {
		f.fuzzRange = n
	}
}

// symbolCost is the minimum expansion cost over symbol's own rules, or 0
// if it has none (a terminal-only non-terminal never reached, or a
// symbol absent from the grammar). seen guards against cycles: a symbol
// reappearing in its own expansion chain has infinite cost.
func symbolCost(g grammar.Grammar, symbol string, seen map[string]bool, keyCost map[string]int) int {
	if v, ok := keyCost[symbol]; ok {
		return v
	}
	if seen[symbol] {
		keyCost[symbol] = infCost
		return infCost
	}
	rules, ok := g[symbol]
	if !ok || len(rules) == 0 {
		keyCost[symbol] = 0
		return 0
	}
	nextSeen := make(map[string]bool, len(seen)+1)
	for k := range seen {
		nextSeen[k] = true
	}
	nextSeen[symbol] = true

	best := infCost
	for _, r := range rules {
		c := expansionCost(g, r, nextSeen, keyCost)
		if c < best {
			best = c
		}
	}
	keyCost[symbol] = best
	return best
}

// expansionCost is 1 plus the maximum cost of rule's non-terminal
// tokens (0 if it has none, i.e. an all-terminal or empty rule).
func expansionCost(g grammar.Grammar, rule grammar.Rule, seen map[string]bool, keyCost map[string]int) int {
	best := 0
	for _, tok := range rule {
		if _, ok := g[tok]; !ok {
			continue
		}
		c := symbolCost(g, tok, seen, keyCost)
		if c > best {
			best = c
		}
	}
	return best + 1
}

// Tree is an expansion tree produced by GenerateTree: a leaf carries its
// final literal text in Token with no children; an internal node's Token
// is the non-terminal it expanded and Children its rule's expansion, in
// order.
type Tree struct {
	Token    string
	Children []*Tree
	resolved bool
}

// Yield concatenates t's leaves depth-first, in order: the sentence t
// represents.
func (t *Tree) Yield() string {
	var b []byte
	b = yield(t, b)
	return string(b)
}

// Find returns every internal node of t whose Token equals name, in
// depth-first order. Used to locate a temporary non-terminal (e.g.
// `<__GENERALIZE__>`) planted at a known grammar position, so its single
// child's literal text can be substituted for a re-test without
// regenerating the surrounding carrier.
func (t *Tree) Find(name string) []*Tree {
	var out []*Tree
	var walk func(*Tree)
	walk = func(n *Tree) {
		if n.Token == name && len(n.Children) > 0 {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t)
	return out
}

// Generate expands key into a sentence; see GenerateTree.
func (f *Fuzzer) Generate(rng *rand.Rand, key string, maxDepth int) (string, error) {
	t, err := f.GenerateTree(rng, key, maxDepth)
	if err != nil {
		return "", err
	}
	return t.Yield(), nil
}

// GenerateTree expands key into an expansion tree, breadth-first: while
// the current depth is within maxDepth every rule is a candidate; beyond
// it, only rules tied for minimum expansion cost are. rng makes
// generation reproducible for a given seed.
func (f *Fuzzer) GenerateTree(rng *rand.Rand, key string, maxDepth int) (*Tree, error) {
	cheap := f.cheapGrammar()

	root := &Tree{Token: key}
	type item struct {
		depth int
		node  *Tree
	}
	queue := []item{{0, root}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.node.resolved {
			continue
		}

		g := f.grammar
		if it.depth > maxDepth {
			g = cheap
		}
		rules, ok := g[it.node.Token]
		if !ok || len(rules) == 0 {
			return nil, fmt.Errorf("fuzzgen: no rules for %q", it.node.Token)
		}
		rule := rules[rng.IntN(len(rules))]

		children := make([]*Tree, len(rule))
		for i, tok := range rule {
			children[i] = resolveToken(rng, tok, f.fuzzRange)
			queue = append(queue, item{it.depth + 1, children[i]})
		}
		it.node.Children = children
		it.node.resolved = true
	}

	return root, nil
}

// resolveToken handles a single rule token: an ASCII class (optionally
// `+`-widened) resolves immediately to literal text; a non-terminal is
// left pending for the queue; anything else is a literal terminal.
func resolveToken(rng *rand.Rand, tok string, fuzzRange int) *Tree {
	base, plus := splitPlus(tok)
	if className, ok := classNameFromToken(base); ok {
		members := asciiclass.Members(className)
		if plus {
			n := rng.IntN(fuzzRange) + 1
			buf := make([]byte, n)
			for i := range buf {
				buf[i] = members[rng.IntN(len(members))]
			}
			return &Tree{Token: string(buf), resolved: true}
		}
		return &Tree{Token: string(members[rng.IntN(len(members))]), resolved: true}
	}
	if grammar.IsNonTerminal(tok) {
		return &Tree{Token: tok}
	}
	return &Tree{Token: tok, resolved: true}
}

func splitPlus(tok string) (base string, plus bool) {
	if len(tok) > 1 && tok[len(tok)-1] == '+' {
		return tok[:len(tok)-1], true
	}
	return tok, false
}

func classNameFromToken(tok string) (string, bool) {
	for _, name := range asciiclass.Names() {
		if tok == asciiclass.Token(name) {
			return name, true
		}
	}
	return "", false
}

// yield concatenates a resolved tree's leaves, depth-first, in order.
func yield(n *Tree, b []byte) []byte {
	if len(n.Children) == 0 {
		return append(b, n.Token...)
	}
	for _, c := range n.Children {
		b = yield(c, b)
	}
	return b
}

// cheapGrammar restricts every non-terminal to its minimum-cost rules,
// used once the expansion depth budget is spent.
func (f *Fuzzer) cheapGrammar() grammar.Grammar {
	out := make(grammar.Grammar, len(f.grammar))
	for name, rules := range f.grammar {
		costs := f.cost[name]
		min := infCost
		for _, c := range costs {
			if c < min {
				min = c
			}
		}
		var kept []grammar.Rule
		for i, r := range rules {
			if costs[i] == min {
				kept = append(kept, r)
			}
		}
		out[name] = kept
	}
	return out
}
