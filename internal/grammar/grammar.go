// Package grammar implements the grammar assembler (component I): the
// tree→production pass and the ordered cleanup pipeline of §4.9, plus the
// parsing-grammar enhancer (component K) as its final, separately
// invoked step.
package grammar

import (
	"sort"
	"strings"

	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
)

// Start is the grammar's start symbol, the pseudo-name the tree miner
// roots every derivation tree at.
const Start = dtree.Start

// Rule is one production's right-hand side: a sequence of tokens, each
// either a non-terminal (bracketed, e.g. "<foo_3>") or a terminal (a
// single character, or an "[__ASCII_x__]" class name, optionally suffixed
// "+").
type Rule []string

// Grammar maps a non-terminal name to its deduplicated alternative list,
// in first-seen order.
type Grammar map[string][]Rule

// IsNonTerminal reports whether tok is a bracketed non-terminal reference
// rather than a literal terminal.
func IsNonTerminal(tok string) bool {
	return len(tok) >= 2 && tok[0] == '<' && tok[len(tok)-1] == '>'
}

// AddRule appends rule to name's alternative list if not already
// present, for callers outside this package building up a grammar
// incrementally (e.g. the fuzzer's focused-grammar construction).
func (g Grammar) AddRule(name string, rule Rule) {
	g.addRule(name, rule)
}

// addRule appends rule to name's alternative list if not already present.
func (g Grammar) addRule(name string, rule Rule) {
	for _, existing := range g[name] {
		if rulesEqual(existing, rule) {
			return
		}
	}
	g[name] = append(g[name], rule)
}

func rulesEqual(a, b Rule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone deep-copies g.
func (g Grammar) Clone() Grammar {
	out := make(Grammar, len(g))
	for name, rules := range g {
		cp := make([]Rule, len(rules))
		for i, r := range rules {
			cp[i] = append(Rule(nil), r...)
		}
		out[name] = cp
	}
	return out
}

// FromSeeds builds the grammar from every seed's fully generalized
// (post-F/G) derivation tree: for every internal node, a production whose
// right-hand side is the node's children's names, in order. A scope
// mined with no observed content (the tree miner's single Empty child)
// contributes the empty alternative instead of a literal token.
func FromSeeds(seeds []corpus.Seed) Grammar {
	g := Grammar{}
	for _, s := range seeds {
		addTree(g, s.Root)
	}
	return g
}

func addTree(g Grammar, n *dtree.Node) {
	if n.IsLeaf() {
		return
	}
	rule := make(Rule, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsLeaf() && c.Name == "" {
			// The epsilon placeholder: this occurrence contributes no
			// token, not a literal empty-string terminal.
			continue
		}
		rule = append(rule, c.Name)
		addTree(g, c)
	}
	g.addRule(n.Name, rule)
}

// Merge unions g2's alternatives into g1 (deduplicated), returning a new
// grammar; neither input is modified.
func Merge(g1, g2 Grammar) Grammar {
	out := g1.Clone()
	for name, rules := range g2 {
		for _, r := range rules {
			out.addRule(name, r)
		}
	}
	return out
}

// NonTerminals returns every non-terminal name g defines, sorted.
func (g Grammar) NonTerminals() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders g as one "name ::= alt1 | alt2 | ..." line per
// non-terminal, in sorted order, mirroring the teacher's show command.
func (g Grammar) String() string {
	var b strings.Builder
	for _, name := range g.NonTerminals() {
		b.WriteString(name)
		b.WriteString(" ::=")
		for i, r := range g[name] {
			if i > 0 {
				b.WriteString(" |")
			}
			if len(r) == 0 {
				b.WriteString(" ε")
				continue
			}
			for _, tok := range r {
				b.WriteByte(' ')
				b.WriteString(tok)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
