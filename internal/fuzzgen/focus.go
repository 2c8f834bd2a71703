package fuzzgen

import (
	"fmt"

	"github.com/nihei9/gramminer/internal/grammar"
)

// Focus builds a grammar guaranteed to reach target from start: every
// non-terminal on a path to target is split into a shadow variant (its
// name suffixed "#focus") whose rule list is pruned to only the
// alternatives that still lead there, forcing every expansion to make
// progress. Non-terminals that never reach target are left untouched, so
// a shared helper used both on and off the path to target keeps its
// normal, unconstrained behavior away from it.
//
// Returns the new start symbol to fuzz from, and the focused grammar.
// Returns an error if target is unreachable from start at all.
func Focus(g grammar.Grammar, start, target string) (string, grammar.Grammar, error) {
	if start == target {
		return start, g, nil
	}

	canReach := reachability(g, target)
	if !canReach[start] {
		return "", nil, fmt.Errorf("fuzzgen: %s is not reachable from %s", target, start)
	}

	out := g.Clone()
	visited := map[string]bool{}
	var emit func(name string) string
	emit = func(name string) string {
		if name == target || !canReach[name] {
			return name
		}
		shadow := shadowName(name)
		if visited[shadow] {
			return shadow
		}
		visited[shadow] = true

		for _, r := range g[name] {
			if !ruleReaches(r, target, canReach) {
				continue
			}
			newRule := make(grammar.Rule, len(r))
			for i, tok := range r {
				if grammar.IsNonTerminal(tok) && tok != target && canReach[tok] {
					newRule[i] = emit(tok)
				} else {
					newRule[i] = tok
				}
			}
			out.AddRule(shadow, newRule)
		}
		return shadow
	}

	newStart := emit(start)
	return newStart, out, nil
}

// reachability returns, for every non-terminal, whether some chain of
// its rules can reach target.
func reachability(g grammar.Grammar, target string) map[string]bool {
	canReach := map[string]bool{target: true}
	for {
		changed := false
		for name, rules := range g {
			if canReach[name] {
				continue
			}
			for _, r := range rules {
				if ruleReaches(r, target, canReach) {
					canReach[name] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return canReach
}

func ruleReaches(r grammar.Rule, target string, canReach map[string]bool) bool {
	for _, tok := range r {
		if tok == target {
			return true
		}
		if grammar.IsNonTerminal(tok) && canReach[tok] {
			return true
		}
	}
	return false
}

func shadowName(name string) string {
	if len(name) >= 1 && name[len(name)-1] == '>' {
		return name[:len(name)-1] + "#focus>"
	}
	return name + "#focus"
}
