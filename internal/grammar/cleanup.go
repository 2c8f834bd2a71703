package grammar

import (
	"strings"

	"github.com/nihei9/gramminer/internal/pseudoname"
)

// GC removes every non-terminal unreachable from Start, along with any
// reference to it left dangling in kept rules' alternatives list (those
// alternatives are dropped too, since a rule referencing an undefined
// non-terminal is not well-formed).
func GC(g Grammar) Grammar {
	reachable := map[string]bool{}
	var visit func(string)
	visit = func(name string) {
		if reachable[name] {
			return
		}
		if _, ok := g[name]; !ok {
			return
		}
		reachable[name] = true
		for _, rule := range g[name] {
			for _, tok := range rule {
				if IsNonTerminal(tok) {
					visit(tok)
				}
			}
		}
	}
	visit(Start)

	out := Grammar{}
	for name, rules := range g {
		if !reachable[name] {
			continue
		}
		for _, r := range rules {
			if ruleFullyReachable(r, reachable) {
				out.addRule(name, r)
			}
		}
	}
	return out
}

func ruleFullyReachable(r Rule, reachable map[string]bool) bool {
	for _, tok := range r {
		if IsNonTerminal(tok) && !reachable[tok] {
			return false
		}
	}
	return true
}

// IntroduceEpsilon implements §4.9 pass 2: every non-terminal whose
// pseudo-name carries the epsilon/can-empty marker gets the empty
// alternative; the nullability is then propagated by adding, for every
// rule containing a nullable symbol, the variant with that symbol
// dropped (when the result isn't already present and isn't itself
// empty); finally the now-redundant explicit empty alternatives are
// removed so the grammar stays epsilon-free at the top level (nullability
// survives only via the pseudo-name marker other stages consult).
func IntroduceEpsilon(g Grammar) Grammar {
	out := g.Clone()

	nullable := map[string]bool{}
	for name := range out {
		if pseudoname.IsDeletable(name) {
			nullable[name] = true
		}
	}

	for {
		changed := false
		for name, rules := range out {
			for _, r := range rules {
				for _, variant := range dropNullable(r, nullable) {
					if len(variant) == 0 {
						continue
					}
					before := len(out[name])
					out.addRule(name, variant)
					if len(out[name]) != before {
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	for name := range out {
		if !nullable[name] {
			continue
		}
		var kept []Rule
		for _, r := range out[name] {
			if len(r) == 0 {
				continue
			}
			kept = append(kept, r)
		}
		out[name] = kept
	}

	return out
}

// dropNullable returns one variant of r per nullable-symbol occurrence,
// each with that single occurrence removed, or nil if r has none.
func dropNullable(r Rule, nullable map[string]bool) []Rule {
	var variants []Rule
	for i, tok := range r {
		if nullable[tok] {
			variant := make(Rule, 0, len(r)-1)
			variant = append(variant, r[:i]...)
			variant = append(variant, r[i+1:]...)
			variants = append(variants, variant)
		}
	}
	return variants
}

// EliminateNonProductive implements §4.9 pass 3: keep only non-terminals
// that can eventually derive a terminal string, by a fixed point seeded
// with rules made entirely of terminals (or the empty rule).
func EliminateNonProductive(g Grammar) Grammar {
	productive := map[string]bool{}
	for {
		changed := false
		for name, rules := range g {
			if productive[name] {
				continue
			}
			for _, r := range rules {
				if ruleProductive(r, productive) {
					productive[name] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	out := Grammar{}
	for name, rules := range g {
		if !productive[name] {
			continue
		}
		for _, r := range rules {
			if ruleProductive(r, productive) {
				out.addRule(name, r)
			}
		}
	}
	return out
}

func ruleProductive(r Rule, productive map[string]bool) bool {
	for _, tok := range r {
		if IsNonTerminal(tok) && !productive[tok] {
			return false
		}
	}
	return true
}

// NormalizeNames implements §4.9 pass 6: spaces inside non-terminal
// names become underscores, rewritten consistently at every definition
// and every use site.
func NormalizeNames(g Grammar) Grammar {
	out := Grammar{}
	rename := func(tok string) string {
		if !IsNonTerminal(tok) {
			return tok
		}
		return strings.ReplaceAll(tok, " ", "_")
	}
	for name, rules := range g {
		newName := rename(name)
		for _, r := range rules {
			newRule := make(Rule, len(r))
			for i, tok := range r {
				newRule[i] = rename(tok)
			}
			out.addRule(newName, newRule)
		}
	}
	return out
}

// Compact implements §4.9 pass 9: a non-terminal whose only alternative
// is a single non-terminal reference is inlined away at every use site.
func Compact(g Grammar) Grammar {
	alias := map[string]string{}
	for name, rules := range g {
		if name == Start {
			continue
		}
		if len(rules) == 1 && len(rules[0]) == 1 && IsNonTerminal(rules[0][0]) {
			alias[name] = rules[0][0]
		}
	}
	resolve := func(tok string) string {
		seen := map[string]bool{}
		for {
			target, ok := alias[tok]
			if !ok || seen[tok] {
				return tok
			}
			seen[tok] = true
			tok = target
		}
	}

	out := Grammar{}
	for name, rules := range g {
		if _, isAlias := alias[name]; isAlias {
			continue
		}
		for _, r := range rules {
			newRule := make(Rule, len(r))
			for i, tok := range r {
				newRule[i] = resolve(tok)
			}
			out.addRule(name, newRule)
		}
	}
	return out
}
