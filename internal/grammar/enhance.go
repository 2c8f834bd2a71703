package grammar

import "github.com/nihei9/gramminer/internal/asciiclass"

// Enhance implements §4.9 pass 10, the parsing-grammar enhancer (K): every
// `[__ASCII_x__]` class terminal is replaced by a reference to a fresh
// non-terminal whose alternatives are that class's literal member
// characters, and every `X+` length-widened terminal is replaced by a
// right-recursive pair `X X*`-shaped non-terminal (one-or-more of X).
func Enhance(g Grammar) Grammar {
	out := g.Clone()
	emittedClass := map[string]bool{}
	emittedPlus := map[string]bool{}

	for _, rules := range g {
		for _, r := range rules {
			for _, tok := range r {
				base, plus := splitPlus(tok)
				if className, ok := classNameFromToken(base); ok {
					nt := classNonTerminal(className)
					if !emittedClass[nt] {
						emittedClass[nt] = true
						for _, m := range asciiclass.Members(className) {
							out.addRule(nt, Rule{string(rune(m))})
						}
					}
					if plus {
						plusNT := plusNonTerminal(base)
						if !emittedPlus[plusNT] {
							emittedPlus[plusNT] = true
							out.addRule(plusNT, Rule{nt})
							out.addRule(plusNT, Rule{nt, plusNT})
						}
					}
				} else if plus {
					// A widened literal run over a single character
					// rather than a class: same X X* shape, rooted at
					// the literal terminal itself.
					plusNT := plusNonTerminal(base)
					if !emittedPlus[plusNT] {
						emittedPlus[plusNT] = true
						out.addRule(plusNT, Rule{base})
						out.addRule(plusNT, Rule{base, plusNT})
					}
				}
			}
		}
	}

	return rewriteTokens(out)
}

// splitPlus recognizes a length-widened token `X+`: any token longer than
// one character whose last byte is '+'. A bare "+" (length 1) is the
// literal plus-character terminal, not a widened token.
func splitPlus(tok string) (base string, plus bool) {
	if len(tok) > 1 && tok[len(tok)-1] == '+' {
		return tok[:len(tok)-1], true
	}
	return tok, false
}

// classNameFromToken recognizes a `[__ASCII_x__]` terminal and returns its
// bare class name.
func classNameFromToken(tok string) (string, bool) {
	for _, name := range asciiclass.Names() {
		if tok == asciiclass.Token(name) {
			return name, true
		}
	}
	return "", false
}

func classNonTerminal(className string) string {
	return "<" + className + ">"
}

func plusNonTerminal(base string) string {
	return "<" + base + "_plus>"
}

// rewriteTokens replaces every `[__ASCII_x__]` / `[__ASCII_x__]+` /
// literal `c+` token occurrence in every rule's right-hand side with the
// non-terminal references Enhance introduced for it.
func rewriteTokens(g Grammar) Grammar {
	out := Grammar{}
	for name, rules := range g {
		for _, r := range rules {
			newRule := make(Rule, 0, len(r))
			for _, tok := range r {
				base, plus := splitPlus(tok)
				if className, ok := classNameFromToken(base); ok {
					if plus {
						newRule = append(newRule, plusNonTerminal(base))
					} else {
						newRule = append(newRule, classNonTerminal(className))
					}
					continue
				}
				if plus {
					newRule = append(newRule, plusNonTerminal(base))
					continue
				}
				newRule = append(newRule, tok)
			}
			out.addRule(name, newRule)
		}
	}
	return out
}
