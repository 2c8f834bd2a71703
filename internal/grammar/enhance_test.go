package grammar

import (
	"testing"

	"github.com/nihei9/gramminer/internal/asciiclass"
)

func TestEnhanceClassTerminal(t *testing.T) {
	classTok := asciiclass.Token(asciiclass.Digit)
	g := Grammar{
		Start: {{classTok}},
	}
	got := Enhance(g)

	nt := "<" + asciiclass.Digit + ">"
	rule := got[Start]
	if len(rule) != 1 || len(rule[0]) != 1 || rule[0][0] != nt {
		t.Fatalf("Enhance() did not rewrite the class terminal to %s: %v", nt, got[Start])
	}
	if len(got[nt]) != len(asciiclass.Members(asciiclass.Digit)) {
		t.Fatalf("Enhance() emitted %d alternatives for %s, want %d", len(got[nt]), nt, len(asciiclass.Members(asciiclass.Digit)))
	}
}

func TestEnhanceWidenedClassTerminal(t *testing.T) {
	classTok := asciiclass.Token(asciiclass.Digit) + "+"
	g := Grammar{
		Start: {{classTok}},
	}
	got := Enhance(g)

	plusNT := "<" + asciiclass.Token(asciiclass.Digit) + "_plus>"
	rule := got[Start]
	if len(rule) != 1 || len(rule[0]) != 1 || rule[0][0] != plusNT {
		t.Fatalf("Enhance() did not rewrite the widened class terminal to %s: %v", plusNT, got[Start])
	}

	alts := got[plusNT]
	if len(alts) != 2 {
		t.Fatalf("Enhance() should emit an X / X plusNT pair for %s, got %v", plusNT, alts)
	}
	classNT := "<" + asciiclass.Digit + ">"
	oneOrMore := false
	for _, r := range alts {
		if len(r) == 2 && r[0] == classNT && r[1] == plusNT {
			oneOrMore = true
		}
	}
	if !oneOrMore {
		t.Fatalf("Enhance() should include the right-recursive alternative: %v", alts)
	}
}

func TestEnhanceWidenedLiteral(t *testing.T) {
	g := Grammar{
		Start: {{"a+"}},
	}
	got := Enhance(g)

	plusNT := "<a_plus>"
	rule := got[Start]
	if len(rule) != 1 || rule[0][0] != plusNT {
		t.Fatalf("Enhance() did not rewrite the widened literal to %s: %v", plusNT, got[Start])
	}
	alts := got[plusNT]
	if len(alts) != 2 || alts[0][0] != "a" {
		t.Fatalf("Enhance() should root the widened literal's recursion at the literal itself: %v", alts)
	}
}

func TestEnhancePlainLiteralUnaffected(t *testing.T) {
	g := Grammar{
		Start: {{"x", "+"}},
	}
	got := Enhance(g)
	if len(got[Start]) != 1 || len(got[Start][0]) != 2 || got[Start][0][1] != "+" {
		t.Fatalf("Enhance() must not treat a bare '+' terminal as widened: %v", got[Start])
	}
}
