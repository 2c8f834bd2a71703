package asciiclass

import "testing"

func TestToken(t *testing.T) {
	if got, want := Token(Digit), "[__ASCII_DIGIT__]"; got != want {
		t.Fatalf("Token(Digit) = %q, want %q", got, want)
	}
}

func TestInitialClassAndParentChain(t *testing.T) {
	tests := []struct {
		caption string
		c       byte
		chain   []string
	}{
		{"digit climbs through hexdigit to the top", '5', []string{Digit, HexDigit, AlphaNum, AlphaNumPunct, Printable}},
		{"hex letter starts as lower, not hexdigit", 'a', []string{Lower, Letter, AlphaNum, AlphaNumPunct, Printable}},
		{"upper letter climbs the same chain as lower", 'Z', []string{Upper, Letter, AlphaNum, AlphaNumPunct, Printable}},
		{"punctuation climbs through alphanum_punct", '!', []string{Punct, AlphaNumPunct, Printable}},
		{"whitespace climbs straight to printable", ' ', []string{Whitespace, Printable}},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			kind, ok := InitialClass(tt.c)
			if !ok {
				t.Fatalf("InitialClass(%q) reported no class", tt.c)
			}
			got := []string{kind}
			for {
				parent, hasParent := Parent(kind)
				if !hasParent {
					break
				}
				got = append(got, parent)
				kind = parent
			}
			if len(got) != len(tt.chain) {
				t.Fatalf("chain = %v, want %v", got, tt.chain)
			}
			for i := range got {
				if got[i] != tt.chain[i] {
					t.Fatalf("chain = %v, want %v", got, tt.chain)
				}
			}
		})
	}
}

func TestMembersContainsInitialClass(t *testing.T) {
	for _, name := range Names() {
		for _, m := range Members(name) {
			kind, ok := InitialClass(m)
			if !ok {
				continue
			}
			// Hex letters start at Lower/Upper and climb through Letter,
			// never through HexDigit; for them, check that the climb meets
			// HexDigit's parent instead.
			target := name
			if name == HexDigit && kind != Digit {
				target, _ = Parent(HexDigit)
			}
			found := false
			cur := kind
			for {
				if cur == target {
					found = true
					break
				}
				parent, hasParent := Parent(cur)
				if !hasParent {
					break
				}
				cur = parent
			}
			if !found {
				t.Fatalf("member %q of class %s is not reachable by climbing from its initial class %s", m, name, kind)
			}
		}
	}
}

func TestMembersUnknownClass(t *testing.T) {
	if got := Members("NOT_A_CLASS"); got != nil {
		t.Fatalf("Members(unknown) = %v, want nil", got)
	}
}
