// Package asciiclass is the fixed character-class lattice the token
// generalizer climbs and the bounded fuzzer expands class terminals
// against.
//
// Grounded on original_source/src/cmimid/fuzz.py's ASCII_MAP and
// CHARACTER_PARENT_MAP, renamed to match this specification's §4.8
// lattice diagram (digit → hexdigit → alphanum → alphanum_punct →
// printable; ascii_lower/ascii_upper → letter → alphanum; whitespace →
// printable; punct → alphanum_punct).
package asciiclass

import "fmt"

const (
	Digit         = "DIGIT"
	HexDigit      = "HEXDIGIT"
	Lower         = "LOWER"
	Upper         = "UPPER"
	Letter        = "LETTER"
	AlphaNum      = "ALPHANUM"
	Punct         = "PUNCT"
	AlphaNumPunct = "ALPHANUM_PUNCT"
	Whitespace    = "WHITESPACE"
	Printable     = "PRINTABLE"
)

// Token renders the bracketed grammar terminal for a class name, e.g.
// Token(Digit) == "[__ASCII_DIGIT__]".
func Token(name string) string {
	return fmt.Sprintf("[__ASCII_%s__]", name)
}

var members = buildMembers()

func buildMembers() map[string][]byte {
	digits := bytesOf("0123456789")
	hexDigits := bytesOf("0123456789abcdefABCDEF")
	lower := bytesOf("abcdefghijklmnopqrstuvwxyz")
	upper := bytesOf("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	letter := append(append([]byte(nil), lower...), upper...)
	alphanum := append(append([]byte(nil), letter...), digits...)
	punct := bytesOf("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~")
	alphanumPunct := append(append([]byte(nil), alphanum...), punct...)
	whitespace := bytesOf(" \t\n\r\v\f")
	printable := append(append([]byte(nil), alphanumPunct...), whitespace...)

	return map[string][]byte{
		Digit:         digits,
		HexDigit:      hexDigits,
		Lower:         lower,
		Upper:         upper,
		Letter:        letter,
		AlphaNum:      alphanum,
		Punct:         punct,
		AlphaNumPunct: alphanumPunct,
		Whitespace:    whitespace,
		Printable:     printable,
	}
}

func bytesOf(s string) []byte {
	return []byte(s)
}

// Parent returns the next-wider class in the lattice, and false at the
// top (Printable has no parent).
func Parent(name string) (string, bool) {
	switch name {
	case Digit:
		return HexDigit, true
	case HexDigit:
		return AlphaNum, true
	case Lower:
		return Letter, true
	case Upper:
		return Letter, true
	case Letter:
		return AlphaNum, true
	case AlphaNum:
		return AlphaNumPunct, true
	case Punct:
		return AlphaNumPunct, true
	case AlphaNumPunct:
		return Printable, true
	case Whitespace:
		return Printable, true
	default:
		return "", false
	}
}

// InitialClass returns the narrowest class byte c is a member of, the
// starting point for the lattice climb. Hexdigit is reachable only by
// climbing from Digit — every hex letter (a-f, A-F) is also a plain
// letter, and membership in the narrower Lower/Upper class always wins,
// so HexDigit never starts a climb, only continues one.
func InitialClass(c byte) (string, bool) {
	switch {
	case c >= '0' && c <= '9':
		return Digit, true
	case c >= 'a' && c <= 'z':
		return Lower, true
	case c >= 'A' && c <= 'Z':
		return Upper, true
	case isWhitespace(c):
		return Whitespace, true
	case isPunct(c):
		return Punct, true
	default:
		return "", false
	}
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isPunct(c byte) bool {
	for _, m := range members[Punct] {
		if m == c {
			return true
		}
	}
	return false
}

// Members returns the literal bytes belonging to a class, or nil for an
// unknown class name.
func Members(name string) []byte {
	return members[name]
}

// Names returns every class name, for callers that need to enumerate the
// whole lattice (e.g. the grammar enhancer's class table).
func Names() []string {
	return []string{Digit, HexDigit, Lower, Upper, Letter, AlphaNum, Punct, AlphaNumPunct, Whitespace, Printable}
}
