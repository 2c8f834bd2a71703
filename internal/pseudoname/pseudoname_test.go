package pseudoname

import "testing"

func TestMethodRoundTrip(t *testing.T) {
	tests := []struct {
		caption string
		m       Method
	}{
		{"plain", Method{Func: "parse_int", ID: 3}},
		{"epsilon", Method{Func: "maybe_trim", Epsilon: true, ID: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			name := EncodeMethod(tt.m)
			got, ok := DecodeMethod(name)
			if !ok {
				t.Fatalf("DecodeMethod(%q) ok = false, want true", name)
			}
			if got != tt.m {
				t.Fatalf("DecodeMethod(%q) = %+v, want %+v", name, got, tt.m)
			}
		})
	}
}

func TestControlRoundTrip(t *testing.T) {
	tests := []struct {
		caption string
		c       Control
	}{
		{"if no stack", Control{Method: "f", Kind: KindIf, CID: 1, Alt: 0, CanEmpty: false}},
		{"while with stack", Control{Method: "g", Kind: KindWhile, CID: 2, Alt: 1, CanEmpty: true, Stack: []int{4, 5, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			name := EncodeControl(tt.c)
			got, ok := DecodeControl(name)
			if !ok {
				t.Fatalf("DecodeControl(%q) ok = false, want true", name)
			}
			if got.Method != tt.c.Method || got.Kind != tt.c.Kind || got.CID != tt.c.CID ||
				got.Alt != tt.c.Alt || got.CanEmpty != tt.c.CanEmpty || len(got.Stack) != len(tt.c.Stack) {
				t.Fatalf("DecodeControl(%q) = %+v, want %+v", name, got, tt.c)
			}
			for i := range tt.c.Stack {
				if got.Stack[i] != tt.c.Stack[i] {
					t.Fatalf("DecodeControl(%q) stack = %v, want %v", name, got.Stack, tt.c.Stack)
				}
			}
		})
	}
}

func TestDecodeMethodRejectsOtherShapes(t *testing.T) {
	names := []string{"<START>", "x", "<f:if_1_0_@>", "<>", "<noid>"}
	for _, n := range names {
		if _, ok := DecodeMethod(n); ok {
			t.Errorf("DecodeMethod(%q) ok = true, want false", n)
		}
	}
}

func TestDecodeControlRejectsOtherShapes(t *testing.T) {
	names := []string{"<START>", "<f_1>", "x", "<nocolonoramp>"}
	for _, n := range names {
		if _, ok := DecodeControl(n); ok {
			t.Errorf("DecodeControl(%q) ok = true, want false", n)
		}
	}
}

func TestIsDeletable(t *testing.T) {
	eps := EncodeMethod(Method{Func: "f", Epsilon: true, ID: 1})
	noEps := EncodeMethod(Method{Func: "f", ID: 1})
	ctrlEps := EncodeControl(Control{Method: "f", Kind: KindIf, CID: 1, Alt: 0, CanEmpty: true})
	ctrlNoEps := EncodeControl(Control{Method: "f", Kind: KindIf, CID: 1, Alt: 0, CanEmpty: false})

	if !IsDeletable(eps) {
		t.Error("IsDeletable(epsilon method) = false, want true")
	}
	if IsDeletable(noEps) {
		t.Error("IsDeletable(non-epsilon method) = true, want false")
	}
	if !IsDeletable(ctrlEps) {
		t.Error("IsDeletable(can-empty control) = false, want true")
	}
	if IsDeletable(ctrlNoEps) {
		t.Error("IsDeletable(non-can-empty control) = true, want false")
	}
	if IsDeletable("<START>") {
		t.Error("IsDeletable(<START>) = true, want false")
	}
}
