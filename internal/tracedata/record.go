// Package tracedata defines the JSON wire shape of per-instruction traces
// produced by an out-of-process tracer, and the small amount of
// normalization the core performs on them before they reach the tree
// builder.
package tracedata

import (
	"encoding/json"
	"io"
	"regexp"
)

// Arg is one function argument observed during a short lookahead within a
// function scope.
type Arg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one instruction-level trace event.
type Record struct {
	Address      string   `json:"address"`
	FunctionName string   `json:"function_name"`
	FunctionArgs []Arg    `json:"function_args"`
	Stack        []string `json:"stack"`
	Watchpoints  []int    `json:"watchpoint_hits"`
}

// Depth is the call depth of the record: the length of its return-address
// stack.
func (r Record) Depth() int {
	return len(r.Stack)
}

// Trace is one seed's full instruction trace, plus the metadata the tree
// builder attaches to its output.
type Trace struct {
	Records  []Record `json:"records"`
	Input    []byte   `json:"-"`
	InputStr string   `json:"input"`
	Original string   `json:"original"`
	Arg      string   `json:"arg"`
}

var nonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeFunctionName maps every non-identifier character to `_`, per the
// data model's requirement that function names used in pseudo-names are
// valid identifier fragments.
func SanitizeFunctionName(name string) string {
	return nonIdentifier.ReplaceAllString(name, "_")
}

// Decode reads one seed's trace file, a bare JSON array of records, and
// pairs it with the seed bytes it was collected against. (trace.json, as
// written by Encode, is a different shape: an array of whole Traces.)
func Decode(r io.Reader, seed []byte, original, arg string) (*Trace, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return &Trace{
		Records:  records,
		Input:    seed,
		InputStr: string(seed),
		Original: original,
		Arg:      arg,
	}, nil
}

// Encode writes the trace list in the trace.json shape consumed by the
// tree miner.
func Encode(w io.Writer, traces []*Trace) error {
	enc := json.NewEncoder(w)
	return enc.Encode(traces)
}
