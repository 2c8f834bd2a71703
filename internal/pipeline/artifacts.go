package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/grammar"
	"github.com/nihei9/gramminer/internal/tracedata"
)

// GrammarDocument is the on-disk shape of mined_g.json / parsing_g.json:
// a grammar plus the metadata the original pipeline stamps on it.
type GrammarDocument struct {
	Start          string              `json:"[start]"`
	Grammar        map[string][]string `json:"[grammar]"`
	Command        string              `json:"[command]"`
	NoTestedInputs int                 `json:"[no_tested_inputs]"`
}

// treeRecord is one entry of trees.json / method_trees.json /
// loop_trees.json: a seed's argument alongside its (possibly partially
// generalized) derivation tree, flattened to a JSON-friendly shape.
type treeRecord struct {
	Arg  string    `json:"arg"`
	Tree *jsonNode `json:"tree"`
}

type jsonNode struct {
	Name     string      `json:"name"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Children []*jsonNode `json:"children,omitempty"`
}

func toJSONNode(n *dtree.Node) *jsonNode {
	out := &jsonNode{Name: n.Name, Start: n.Start, End: n.End}
	for _, c := range n.Children {
		out.Children = append(out.Children, toJSONNode(c))
	}
	return out
}

// WriteGrammar renders g as the §6.3 grammar document shape and writes it
// to path.
func WriteGrammar(path, start string, g grammar.Grammar, command string, numTested int) error {
	doc := GrammarDocument{
		Start:          start,
		Grammar:        make(map[string][]string, len(g)),
		Command:        command,
		NoTestedInputs: numTested,
	}
	for name, rules := range g {
		alts := make([]string, len(rules))
		for i, r := range rules {
			alts[i] = joinRule(r)
		}
		doc.Grammar[name] = alts
	}
	return writeJSON(path, doc)
}

func joinRule(r grammar.Rule) string {
	out := ""
	for i, tok := range r {
		if i > 0 {
			out += " "
		}
		out += tok
	}
	return out
}

// WriteTrees writes a tree.json-shaped document (trees.json,
// method_trees.json, loop_trees.json) from a seed-argument/root pairing.
func WriteTrees(path string, args []string, roots []*dtree.Node) error {
	if len(args) != len(roots) {
		return fmt.Errorf("pipeline: %d args but %d trees", len(args), len(roots))
	}
	records := make([]treeRecord, len(args))
	for i := range args {
		records[i] = treeRecord{Arg: args[i], Tree: toJSONNode(roots[i])}
	}
	return writeJSON(path, records)
}

// WriteTraces writes trace.json: the raw decoded traces, in the shape
// tracedata.Encode defines.
func WriteTraces(path string, traces []*tracedata.Trace) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pipeline: create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create %s: %w", path, err)
	}
	defer f.Close()
	if err := tracedata.Encode(f, traces); err != nil {
		return fmt.Errorf("pipeline: write %s: %w", path, err)
	}
	return nil
}

// WriteSeedTrees writes a tree.json-shaped document straight from a seed
// corpus, the shape trace/assemble's intermediate artifacts share.
func WriteSeedTrees(path string, seeds []corpus.Seed) error {
	args := make([]string, len(seeds))
	roots := make([]*dtree.Node, len(seeds))
	for i, s := range seeds {
		args[i] = s.Arg
		roots[i] = s.Root
	}
	return WriteTrees(path, args, roots)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pipeline: create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("pipeline: write %s: %w", path, err)
	}
	return nil
}
