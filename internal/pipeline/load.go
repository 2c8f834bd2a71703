package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/tracedata"
)

// LoadTraces pairs every seed file in seedDir with the same-named JSON
// trace file in traceDir (seed "foo.txt" pairs with trace "foo.txt.json"),
// decoding each into a tracedata.Trace. A seed with no matching trace
// file is skipped with a warning rather than failing the whole run.
func (p *Pipeline) LoadTraces(seedDir, traceDir string) ([]*tracedata.Trace, error) {
	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read seed directory %s: %w", seedDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var traces []*tracedata.Trace
	for _, name := range names {
		seedPath := filepath.Join(seedDir, name)
		seed, err := os.ReadFile(seedPath)
		if err != nil {
			return nil, fmt.Errorf("pipeline: read seed %s: %w", seedPath, err)
		}

		tracePath := filepath.Join(traceDir, name+".json")
		f, err := os.Open(tracePath)
		if err != nil {
			p.Logger.Warn("skipping seed with no matching trace file", "seed", name, "expected", tracePath)
			continue
		}
		t, err := tracedata.Decode(f, seed, string(seed), name)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("pipeline: decode trace %s: %w", tracePath, err)
		}
		traces = append(traces, t)
	}
	return traces, nil
}

// ReadTrees loads a trees.json-shaped document (as written by
// WriteTrees) back into a seed corpus, for the `assemble` command's
// already-built-tree-set input.
func ReadTrees(path string) ([]corpus.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	var records []treeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("pipeline: parse %s: %w", path, err)
	}

	seeds := make([]corpus.Seed, len(records))
	for i, r := range records {
		seeds[i] = corpus.Seed{Root: fromJSONNode(r.Tree), Arg: r.Arg}
	}
	return seeds, nil
}

// fromJSONNode is toJSONNode's inverse. A childless node is either a
// one-character leaf or the degenerate empty tree of §4.5, distinguished
// by its zero-length range.
func fromJSONNode(n *jsonNode) *dtree.Node {
	if len(n.Children) == 0 {
		if n.Start == n.End {
			return dtree.Empty(n.Start)
		}
		return &dtree.Node{Name: n.Name, Start: n.Start, End: n.End}
	}
	children := make([]*dtree.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = fromJSONNode(c)
	}
	return &dtree.Node{Name: n.Name, Children: children, Start: children[0].Start, End: children[len(children)-1].End}
}
