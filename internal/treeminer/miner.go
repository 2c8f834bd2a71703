// Package treeminer folds the flat comparisons and method map a Builder
// produces for one seed into a single derivation tree (component D).
//
// No treeminer.py survived distillation into original_source, so this is
// grounded on how its output is consumed: miner/mine.py's
// squash_consecutive_conditions and to_grammar both pattern-match a node
// as (name, children, start, end) and expect children already ordered by
// input offset, which is exactly the shape dtree.Node provides.
package treeminer

import (
	"fmt"
	"sort"

	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/treebuild"
)

// Mine builds the derivation tree for one seed's tree-builder result. Each
// scope in the method map becomes an internal node; each comparison
// becomes a one-byte leaf, placed under the scope it was attributed to.
// Siblings — a scope's own leaves interleaved with its child scopes' whole
// subtrees — are ordered by input offset, since neither the walk order of
// children nor of comparisons is guaranteed to match byte order (a
// lookahead-driven method scope can be opened before the watchpoint that
// produced an earlier-offset comparison in a sibling scope is attributed).
func Mine(res *treebuild.Result) (*dtree.Node, error) {
	leavesByScope := map[int][]*dtree.Node{}
	for _, c := range res.Comparisons {
		leavesByScope[c.ScopeID] = append(leavesByScope[c.ScopeID], dtree.Leaf(c.Char, c.Offset))
	}

	root, ok := res.MethodMap[0]
	if !ok {
		return nil, fmt.Errorf("treeminer: method map for %s has no root scope", res.Arg)
	}
	return buildNode(res.MethodMap, leavesByScope, root)
}

func buildNode(methodMap map[int]*treebuild.MethodMapEntry, leaves map[int][]*dtree.Node, entry *treebuild.MethodMapEntry) (*dtree.Node, error) {
	parts := append([]*dtree.Node(nil), leaves[entry.ID]...)
	for _, childID := range entry.Children {
		child, ok := methodMap[childID]
		if !ok {
			return nil, fmt.Errorf("treeminer: dangling child id %d under scope %d", childID, entry.ID)
		}
		sub, err := buildNode(methodMap, leaves, child)
		if err != nil {
			return nil, err
		}
		parts = append(parts, sub)
	}

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Start < parts[j].Start })

	if entry.ID == 0 {
		// The root is always <START>, never collapsed away. Its children
		// are every part the root scope collected, in input order (an
		// empty leaf if there is none); nothing merges them into one, so
		// the root has a single child only when the trace yields one
		// outermost part.
		if len(parts) == 0 {
			parts = []*dtree.Node{dtree.Empty(0)}
		}
		return dtree.Internal(dtree.Start, parts), nil
	}

	if len(parts) == 0 {
		// A scope with no observed content: a call that read nothing, or
		// a branch taken without any watchpoint inside it. The precise
		// offset doesn't matter for a zero-width node — only its
		// presence, which the method generalizer reads via the epsilon
		// marker on entry.Name, not via this node's range.
		return dtree.Internal(entry.Name, []*dtree.Node{dtree.Empty(0)}), nil
	}
	return dtree.Internal(entry.Name, parts), nil
}
