// Package genmethod implements the method generalizer (component F): it
// buckets method-call nodes that share a function name by oracle-observed
// interchangeability, then rewrites each occurrence's name to carry its
// bucket id and, where the whole bucket is deletable, an epsilon marker.
package genmethod

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/nihei9/gramminer/internal/active"
	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/oracle"
	"github.com/nihei9/gramminer/internal/pseudoname"
)

// Run registers every method-call node across seeds (identified, pre-
// generalization, by its raw sanitized function name), buckets each
// function name's occurrences by compatibility pattern, and rewrites
// their names in place to the final `<func_BUCKET>` / `<func?_BUCKET>`
// form.
func Run(ctx context.Context, seeds []corpus.Seed, checker *oracle.CachedOracle, rng *rand.Rand, maxProcSamples int) error {
	reg := active.NewRegistry()
	for _, s := range seeds {
		s.Root.Walk(func(n *dtree.Node) {
			if !isUngeneralizedMethodNode(n) {
				return
			}
			reg.Register(n.Name, n, s.Root, s.Arg)
		})
	}

	for _, key := range reg.Keys() {
		occs := reg.Occurrences(key)
		sample := active.Sample(rng, occs, maxProcSamples)

		patterns := make([]string, len(occs))
		for i, occ := range occs {
			p, err := active.CompatibilityPattern(ctx, checker, occ, sample)
			if err != nil {
				return err
			}
			patterns[i] = p
		}
		buckets := active.AssignBuckets(occs, patterns)

		for bucketID, bucket := range buckets {
			deletable, err := active.Deletable(ctx, checker, bucket)
			if err != nil {
				return err
			}
			for _, occ := range bucket {
				name := pseudoname.EncodeMethod(pseudoname.Method{
					Func:    key,
					Epsilon: deletable,
					ID:      bucketID,
				})
				occ.Node.Name = name
				cascadeMethodRename(occ.Node, strings.Trim(name, "<>"))
			}
		}
	}
	return nil
}

// cascadeMethodRename rewrites the enclosing-method component embedded in
// every nested if/while pseudo-name under n to newMethod, stopping the
// descent the moment it hits a node that is not itself a control pseudo-
// name (a plain method-call node, a leaf, or an already-generalized loop
// node from a different pass): that node's own descendants belong to
// whatever method scope it opens and are rewritten separately when that
// node's own occurrence is bucketed.
//
// Grounded on original_source/src/miner/method_generalizer.py's
// update_method_stack.
func cascadeMethodRename(n *dtree.Node, newMethod string) {
	for _, c := range n.Children {
		ctrl, ok := pseudoname.DecodeControl(c.Name)
		if !ok {
			continue
		}
		ctrl.Method = newMethod
		c.Name = pseudoname.EncodeControl(ctrl)
		cascadeMethodRename(c, newMethod)
	}
}

// isUngeneralizedMethodNode reports whether n is a method-call scope the
// tree builder has not yet wrapped in pseudo-name form: not a leaf, not
// the root, and not already a loop/conditional pseudo-name (those belong
// to the loop generalizer).
func isUngeneralizedMethodNode(n *dtree.Node) bool {
	if n.IsLeaf() || n.Name == dtree.Start || n.Name == "" {
		return false
	}
	if _, ok := pseudoname.DecodeControl(n.Name); ok {
		return false
	}
	if _, ok := pseudoname.DecodeMethod(n.Name); ok {
		return false
	}
	return true
}
