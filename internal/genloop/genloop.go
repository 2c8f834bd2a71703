// Package genloop implements the loop/conditional generalizer (component
// G): the same bucketing shape as genmethod, but for while/if pseudo-
// nodes, where the bucket id replaces the iteration/branch slot of the
// pseudo-name instead of being appended to it.
package genloop

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/nihei9/gramminer/internal/active"
	"github.com/nihei9/gramminer/internal/corpus"
	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/oracle"
	"github.com/nihei9/gramminer/internal/pseudoname"
)

// Run groups while/if nodes by (enclosing method, kind, control id) —
// the identity a loop header or branch point keeps across every
// iteration/branch and every seed — buckets each group by compatibility,
// and rewrites the branch/iteration slot of the pseudo-name to the
// bucket id.
func Run(ctx context.Context, seeds []corpus.Seed, checker *oracle.CachedOracle, rng *rand.Rand, maxProcSamples int) error {
	reg := active.NewRegistry()
	decoded := map[*dtree.Node]pseudoname.Control{}

	for _, s := range seeds {
		s.Root.Walk(func(n *dtree.Node) {
			c, ok := pseudoname.DecodeControl(n.Name)
			if !ok {
				return
			}
			decoded[n] = c
			reg.Register(controlKey(c), n, s.Root, s.Arg)
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
				c := decoded[occ.Node]
				c.Alt = bucketID
				c.CanEmpty = deletable
				occ.Node.Name = pseudoname.EncodeControl(c)
			}
		}
	}
	return nil
}

// controlKey identifies "the same" loop header or branch point across
// iterations/branches and across seeds: everything about a Control
// except the slot G is about to replace (Alt) and the per-occurrence
// enclosing-conditional stack, which varies with where in the trace this
// particular occurrence happened to fire.
func controlKey(c pseudoname.Control) string {
	return fmt.Sprintf("%s:%v:%d", c.Method, c.Kind, c.CID)
}
