// Package active implements the shared active-learning contract of §4.5:
// node registration, the replacement/compatibility test, sampled-pattern
// bucketing, and the deletability check. The method, loop and token
// generalizers (F, G, H) each supply their own grouping key and pseudo-
// name rewrite; this package supplies the oracle-driven machinery they
// all call the same way.
package active

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/nihei9/gramminer/internal/dtree"
	"github.com/nihei9/gramminer/internal/oracle"
)

// Occurrence is one registered node: the node itself, the tree it lives
// in, and an identifier for the seed input that tree came from (carried
// for diagnostics only — the byte string substitution needs only Node and
// Tree).
type Occurrence struct {
	Node  *dtree.Node
	Tree  *dtree.Node
	Input string

	// Pattern and Bucket are filled in by AssignBuckets; zero until then.
	Pattern string
	Bucket  int
}

// Registry groups occurrences by a caller-chosen grouping key ("the
// non-terminal name k" of §4.5).
type Registry struct {
	byKey map[string][]*Occurrence
	order []string
}

func NewRegistry() *Registry {
	return &Registry{byKey: map[string][]*Occurrence{}}
}

// Register records one occurrence under key.
func (r *Registry) Register(key string, node, tree *dtree.Node, input string) *Occurrence {
	if _, ok := r.byKey[key]; !ok {
		r.order = append(r.order, key)
	}
	occ := &Occurrence{Node: node, Tree: tree, Input: input}
	r.byKey[key] = append(r.byKey[key], occ)
	return occ
}

// Keys returns every grouping key, in first-registered order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// Occurrences returns every occurrence registered under key.
func (r *Registry) Occurrences(key string) []*Occurrence {
	return r.byKey[key]
}

// candidateString builds the byte string that results from substituting
// b's subtree into a's tree, in place of a's own subtree.
func candidateString(a, b *Occurrence) []byte {
	return dtree.Substitute(a.Tree, a.Node, b.Node).Yield()
}

// ReplaceAccepted is the directed replacement test: substitute b in place
// of a within a's own tree, and ask the oracle whether the result is
// still accepted.
func ReplaceAccepted(ctx context.Context, checker *oracle.CachedOracle, a, b *Occurrence) (bool, error) {
	return checker.Accepts(ctx, candidateString(a, b))
}

// Compatible reports whether a and b are mutually interchangeable: both
// directed replacements must be accepted.
func Compatible(ctx context.Context, checker *oracle.CachedOracle, a, b *Occurrence) (bool, error) {
	if a.Node == b.Node {
		return true, nil
	}
	ok, err := ReplaceAccepted(ctx, checker, a, b)
	if err != nil || !ok {
		return false, err
	}
	return ReplaceAccepted(ctx, checker, b, a)
}

// Sample draws min(len(occs), max) occurrences using rng, without
// replacement; the drawn occurrences keep their relative input order.
func Sample(rng *rand.Rand, occs []*Occurrence, max int) []*Occurrence {
	if max <= 0 || max >= len(occs) {
		return append([]*Occurrence(nil), occs...)
	}
	idx := rng.Perm(len(occs))[:max]
	sort.Ints(idx)
	out := make([]*Occurrence, len(idx))
	for i, j := range idx {
		out[i] = occs[j]
	}
	return out
}

// CompatibilityPattern computes x's bit pattern against sample: the i-th
// character is '1' iff x is compatible with sample[i].
func CompatibilityPattern(ctx context.Context, checker *oracle.CachedOracle, x *Occurrence, sample []*Occurrence) (string, error) {
	var b strings.Builder
	for _, s := range sample {
		ok, err := Compatible(ctx, checker, x, s)
		if err != nil {
			return "", err
		}
		if ok {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String(), nil
}

// AssignBuckets assigns a dense, first-seen-order integer id to each
// distinct pattern, and stores the pattern/bucket on each occurrence.
// Returns the occurrences grouped by bucket id.
func AssignBuckets(occs []*Occurrence, patterns []string) map[int][]*Occurrence {
	ids := map[string]int{}
	buckets := map[int][]*Occurrence{}
	for i, occ := range occs {
		p := patterns[i]
		id, ok := ids[p]
		if !ok {
			id = len(ids)
			ids[p] = id
		}
		occ.Pattern = p
		occ.Bucket = id
		buckets[id] = append(buckets[id], occ)
	}
	return buckets
}

// Deletable reports whether every occurrence in a bucket remains accepted
// once its node is replaced by the degenerate empty tree.
func Deletable(ctx context.Context, checker *oracle.CachedOracle, bucket []*Occurrence) (bool, error) {
	for _, occ := range bucket {
		empty := dtree.Empty(occ.Node.Start)
		candidate := dtree.Substitute(occ.Tree, occ.Node, empty)
		ok, err := checker.Accepts(ctx, candidate.Yield())
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
