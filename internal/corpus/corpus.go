// Package corpus holds the one small type every stage after the tree
// miner shares: a mined derivation tree plus the seed it came from.
package corpus

import "github.com/nihei9/gramminer/internal/dtree"

// Seed is one seed input's mined derivation tree.
type Seed struct {
	Root *dtree.Node
	Arg  string
}
