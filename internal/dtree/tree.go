// Package dtree defines the derivation tree shape shared by the tree
// miner, the method/loop/token generalizers and the grammar assembler: a
// rose tree whose leaves are the input bytes a seed was observed to
// exercise, and whose internal nodes are pseudo-method names.
package dtree

import "fmt"

// Start is the root pseudo-name every derivation tree is rooted at.
const Start = "<START>"

// Node is one rose-tree node. Leaves have no children and Start+1 == End;
// internal nodes' range is the union of their children's ranges, which
// must be contiguous and ordered.
type Node struct {
	Name     string
	Children []*Node
	Start    int
	End      int
}

// Leaf builds a one-character terminal node.
func Leaf(char byte, offset int) *Node {
	return &Node{Name: string(rune(char)), Start: offset, End: offset + 1}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Internal builds an internal node from children already in input order,
// deriving Start/End from them. Panics on an empty child list — internal
// nodes always have at least one child in a well-formed tree.
func Internal(name string, children []*Node) *Node {
	if len(children) == 0 {
		panic(fmt.Sprintf("dtree: internal node %q built with no children", name))
	}
	return &Node{
		Name:     name,
		Children: children,
		Start:    children[0].Start,
		End:      children[len(children)-1].End,
	}
}

// Yield returns the pre-order concatenation of leaf characters, i.e. the
// byte string this (sub)tree derives.
func (n *Node) Yield() []byte {
	var out []byte
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.IsLeaf() {
			out = append(out, []byte(cur.Name)...)
			return
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Clone deep-copies a (sub)tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Name: n.Name, Start: n.Start, End: n.End}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// Walk visits every node of the tree in pre-order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Empty builds the degenerate "empty tree" used by the deletability check
// of §4.5: a zero-length leaf at a given offset. Its name is intentionally
// distinct from any real pseudo-name or single-character terminal.
func Empty(offset int) *Node {
	return &Node{Name: "", Start: offset, End: offset}
}

// IsEmpty reports whether n is the degenerate empty tree.
func (n *Node) IsEmpty() bool {
	return n.Name == "" && len(n.Children) == 0 && n.Start == n.End
}

// Substitute returns a copy of root with the sub-range [old.Start,
// old.End) replaced by replacement, splicing at the top level where old
// actually sits (old must be a node reachable from root; the descent
// follows range containment — siblings never overlap, so a containing
// node is always unambiguous — and old itself is matched by pointer
// identity).
func Substitute(root, old, replacement *Node) *Node {
	if root.Start == old.Start && root.End == old.End && sameNode(root, old) {
		return replacement
	}
	if root.IsLeaf() {
		return root.Clone()
	}
	newChildren := make([]*Node, 0, len(root.Children))
	for _, c := range root.Children {
		if c.Start == old.Start && c.End == old.End && sameNode(c, old) {
			newChildren = append(newChildren, replacement)
			continue
		}
		if old.Start >= c.Start && old.End <= c.End && c.Start != c.End {
			newChildren = append(newChildren, Substitute(c, old, replacement))
			continue
		}
		newChildren = append(newChildren, c)
	}
	return rebuild(root.Name, newChildren)
}

func rebuild(name string, children []*Node) *Node {
	if len(children) == 0 {
		return &Node{Name: name}
	}
	return &Node{
		Name:     name,
		Children: children,
		Start:    children[0].Start,
		End:      children[len(children)-1].End,
	}
}

// sameNode is an identity check approximated by pointer equality; callers
// pass the exact *Node value they located earlier in the same tree.
func sameNode(a, b *Node) bool {
	return a == b
}
