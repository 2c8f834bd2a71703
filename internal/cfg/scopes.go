package cfg

import "sort"

// IfElseScope computes the scope of a conditional node c: every successor
// of c, union the dominator-tree descendants of each successor, where the
// dominator tree idom is rooted at the nearest enclosing function's entry.
// The caller is responsible for checking that c actually has ≥2 successors
// that all lie within the current scope before calling this.
func IfElseScope(g *Graph, idom map[string]string, c string) (branches []string, scope map[string]bool) {
	succ := g.Succ(c)
	if len(succ) < 2 {
		return nil, nil
	}
	branches = append([]string(nil), succ...)
	sort.Strings(branches)

	children := DomTreeChildren(idom)
	scope = map[string]bool{}
	for _, s := range branches {
		for d := range DomTreeDescendants(children, s) {
			scope[d] = true
		}
	}
	return branches, scope
}

// BranchIndex returns the rank of addr among the sorted successor
// addresses of a branch point, or -1 if addr is not one of them.
func BranchIndex(branches []string, addr string) int {
	for i, b := range branches {
		if b == addr {
			return i
		}
	}
	return -1
}
