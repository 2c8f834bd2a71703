package cfg

// Dominators computes the immediate-dominator map of g using the
// Cooper-Harvey-Kennedy iterative algorithm. The entry node dominates
// itself and maps to itself. Nodes unreachable from the entry are
// omitted.
//
// Grounded on the classical compiler dataflow shape of
// fkuehnel-golang-cfg's regalloc_scc.go (the pack's only dominance/SCC
// reference); the fixed-point-over-reverse-postorder structure below
// follows that style rather than a recursive Lengauer-Tarjan variant.
func Dominators(g *Graph, entry string) map[string]string {
	rpo := reversePostorder(g, entry)
	if len(rpo) == 0 {
		return map[string]string{}
	}

	index := make(map[string]int, len(rpo))
	for i, n := range rpo {
		index[n] = i
	}
	pred := g.PredMap()

	idom := make(map[string]string, len(rpo))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, n := range rpo {
			if n == entry {
				continue
			}
			var newIdom string
			for _, p := range pred[n] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if newIdom == "" {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, index, newIdom, p)
			}
			if newIdom == "" {
				continue
			}
			if idom[n] != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom map[string]string, index map[string]int, a, b string) string {
	for a != b {
		for index[a] > index[b] {
			a = idom[a]
		}
		for index[b] > index[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(g *Graph, entry string) []string {
	visited := map[string]bool{}
	var post []string

	type frame struct {
		node     string
		children []string
		i        int
	}
	stack := []*frame{{node: entry, children: g.Succ(entry)}}
	visited[entry] = true
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.i < len(top.children) {
			c := top.children[top.i]
			top.i++
			if visited[c] {
				continue
			}
			visited[c] = true
			stack = append(stack, &frame{node: c, children: g.Succ(c)})
			continue
		}
		post = append(post, top.node)
		stack = stack[:len(stack)-1]
	}

	rpo := make([]string, len(post))
	for i, n := range post {
		rpo[len(post)-1-i] = n
	}
	return rpo
}

// Dominates reports whether a dominates b in the dominator tree idom
// (every node dominates itself).
func Dominates(idom map[string]string, a, b string) bool {
	if _, ok := idom[b]; !ok {
		return false
	}
	for n := b; ; {
		if n == a {
			return true
		}
		p, ok := idom[n]
		if !ok || p == n {
			return n == a
		}
		n = p
	}
}

// DomTreeChildren inverts idom into a parent -> children adjacency map.
func DomTreeChildren(idom map[string]string) map[string][]string {
	children := map[string][]string{}
	for n, p := range idom {
		if n == p {
			continue
		}
		children[p] = append(children[p], n)
	}
	return children
}

// DomTreeDescendants returns every strict and non-strict descendant of
// root in the dominator tree (root included).
func DomTreeDescendants(children map[string][]string, root string) map[string]bool {
	out := map[string]bool{root: true}
	stack := []string{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range children[n] {
			if out[c] {
				continue
			}
			out[c] = true
			stack = append(stack, c)
		}
	}
	return out
}
