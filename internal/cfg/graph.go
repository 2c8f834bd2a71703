// Package cfg builds per-function control-flow graphs from instruction
// traces and exposes the dominator, natural-loop and if/else-scope
// utilities the tree builder needs to decide when to open and close scopes.
//
// Graph construction is grounded on the edge-list + adjacency-map shape
// used throughout the retrieved pack's compiler-flavored examples (e.g.
// fkuehnel-golang-cfg's regalloc_scc.go); there is no networkx-equivalent
// graph library in the ecosystem this module targets, so the graph is a
// plain adjacency map rather than a third-party graph type.
package cfg

// Graph is a directed multigraph over instruction addresses. Edges are
// stored as an adjacency map; duplicate edges are kept (the data model
// calls the CFG a multigraph) but dominator and loop computations only
// care about the distinct successor/predecessor sets, so those are
// derived on demand.
type Graph struct {
	succ  map[string][]string
	order []string
	seen  map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		succ: map[string][]string{},
		seen: map[string]bool{},
	}
}

// AddEdge records an edge a -> b, registering both endpoints as nodes.
func (g *Graph) AddEdge(a, b string) {
	g.addNode(a)
	g.addNode(b)
	g.succ[a] = append(g.succ[a], b)
}

// AddNode registers a as a node even if it has no outgoing edge yet
// (needed for single-instruction functions and loop headers with no
// internal successors).
func (g *Graph) AddNode(a string) {
	g.addNode(a)
}

func (g *Graph) addNode(a string) {
	if g.seen[a] {
		return
	}
	g.seen[a] = true
	g.order = append(g.order, a)
}

// Nodes returns every node in first-seen order, for deterministic
// iteration.
func (g *Graph) Nodes() []string {
	return g.order
}

// Succ returns the distinct successors of a, in first-seen order.
func (g *Graph) Succ(a string) []string {
	return dedup(g.succ[a])
}

// SuccMulti returns the raw (possibly repeated) successor list of a.
func (g *Graph) SuccMulti(a string) []string {
	return g.succ[a]
}

// Pred computes the distinct predecessors of a. Callers that need this
// repeatedly should use PredMap instead.
func (g *Graph) Pred(a string) []string {
	return g.PredMap()[a]
}

// PredMap builds the full predecessor map once.
func (g *Graph) PredMap() map[string][]string {
	pred := map[string][]string{}
	seen := map[[2]string]bool{}
	for _, n := range g.order {
		for _, s := range g.succ[n] {
			key := [2]string{n, s}
			if seen[key] {
				continue
			}
			seen[key] = true
			pred[s] = append(pred[s], n)
		}
	}
	return pred
}

func dedup(xs []string) []string {
	if len(xs) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}

// CanReach reports whether there is a path from -> to in the graph that
// never visits excluding (excluding may equal from or to; a zero-length
// path, from == to, counts as reaching unless from == excluding).
func (g *Graph) CanReach(from, to, excluding string) bool {
	if from == excluding {
		return false
	}
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range g.Succ(n) {
			if s == excluding || visited[s] {
				continue
			}
			if s == to {
				return true
			}
			visited[s] = true
			stack = append(stack, s)
		}
	}
	return false
}
