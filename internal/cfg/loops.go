package cfg

import "sort"

// Loop is one natural loop: {header} union every node that can reach the
// latch without passing back through the header.
type Loop struct {
	Header string
	Latch  string
	Nodes  map[string]bool
}

// NaturalLoops finds every back edge in g (an edge u -> v where v
// dominates u) and computes its natural loop. Loops are grouped by
// header, since a header may host several nested natural loops (one per
// back edge that targets it).
func NaturalLoops(g *Graph, idom map[string]string) map[string][]*Loop {
	byHeader := map[string][]*Loop{}
	for _, u := range g.Nodes() {
		for _, v := range g.Succ(u) {
			if !Dominates(idom, v, u) {
				continue
			}
			byHeader[v] = append(byHeader[v], naturalLoop(g, u, v))
		}
	}
	for h := range byHeader {
		sort.Slice(byHeader[h], func(i, j int) bool {
			return byHeader[h][i].Latch < byHeader[h][j].Latch
		})
	}
	return byHeader
}

func naturalLoop(g *Graph, u, v string) *Loop {
	nodes := map[string]bool{v: true}
	if u == v {
		nodes[u] = true
		return &Loop{Header: v, Latch: u, Nodes: nodes}
	}

	pred := g.PredMap()
	stack := []string{u}
	nodes[u] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range pred[n] {
			if p == v || nodes[p] {
				continue
			}
			nodes[p] = true
			stack = append(stack, p)
		}
	}
	return &Loop{Header: v, Latch: u, Nodes: nodes}
}

// SelectLoop implements the header tie-break rule of §4.1: scan the raw,
// unfiltered sequence of addresses the trace visits from the header
// onward, skipping any address outside every candidate's node set, and
// progressively dropping candidates that don't contain an observed
// address. Returns as soon as exactly one candidate remains; returns
// ok=false ("no suitable loop") if the scan ends with zero or more than
// one candidate still standing.
//
// Grounded on original_source/src/miner/tree_builder.py's
// loop_lookahead, including its quirk of continuing to scan (rather than
// failing fast) once every candidate has been eliminated.
func SelectLoop(candidates []*Loop, subsequentAddrs []string) (*Loop, bool) {
	union := map[string]bool{}
	for _, c := range candidates {
		for n := range c.Nodes {
			union[n] = true
		}
	}

	remaining := append([]*Loop(nil), candidates...)
	for _, addr := range subsequentAddrs {
		if !union[addr] {
			continue
		}
		var next []*Loop
		for _, c := range remaining {
			if c.Nodes[addr] {
				next = append(next, c)
			}
		}
		remaining = next
		if len(remaining) == 1 {
			return remaining[0], true
		}
	}
	return nil, false
}
