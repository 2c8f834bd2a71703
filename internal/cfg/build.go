package cfg

import "sort"

// TraceStep is the minimal view of a trace record the graph builder needs:
// just enough to walk the call-depth transitions of §4.1. Packages that
// hold the richer tracedata.Record type adapt to this locally so that cfg
// has no dependency on the trace wire format. Stack is the record's
// return-address stack, innermost (most recently pushed) entry first.
type TraceStep struct {
	Address      string
	FunctionName string
	Depth        int
	Stack        []string
}

// FunctionInfo collects what the rest of the pipeline needs to know about
// one traced function: its entry address, sanitized name, and the set of
// addresses observed while a frame rooted at that entry was active.
type FunctionInfo struct {
	Entry string
	Name  string
	Scope map[string]bool
}

// BuildResult is the combined output of building control-flow graphs from
// every seed's trace: the single global graph, one FunctionInfo per
// distinct entry address, and natural loops grouped by header.
type BuildResult struct {
	Graph     *Graph
	Functions map[string]*FunctionInfo
	Loops     map[string][]*Loop
	Idom      map[string]map[string]string // per function entry
}

// Build constructs the shared control-flow graph and per-function scope
// sets across every trace's steps, then runs dominator and natural-loop
// analysis rooted at each discovered function entry.
//
// Grounded on original_source/src/miner/graph_utils.py's
// build_control_flow_graphs_from_traces / all_natural_loops: a single
// graph accumulated across all traces. Function entries and per-function
// scope sets are keyed by the actual instruction address at which a call
// frame began, but the graph edge recorded for the call transition itself
// points at the innermost entry of the record's own return-address stack
// — the address execution resumes at in the caller once the call
// returns — not at the callee's entry address. This is deliberate: it
// keeps a call from ever creating a graph edge into the callee's own
// entry, so a recursive function never acquires a spurious back edge (and
// therefore a spurious natural loop) at its own entry merely by calling
// itself.
func Build(traces [][]TraceStep) *BuildResult {
	g := New()
	functions := map[string]*FunctionInfo{}

	for _, steps := range traces {
		if len(steps) == 0 {
			continue
		}
		entryDepth := steps[0].Depth

		type frame struct {
			entry string
			depth int
		}
		root := steps[0]
		g.AddNode(root.Address)
		fn := ensureFunction(functions, root.Address, root.FunctionName)
		fn.Scope[root.Address] = true
		stack := []frame{{entry: root.Address, depth: entryDepth}}

		prevAddr := root.Address
		prevDepth := entryDepth
		for i := 1; i < len(steps); i++ {
			s := steps[i]
			if s.Depth < entryDepth {
				break
			}
			switch {
			case s.Depth > prevDepth:
				callEdgeTarget := s.Address
				if len(s.Stack) > 0 {
					callEdgeTarget = s.Stack[0]
				}
				g.AddEdge(prevAddr, callEdgeTarget)
				ensureFunction(functions, s.Address, s.FunctionName)
				stack = append(stack, frame{entry: s.Address, depth: s.Depth})
			case s.Depth == prevDepth:
				g.AddEdge(prevAddr, s.Address)
			default:
				for len(stack) > 0 && stack[len(stack)-1].depth > s.Depth {
					stack = stack[:len(stack)-1]
				}
			}
			top := stack[len(stack)-1]
			functions[top.entry].Scope[s.Address] = true
			prevAddr = s.Address
			prevDepth = s.Depth
		}
	}

	entries := make([]string, 0, len(functions))
	for e := range functions {
		entries = append(entries, e)
	}
	sort.Strings(entries)

	idomByEntry := map[string]map[string]string{}
	loops := map[string][]*Loop{}
	for _, entry := range entries {
		idom := Dominators(g, entry)
		idomByEntry[entry] = idom
		for header, ls := range NaturalLoops(g, idom) {
			loops[header] = ls
		}
	}

	return &BuildResult{
		Graph:     g,
		Functions: functions,
		Loops:     loops,
		Idom:      idomByEntry,
	}
}

func ensureFunction(functions map[string]*FunctionInfo, entry, name string) *FunctionInfo {
	fn, ok := functions[entry]
	if !ok {
		fn = &FunctionInfo{Entry: entry, Name: name, Scope: map[string]bool{}}
		functions[entry] = fn
	}
	return fn
}
