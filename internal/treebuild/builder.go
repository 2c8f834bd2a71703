// Package treebuild implements the tree builder (component C): one pass
// per seed trace over a scope stack, producing the flat comparisons +
// method-map representation the tree miner (component D) folds into a
// derivation tree.
//
// Grounded on original_source/src/miner/tree_builder.py's TreeBuilder;
// the scope-stack push/pop/lookahead logic below mirrors
// add_trace_to_tree_list step for step.
package treebuild

import (
	"fmt"
	"strings"

	"github.com/nihei9/gramminer/internal/cfg"
	"github.com/nihei9/gramminer/internal/pseudoname"
	"github.com/nihei9/gramminer/internal/tracedata"
)

// Comparison is one watchpoint hit attributed to the scope active when it
// fired: the input offset, the byte observed there, and the numeric id of
// the owning scope within this trace's method map.
type Comparison struct {
	Offset  int
	Char    byte
	ScopeID int
}

// MethodMapEntry is one scope node: its pseudo-name (empty for the
// synthetic root) and the ids of its direct children, in the order they
// were opened.
type MethodMapEntry struct {
	ID       int
	Name     string
	Args     string
	Children []int
}

// Result is the per-seed output of the tree builder.
type Result struct {
	Comparisons []Comparison
	MethodMap   map[int]*MethodMapEntry
	InputStr    string
	Original    string
	Arg         string
}

// Builder walks traces against a pre-computed control-flow analysis. A
// single Builder is shared across every seed's trace so that pseudo-name
// ids assigned to loop headers and conditional branch points are globally
// consistent (the rest of the pipeline buckets occurrences by name).
type Builder struct {
	graph     *cfg.Graph
	functions map[string]*cfg.FunctionInfo
	loops     map[string][]*cfg.Loop
	idom      map[string]map[string]string

	// OriginalMimid selects between two loop-scope-sharing policies (see
	// §9's open question): when true, revisiting the same natural loop's
	// node set pops the previous iteration's scope and opens a sibling in
	// its place, with the last conditional-stack index bumped by one;
	// when false, every iteration opens a fresh, equally-numbered scope
	// nested under the previous one.
	OriginalMimid bool
	// DelayWatchpoints holds the most recent watchpoint hit and attributes
	// it to the scope active at the *next* hit, a workaround for tracers
	// that report watchpoints one instruction late.
	DelayWatchpoints bool

	pseudoIDs map[string]int
}

// New creates a Builder over the control-flow analysis produced by
// cfg.Build.
func New(res *cfg.BuildResult) *Builder {
	return &Builder{
		graph:     res.Graph,
		functions: res.Functions,
		loops:     res.Loops,
		idom:      res.Idom,
		pseudoIDs: map[string]int{},
	}
}

type scopeFrame struct {
	addr      string
	scopeAddr map[string]bool
	stackLen  int
	name      string
	id        int
}

// walkState is the mutable state threaded through one trace's walk.
type walkState struct {
	stack      []scopeFrame
	methodMap  map[int]*MethodMapEntry
	scopeCount int
}

func (w *walkState) top() scopeFrame {
	return w.stack[len(w.stack)-1]
}

func (w *walkState) pop() {
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *walkState) push(addr string, scopeAddr map[string]bool, stackLen int, name string) {
	id := w.scopeCount
	w.scopeCount++
	w.methodMap[id] = &MethodMapEntry{ID: id, Name: name}
	parent := w.methodMap[w.top().id]
	parent.Children = append(parent.Children, id)
	w.stack = append(w.stack, scopeFrame{addr: addr, scopeAddr: scopeAddr, stackLen: stackLen, name: name, id: id})
}

// Build runs the scope-stack walk over one trace.
func (b *Builder) Build(trace *tracedata.Trace) (*Result, error) {
	steps := trace.Records
	if len(steps) == 0 {
		return nil, fmt.Errorf("treebuild: empty trace for %s", trace.Arg)
	}

	w := &walkState{
		stack:      []scopeFrame{{addr: "0", scopeAddr: map[string]bool{}, stackLen: 0, name: ""}},
		methodMap:  map[int]*MethodMapEntry{0: {ID: 0, Name: ""}},
		scopeCount: 1,
	}

	var comparisons []Comparison
	entryDepth := steps[0].Depth()
	pendingOffset := -1

	emit := func(offset int, scopeID int) {
		comparisons = append(comparisons, Comparison{Offset: offset, Char: charAt(trace.Input, offset), ScopeID: scopeID})
	}

	for idx := range steps {
		elem := steps[idx]
		addr := elem.Address
		depth := elem.Depth()
		if depth < entryDepth {
			break
		}

		// (1) Open a method scope.
		if fn, ok := b.functions[addr]; ok && depth > w.top().stackLen {
			args := functionArgsLookahead(steps, idx, fn.Scope)
			w.push(addr, fn.Scope, depth, tracedata.SanitizeFunctionName(elem.FunctionName))
			w.methodMap[w.top().id].Args = args
		}

		// (2) Close scopes the current address/depth has left.
		for len(w.stack) > 1 && (!w.top().scopeAddr[addr] || depth < w.top().stackLen) {
			w.pop()
		}

		// (3) Open a loop scope.
		if candidates, ok := b.loops[addr]; ok {
			if loop, ok := cfg.SelectLoop(candidates, addresses(steps[idx:])); ok {
				b.openLoop(w, addr, depth, loop)
			}
		}

		// (4) Open an if/else scope.
		succ := b.graph.Succ(addr)
		if len(succ) > 1 && isSubset(succ, w.top().scopeAddr) && idx+1 < len(steps) {
			nextAddr := steps[idx+1].Address
			branches, scope := b.openIf(w.stack, addr)
			if branchIdx := cfg.BranchIndex(branches, nextAddr); branchIdx >= 0 {
				condStack := append(encodeCurrentScopeConditions(w.stack), -1)
				id := b.pseudoIfID(addr)
				name := pseudoname.EncodeControl(pseudoname.Control{
					Method:   currentFunctionName(w.stack),
					Kind:     pseudoname.KindIf,
					CID:      id,
					Alt:      branchIdx,
					CanEmpty: true,
					Stack:    condStack,
				})
				w.push(addr, scope, depth, name)
			}
		}

		// (5) Attribute watchpoint hits to the active scope.
		for _, offset := range elem.Watchpoints {
			if b.DelayWatchpoints {
				if pendingOffset >= 0 {
					emit(pendingOffset, w.top().id)
				}
				pendingOffset = offset
			} else {
				emit(offset, w.top().id)
			}
		}
	}
	if b.DelayWatchpoints && pendingOffset >= 0 {
		emit(pendingOffset, w.top().id)
	}

	return &Result{
		Comparisons: comparisons,
		MethodMap:   w.methodMap,
		InputStr:    trace.InputStr,
		Original:    trace.Original,
		Arg:         trace.Arg,
	}, nil
}

func (b *Builder) openLoop(w *walkState, addr string, depth int, loop *cfg.Loop) {
	id := b.pseudoLoopID(addr, loop)
	condStack := encodeCurrentScopeConditions(w.stack)

	if b.OriginalMimid && sameNodeSet(w.top().scopeAddr, loop.Nodes) {
		if len(condStack) > 0 {
			condStack[len(condStack)-1]++
		}
		w.pop()
	} else {
		condStack = append(condStack, 1)
	}

	name := pseudoname.EncodeControl(pseudoname.Control{
		Method:   currentFunctionName(w.stack),
		Kind:     pseudoname.KindWhile,
		CID:      id,
		Alt:      0,
		CanEmpty: true,
		Stack:    condStack,
	})
	w.push(addr, loop.Nodes, depth, name)
}

func (b *Builder) openIf(stack []scopeFrame, addr string) ([]string, map[string]bool) {
	fnEntry := currentFunctionEntry(stack)
	idom := b.idom[fnEntry]
	return cfg.IfElseScope(b.graph, idom, addr)
}

func (b *Builder) pseudoIfID(addr string) int {
	key := "if@" + addr
	if id, ok := b.pseudoIDs[key]; ok {
		return id
	}
	id := len(b.pseudoIDs)
	b.pseudoIDs[key] = id
	return id
}

func (b *Builder) pseudoLoopID(addr string, loop *cfg.Loop) int {
	key := fmt.Sprintf("while@%s#%s", addr, loop.Latch)
	if id, ok := b.pseudoIDs[key]; ok {
		return id
	}
	id := len(b.pseudoIDs)
	b.pseudoIDs[key] = id
	return id
}

// currentFunctionScope returns the nearest enclosing frame that is not a
// conditional (if/while) scope, per get_curent_function_scope.
func currentFunctionScope(stack []scopeFrame) scopeFrame {
	for i := len(stack) - 1; i >= 0; i-- {
		if _, ok := pseudoname.DecodeControl(stack[i].name); !ok {
			return stack[i]
		}
	}
	return stack[0]
}

func currentFunctionName(stack []scopeFrame) string {
	return currentFunctionScope(stack).name
}

func currentFunctionEntry(stack []scopeFrame) string {
	return currentFunctionScope(stack).addr
}

func encodeCurrentScopeConditions(stack []scopeFrame) []int {
	top := stack[len(stack)-1]
	if c, ok := pseudoname.DecodeControl(top.name); ok {
		return append([]int(nil), c.Stack...)
	}
	return nil
}

func functionArgsLookahead(steps []tracedata.Record, idx int, scope map[string]bool) string {
	args := steps[idx].FunctionArgs
	for i := idx + 1; i < len(steps); i++ {
		if !scope[steps[i].Address] {
			break
		}
		args = steps[i].FunctionArgs
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + "=" + a.Value
	}
	return strings.Join(parts, ",")
}

func addresses(steps []tracedata.Record) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Address
	}
	return out
}

func isSubset(xs []string, set map[string]bool) bool {
	for _, x := range xs {
		if !set[x] {
			return false
		}
	}
	return true
}

func sameNodeSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func charAt(input []byte, offset int) byte {
	if offset < 0 || offset >= len(input) {
		return 0
	}
	return input[offset]
}
