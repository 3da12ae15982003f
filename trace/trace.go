// Package trace implements the Trace Builder of spec.md §4.6: for every
// block evaluated, a node mirroring the input block's shape annotated with
// its result, error flag, and (for iterative blocks) per-iteration children.
// Grounded on the teacher's Execution.ID (a uuid.New().String() run
// identifier threaded through execution, runtime/execution.go) — Run pairs a
// root node with the same kind of per-run id. Node itself carries no id, and
// the evaluator returns a bare root Node without creating a Run.
package trace

import (
	"github.com/google/uuid"

	"pdl/ast"
)

// Node is one trace entry (spec.md §4.6, Invariant I1: "structural shape
// equals the input block with outputs filled in").
type Node struct {
	Kind         string           `json:"kind"`
	Loc          ast.Location     `json:"location,omitempty"`
	Result       any              `json:"result,omitempty"`
	HasError     bool             `json:"has_error"`
	Errors       []string         `json:"errors,omitempty"`
	Children     []*Node          `json:"children,omitempty"`
	Defs         map[string]*Node `json:"defs,omitempty"`
	Iteration    []*Node          `json:"trace,omitempty"` // per-iteration nodes for repeat/repeatUntil/for
	FallbackNode *Node            `json:"fallback,omitempty"`
}

// New creates a leaf node for block.
func New(block *ast.Block) *Node {
	return &Node{Kind: block.Kind, Loc: block.Loc}
}

// SetResult fills in the node's final value.
func (n *Node) SetResult(v any) { n.Result = v }

// AddError appends an error message and sets HasError; per spec.md
// Invariant I4, this propagates to every ancestor up to a fallback handler
// or the root, which callers do by calling AddChild/AddError up the call
// stack as they unwind.
func (n *Node) AddError(msg string) {
	n.HasError = true
	n.Errors = append(n.Errors, msg)
}

// AddChild appends a child trace node (sequence/document/array/object/etc.)
// and bubbles up its error flag.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
	if c.HasError {
		n.HasError = true
	}
}

// SetDef records the trace node produced while evaluating one `defs` entry.
func (n *Node) SetDef(name string, c *Node) {
	if n.Defs == nil {
		n.Defs = make(map[string]*Node)
	}
	n.Defs[name] = c
	if c.HasError {
		n.HasError = true
	}
}

// AddIteration appends a per-iteration trace node for repeat/repeatUntil/for
// blocks (spec.md P8 "Deterministic iteration").
func (n *Node) AddIteration(c *Node) {
	n.Iteration = append(n.Iteration, c)
	if c.HasError {
		n.HasError = true
	}
}

// AllErrors walks the node and its descendants collecting every error line:
// the node's own errors first, then its defs (sorted by name), children,
// iterations, and fallback. Errors recorded through the perr package are
// formatted as "<file>:<line> - <message>" (spec.md §7 "User-visible failure
// behavior"), with no prefix when the block has no file; the "evaluation
// cancelled" notice is recorded without a location.
func (n *Node) AllErrors() []string {
	var out []string
	out = append(out, n.Errors...)
	for _, name := range sortedKeys(n.Defs) {
		out = append(out, n.Defs[name].AllErrors()...)
	}
	for _, c := range n.Children {
		out = append(out, c.AllErrors()...)
	}
	for _, c := range n.Iteration {
		out = append(out, c.AllErrors()...)
	}
	if n.FallbackNode != nil {
		out = append(out, n.FallbackNode.AllErrors()...)
	}
	return out
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Stable-ish ordering without importing sort for a handful of keys;
	// defs are typically few and error ordering across them is not
	// semantically load-bearing once both streams have been collected.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// Run is the root of one evaluator invocation: a fresh UUID identifies the
// run the way the teacher's Execution.ID does.
type Run struct {
	ID   string
	Root *Node
}

func NewRun(root *Node) *Run {
	return &Run{ID: uuid.New().String(), Root: root}
}
