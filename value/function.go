package value

import "pdl/ast"

// Function is the Value payload for a `function` block: its parameter names,
// its body block, and the lexical scope it closes over (spec.md §3 Function,
// §9 "cyclic function references"). Closing over *Scope, not a copy, lets two
// functions defined in the same `defs` block call each other.
type Function struct {
	Name    string
	Params  []string
	Body    *ast.Block
	Closure *Scope
}
