package eval

import (
	"pdl/ast"
	"pdl/perr"
	"pdl/trace"
	"pdl/value"
)

// dispatch implements spec.md §4.1's "Per-kind rules" body phase. Each
// branch is grounded on the matching subsection of spec.md §4.1.
func dispatch(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	switch block.Kind {
	case "literal":
		return evalLiteral(block, scope, node)
	case "sequence", "document":
		return evalTextContainer(block, scope, role, st, node)
	case "array":
		return evalArray(block, scope, role, st, node)
	case "object":
		return evalObject(block, scope, role, st, node)
	case "data":
		return evalData(block, scope, node)
	case "get":
		return evalGet(block, scope, node)
	case "if":
		return evalIf(block, scope, role, st, node)
	case "repeat":
		return evalRepeat(block, scope, role, st, node)
	case "repeatUntil":
		return evalRepeatUntil(block, scope, role, st, node)
	case "for":
		return evalFor(block, scope, role, st, node)
	case "function":
		return evalFunction(block, scope, node)
	case "call":
		return evalCall(block, scope, role, st, node)
	case "code":
		return evalCode(block, scope, role, st, node)
	case "model":
		return evalModel(block, scope, role, st, node)
	case "api":
		return evalAPI(block, scope, role, st, node)
	case "read":
		return evalRead(block, scope, st, node)
	case "include":
		return evalInclude(block, scope, role, st, node)
	case "message":
		return evalMessage(block, scope, st, node)
	default:
		node.AddError(perr.Internal(block.Loc, "unknown block kind %q", block.Kind).Error())
		return value.Null()
	}
}
