package eval

import (
	"pdl/ast"
	"pdl/perr"
	"pdl/trace"
	"pdl/value"
)

// evalInclude implements spec.md §4.1 "Include": loads and parses the
// referenced PDL file, then evaluates its root against the current scope
// and context.
func evalInclude(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	if st.Load == nil {
		node.AddError(perr.Internal(block.Loc, "include: no loader configured").Error())
		return value.Null()
	}
	root, err := st.Load(block.IncludePath)
	if err != nil {
		node.AddError(perr.Wrap(perr.KindValidation, block.Loc, err, "include %q: %v", block.IncludePath, err).Error())
		return value.Null()
	}
	v, childNode := Eval(root, scope, role, st)
	node.AddChild(childNode)
	return v
}

// evalMessage implements spec.md §4.1 "Message": sets the message role for
// all CONTEXT contributions of its body. Each such contribution is appended
// as its own message under this role; the message block appends no combined
// message of its own (its default contribution excludes CONTEXT, see
// defaultContribute), and returns the body's result. The new role applies
// only to this block's own subtree (role inheritance, SPEC_FULL.md §4): nested `message` blocks pick
// their own role the same way, overriding the parent's for their own body.
func evalMessage(block *ast.Block, scope *value.Scope, st *State, node *trace.Node) value.Value {
	v, childNode := Eval(block.MessageBody, scope, block.Role, st)
	node.AddChild(childNode)
	return v
}
