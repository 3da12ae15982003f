package eval

import (
	"strings"

	"pdl/ast"
	"pdl/template"
	"pdl/trace"
	"pdl/value"
)

// evalLiteral renders the block's text through the Template Engine
// (spec.md §4.1 "Literal string"). Undefined variables leave the original
// `{{ … }}` span in the string and record an error on the trace node.
func evalLiteral(block *ast.Block, scope *value.Scope, node *trace.Node) value.Value {
	rendered, errs := template.Render(block.Text, scope, block.Loc)
	for _, e := range errs {
		node.AddError(e.Error())
	}
	return value.String(rendered)
}

// evalTextContainer implements spec.md §4.1 "Sequence / Document": children
// evaluated left-to-right, scope/context flow through, result is the string
// concatenation of RESULT-contributing children. Per spec.md §7's
// partial-output policy (P1), every child is evaluated regardless of
// earlier siblings' errors.
func evalTextContainer(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	var out strings.Builder
	for _, child := range block.Body {
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		v, childNode := Eval(child, scope, role, st)
		node.AddChild(childNode)
		if childContributesResult(child) {
			out.WriteString(v.String())
		}
	}
	return value.String(out.String())
}

func childContributesResult(b *ast.Block) bool {
	if b.Contribute != nil {
		return b.Contribute.Result
	}
	return defaultContribute(b.Kind).Result
}

// evalArray implements spec.md §4.1 "Array": children evaluated
// left-to-right, result is a list of child results.
func evalArray(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	items := make([]value.Value, 0, len(block.Body))
	for _, child := range block.Body {
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		v, childNode := Eval(child, scope, role, st)
		node.AddChild(childNode)
		items = append(items, v)
	}
	return value.List(items)
}

// evalObject implements spec.md §4.1 "Object": each field value is
// evaluated and the result is the mapping of key→child-result.
func evalObject(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	items := make(map[string]value.Value, len(block.ObjectKeys))
	for _, key := range block.ObjectKeys {
		child := block.ObjectVals[key]
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		v, childNode := Eval(child, scope, role, st)
		node.AddChild(childNode)
		items[key] = v
	}
	return value.Object(block.ObjectKeys, items)
}
