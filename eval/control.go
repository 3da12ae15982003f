package eval

import (
	"pdl/ast"
	"pdl/perr"
	"pdl/template"
	"pdl/trace"
	"pdl/value"
)

// evalData implements spec.md §4.1 "Data": a literal value returned
// verbatim when raw=true, or with every string leaf template-expanded when
// raw=false (spec.md §9 Open Question (b): the error is emitted and the
// unexpanded `{{ … }}` is preserved in the output on a per-leaf basis).
func evalData(block *ast.Block, scope *value.Scope, node *trace.Node) value.Value {
	if block.Raw {
		return value.FromNative(block.DataValue)
	}
	expanded := expandNative(block.DataValue, scope, block.Loc, node)
	return value.FromNative(expanded)
}

func expandNative(v any, scope *value.Scope, loc ast.Location, node *trace.Node) any {
	switch x := v.(type) {
	case string:
		if !template.HasTemplate(x) {
			return x
		}
		rendered, errs := template.Render(x, scope, loc)
		for _, e := range errs {
			node.AddError(e.Error())
		}
		return rendered
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = expandNative(e, scope, loc, node)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = expandNative(e, scope, loc, node)
		}
		return out
	default:
		return x
	}
}

// evalGet implements spec.md §4.1 "Get": look up block.GetName in scope;
// missing key is an undefined-name error.
func evalGet(block *ast.Block, scope *value.Scope, node *trace.Node) value.Value {
	v, ok := scope.Get(block.GetName)
	if !ok {
		node.AddError(perr.UndefinedName(block.Loc, block.GetName).Error())
		return value.Null()
	}
	return v
}

// evalIf implements spec.md §4.1 "If / Then / Else": condition evaluated by
// the Template Engine in boolean mode.
func evalIf(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	truth, err := template.EvalBool(block.Condition, scope, block.Loc)
	if err != nil {
		node.AddError(err.Error())
		return value.String("")
	}
	if truth {
		v, childNode := Eval(block.Then, scope, role, st)
		node.AddChild(childNode)
		return v
	}
	if block.Else != nil {
		v, childNode := Eval(block.Else, scope, role, st)
		node.AddChild(childNode)
		return v
	}
	return value.String("")
}
