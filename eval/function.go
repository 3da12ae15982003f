package eval

import (
	"pdl/ast"
	"pdl/perr"
	"pdl/spectype"
	"pdl/trace"
	"pdl/value"
)

// evalFunction implements spec.md §4.1 "Function": binds the function value
// into scope under its declared name; does not evaluate the body; does not
// contribute to result or context. The closure is the defining scope itself
// (a live pointer, not a copy); evalCall clones it at call time, so the body
// sees the function's own binding and any later bindings in that scope,
// which lets a function call itself by name (spec.md §3 Function, §9
// "cyclic function references").
func evalFunction(block *ast.Block, scope *value.Scope, node *trace.Node) value.Value {
	fn := &value.Function{
		Name:    block.FunctionName,
		Params:  paramNames(block.Params),
		Body:    block.FunctionBody,
		Closure: scope,
	}
	fv := value.FunctionValue(fn)
	scope.Bind(block.FunctionName, fv)
	return value.Null()
}

func paramNames(params []ast.Param) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

// evalCall implements spec.md §4.1 "Call": resolves the function by name,
// evaluates each argument as a block, builds a call scope = closure ∪
// {param_i → arg_i}, spec-checks the arguments, evaluates the function body,
// then spec-checks the return value (spec.md §4.7 "copy-on-write at
// function-call boundaries" — Scope.Clone gives the callee its own frame).
// The specs checked are those written on the call block itself (see
// declaredParams); the function block's own param specs and return spec are
// not consulted.
func evalCall(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	fnVal, ok := scope.Get(block.CallName)
	if !ok || fnVal.Kind() != value.KindFunction {
		node.AddError(perr.UndefinedName(block.Loc, block.CallName).Error())
		return value.Null()
	}
	fn := fnVal.AsFunction()

	argValues := make(map[string]value.Value, len(block.ArgsOrder))
	for _, name := range block.ArgsOrder {
		argBlock := block.Args[name]
		v, childNode := Eval(argBlock, scope, role, st)
		node.AddChild(childNode)
		argValues[name] = v
	}

	callScope := fn.Closure.Clone()
	for _, paramName := range fn.Params {
		v, ok := argValues[paramName]
		if !ok {
			node.AddError(perr.Type(block.Loc, "missing argument %q in call to %q", paramName, block.CallName).Error())
			continue
		}
		checkParamSpec(block, paramName, v, node)
		callScope.Bind(paramName, v)
	}

	result, bodyNode := Eval(fn.Body, callScope, role, st)
	node.AddChild(bodyNode)

	checkReturnSpec(block, result, node)

	return result
}

func checkParamSpec(block *ast.Block, paramName string, v value.Value, node *trace.Node) {
	for _, p := range declaredParams(block) {
		if p.Name != paramName || p.Spec == nil {
			continue
		}
		s, err := spectype.FromNative(p.Spec)
		if err != nil {
			continue
		}
		for _, m := range spectype.Check(v, s) {
			node.AddError(perr.Type(block.Loc, "argument %q: %s", paramName, m.Message).Error())
		}
	}
}

func checkReturnSpec(block *ast.Block, result value.Value, node *trace.Node) {
	ret := declaredReturn(block)
	if ret == nil {
		return
	}
	s, err := spectype.FromNative(ret)
	if err != nil {
		return
	}
	for _, m := range spectype.Check(result, s) {
		node.AddError(perr.Type(block.Loc, "return value: %s", m.Message).Error())
	}
}

// declaredParams/declaredReturn read the `params`/`return` keys written on
// the call block itself; nothing copies them from the function block, and
// value.Function keeps only parameter names. A call block without those keys
// gets no argument or return checking.
func declaredParams(block *ast.Block) []ast.Param { return block.Params }
func declaredReturn(block *ast.Block) any         { return block.Return }
