package eval

import (
	"strings"

	"pdl/ast"
	"pdl/perr"
	"pdl/template"
	"pdl/trace"
	"pdl/value"
)

// aggregate combines per-iteration results per spec.md §4.1 "iteration_type
// (text|array|lastOf)".
func aggregate(kind string, results []value.Value) value.Value {
	switch kind {
	case "array":
		return value.List(results)
	case "lastOf":
		if len(results) == 0 {
			return value.Null()
		}
		return results[len(results)-1]
	default: // text
		var out strings.Builder
		for _, r := range results {
			out.WriteString(r.String())
		}
		return value.String(out.String())
	}
}

// evalRepeat implements spec.md §4.1 "Repeat (counted)": the body is
// evaluated exactly num_iterations times, extending the running scope and
// context as if inlined (i.e. the same scope is threaded through, not a
// fresh child per iteration).
func evalRepeat(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	results := make([]value.Value, 0, block.NumIterations)
	for i := 0; i < block.NumIterations; i++ {
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		v, iterNode := Eval(block.RepeatBody, scope, role, st)
		node.AddIteration(iterNode)
		results = append(results, v)
	}
	return aggregate(block.IterationType, results)
}

// evalRepeatUntil implements spec.md §4.1 "RepeatUntil": the body runs at
// least once; the `until` condition is checked after each iteration.
func evalRepeatUntil(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	var results []value.Value
	for {
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		v, iterNode := Eval(block.RepeatBody, scope, role, st)
		node.AddIteration(iterNode)
		results = append(results, v)

		stop, err := template.EvalBool(block.Until, scope, block.Loc)
		if err != nil {
			node.AddError(err.Error())
			break
		}
		if stop {
			break
		}
	}
	return aggregate(block.IterationType, results)
}

// evalFor implements spec.md §4.1 "For": all iterables must be lists of
// equal length; a non-list iterable emits "must be lists" (once per
// non-list) and aborts before lengths are compared, otherwise a length
// mismatch emits "must be of the same length" and aborts; the trace for what
// already ran is still emitted
// (spec.md §7 "Iterative blocks abort their iteration on iterable errors
// but still emit trace").
func evalFor(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	lists := make(map[string][]value.Value, len(block.ForsOrder))
	ok := true
	for _, name := range block.ForsOrder {
		iterableBlock := block.Fors[name]
		v, childNode := Eval(iterableBlock, scope, role, st)
		node.AddChild(childNode)
		if v.Kind() != value.KindList {
			node.AddError(perr.Iterable(block.Loc, "Values inside the For block must be lists").Error())
			ok = false
			continue
		}
		lists[name] = v.AsList()
	}
	if !ok {
		return value.String("")
	}

	length := -1
	for _, name := range block.ForsOrder {
		l := len(lists[name])
		if length == -1 {
			length = l
		} else if l != length {
			node.AddError(perr.Iterable(block.Loc, "Lists inside the For block must be of the same length").Error())
			return value.String("")
		}
	}
	if length == -1 {
		length = 0
	}

	results := make([]value.Value, 0, length)
	for i := 0; i < length; i++ {
		if st.Cancelled() {
			node.AddError("evaluation cancelled")
			break
		}
		for _, name := range block.ForsOrder {
			scope.Bind(name, lists[name][i])
		}
		v, iterNode := Eval(block.RepeatBody, scope, role, st)
		node.AddIteration(iterNode)
		results = append(results, v)
	}
	return aggregate(block.IterationType, results)
}
