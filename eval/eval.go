package eval

import (
	"pdl/ast"
	"pdl/parsepipe"
	"pdl/perr"
	"pdl/spectype"
	"pdl/trace"
	"pdl/value"
)

// Eval is the Block Evaluator's public contract (spec.md §4.1):
// eval(block, scope, state) → (result, trace). The running chat Context
// lives inside scope (Scope.Context), so it is threaded implicitly rather
// than as a separate return value. role is the
// message role inherited from the nearest enclosing `message` block (empty
// at the top level, spec.md §3 Context).
//
// Every phase below follows the seven-step order of spec.md §4.1: defs,
// body, parser, spec, contribution, assign, fallback.
func Eval(block *ast.Block, scope *value.Scope, role string, st *State) (value.Value, *trace.Node) {
	node := trace.New(block)

	// 1. Defs phase (spec.md I3: available to body and later defs, in order).
	for _, name := range block.DefsOrder {
		sub := block.Defs[name]
		v, childNode := Eval(sub, scope, role, st)
		node.SetDef(name, childNode)
		scope.Bind(name, v)
	}

	// 2. Body phase: dispatch on kind.
	result := dispatch(block, scope, role, st, node)

	// 3. Parser phase.
	if block.ParserSpec != nil && result.Kind() == value.KindString {
		spec, err := parsepipe.SpecFromNative(block.ParserSpec)
		if err != nil {
			node.AddError(err.Error())
		} else {
			parsed, perrv := parsepipe.Run(spec, result.AsString(), block.Loc)
			if perrv != nil {
				node.AddError(perrv.Error())
				// raw string is kept per spec.md §4.4 "the original string
				// remains available" — result is left untouched.
			} else {
				result = parsed
			}
		}
	}

	// 4. Spec phase (mismatch does not abort evaluation, spec.md §4.1 step 4).
	if block.Spec != nil {
		spec, err := spectype.FromNative(block.Spec)
		if err == nil {
			mismatches := spectype.Check(result, spec)
			if len(mismatches) > 0 {
				node.AddError(perr.Type(block.Loc, "Type errors during spec checking").Error())
				for _, m := range mismatches {
					node.AddError(perr.Type(block.Loc, "%s", m.Message).Error())
				}
			}
		}
	}

	// 5. Contribution phase.
	contrib := effectiveContribute(block)
	if contrib.Context {
		scope.Context().Append(value.ChatMessage{Role: role, Content: result.String()})
	}

	// 6. Assign phase.
	if block.Assign != "" {
		scope.Bind(block.Assign, result)
	}

	// 7. Fallback phase.
	if node.HasError && block.Fallback != nil {
		fbResult, fbNode := Eval(block.Fallback, scope, role, st)
		node.FallbackNode = fbNode
		result = fbResult
		node.HasError = true // diagnostic flag persists even though output was replaced
	}

	node.SetResult(result.Native())
	return result, node
}

// effectiveContribute resolves the contribution actually applied for a
// block. An explicit `contribute` is honored verbatim; absent one, spec.md
// §3/§6's stated default is both RESULT and CONTEXT — but a block whose
// body phase already recurses into a child Eval call carrying the same
// chat context (sequence/document/array/object aggregating their children,
// if/repeat/repeatUntil/for/call/include evaluating a body or callee whose
// own phase 5 already ran, message re-dispatching its body under a new
// role) would otherwise append the identical content to context a second
// time at the parent. The original interpreter avoids this the same way:
// only leaf prompts append to context (pdl_interpreter.py process_prompts/
// process_block; PromptsBlock itself never does). `model` similarly
// appends its generated text under a forced "assistant" role itself
// (evalModel) rather than through this generic phase, so its default
// suppresses the duplicate here too. `function` contributes neither
// result nor context at all (spec.md §4.1 Function).
func effectiveContribute(block *ast.Block) ast.ContributeTarget {
	if block.Contribute != nil {
		return *block.Contribute
	}
	return defaultContribute(block.Kind)
}

func defaultContribute(kind string) ast.ContributeTarget {
	switch kind {
	case "function":
		return ast.ContributeTarget{}
	case "sequence", "document", "array", "object", "if", "repeat", "repeatUntil", "for", "call", "message", "include", "model":
		return ast.ContributeTarget{Result: ast.DefaultContribute.Result, Context: false}
	default:
		return ast.DefaultContribute
	}
}
