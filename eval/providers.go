package eval

import (
	"path/filepath"

	"pdl/ast"
	"pdl/perr"
	"pdl/trace"
	"pdl/value"
)

// evalCode implements spec.md §4.1 "Code": `lan` selects a provider; the
// `code` field is evaluated as a block to produce a source string, then
// handed to the provider with a snapshot of scope names as globals
// (spec.md §4.7 "Code blocks receive a snapshot of the scope; mutations
// they perform to their own execution namespace do not propagate back").
func evalCode(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	source, childNode := Eval(block.Code, scope, role, st)
	node.AddChild(childNode)

	runner, err := st.Providers.Code(block.Lan)
	if err != nil {
		node.AddError(perr.Provider(block.Loc, err, "%v", err).Error())
		return value.Null()
	}

	globals := scopeSnapshot(scope)
	result, err := runner.RunCode(st.Ctx, source.String(), globals)
	if err != nil {
		node.AddError(perr.Provider(block.Loc, err, "code execution failed: %v", err).Error())
		return value.Null()
	}
	return result
}

// scopeSnapshot copies the scope's locally bound names into a plain Go map
// for a code provider, so assignments the script makes to its copy of the
// globals map never reach back into the evaluator's Scope (P5).
func scopeSnapshot(scope *value.Scope) map[string]any {
	names := scope.Names()
	out := make(map[string]any, len(names))
	for _, n := range names {
		v, _ := scope.Get(n)
		out[n] = v.Native()
	}
	return out
}

// evalModel implements spec.md §4.1 "Model": evaluates `input` (default:
// the current context) to derive the prompt, applies default sampling
// parameters, invokes the model provider dispatched by platform prefix, and
// appends the generated text to context with role "assistant".
func evalModel(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	var promptText string
	if block.ModelInput != nil {
		v, childNode := Eval(block.ModelInput, scope, role, st)
		node.AddChild(childNode)
		promptText = v.String()
	}

	messages := scope.Context().Messages()
	if promptText != "" {
		messages = append(messages, value.ChatMessage{Role: "user", Content: promptText})
	}

	platform := platformOf(block.ModelID)
	gen, err := st.Providers.Model(platform)
	if err != nil {
		node.AddError(perr.Provider(block.Loc, err, "%v", err).Error())
		return value.Null()
	}

	var dataOpaque any
	if block.HasDataOpaque {
		dataOpaque = block.DataOpaque
	}

	var text string
	if block.HasMock {
		text = block.MockResponse
	} else {
		text, err = gen.GenerateText(st.Ctx, block.ModelID, messages, st.ModelDefaults(), dataOpaque)
		if err != nil {
			node.AddError(perr.Provider(block.Loc, err, "model generation failed: %v", err).Error())
			return value.Null()
		}
	}

	scope.Context().Append(value.ChatMessage{Role: "assistant", Content: text})
	return value.String(text)
}

// platformOf extracts the provider prefix from a model id of the form
// "platform/model-name" (spec.md §4.1 "dispatched by platform prefix"); a
// bare id with no prefix is treated as a mock for test/demo programs.
func platformOf(modelID string) string {
	for i := 0; i < len(modelID); i++ {
		if modelID[i] == '/' {
			return modelID[:i]
		}
	}
	return "mock"
}

// evalAPI implements spec.md §4.1 "Api": evaluate `input` to a string,
// perform an HTTP GET to `url + input`, parse the response as JSON.
func evalAPI(block *ast.Block, scope *value.Scope, role string, st *State, node *trace.Node) value.Value {
	var suffix string
	if block.APIInput != nil {
		v, childNode := Eval(block.APIInput, scope, role, st)
		node.AddChild(childNode)
		suffix = v.String()
	}
	result, _, err := st.Providers.HTTP().HTTPGet(st.Ctx, block.URL+suffix)
	if err != nil {
		node.AddError(perr.Provider(block.Loc, err, "%v", err).Error())
		return value.Null()
	}
	return result
}

// evalRead implements spec.md §4.1 "Read": reads from the declared path, or
// from standard input honoring `multiline`, optionally prompting with
// `message`. A relative path is resolved against st.BaseDir when one is set.
func evalRead(block *ast.Block, scope *value.Scope, st *State, node *trace.Node) value.Value {
	path := block.ReadPath
	if path != "" && st.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(st.BaseDir, path)
	}
	text, err := st.Providers.Reader().ReadInput(st.Ctx, path, block.Multiline, block.Message)
	if err != nil {
		node.AddError(perr.Provider(block.Loc, err, "%v", err).Error())
		return value.Null()
	}
	return value.String(text)
}
