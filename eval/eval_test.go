package eval

import (
	"context"
	"testing"

	"pdl/ast"
	"pdl/provider"
	"pdl/value"
)

func newTestState() *State {
	return NewState(context.Background(), nil, provider.NewRegistry(nil, &provider.RegistryConfig{}))
}

// TestEval_HelloWithGet mirrors spec.md §8 scenario 1: document
// ["Hello,", {def:"NAME", document:[{model:…, mock_response:" World"}]},
// "!\n", "Tell me about", {get:"NAME"}, "?\n"].
func TestEval_HelloWithGet(t *testing.T) {
	nameDoc := &ast.Block{Kind: "document", Body: []*ast.Block{
		{Kind: "model", ModelID: "mock/demo", HasMock: true, MockResponse: " World"},
	}}
	root := &ast.Block{Kind: "document", Body: []*ast.Block{
		{Kind: "literal", Text: "Hello,"},
		{Kind: "document", Assign: "NAME", Body: nameDoc.Body},
		{Kind: "literal", Text: "!\n"},
		{Kind: "literal", Text: "Tell me about"},
		{Kind: "get", GetName: "NAME"},
		{Kind: "literal", Text: "?\n"},
	}}

	scope := value.NewScope()
	st := newTestState()
	result, node := Eval(root, scope, "", st)

	if node.HasError {
		t.Fatalf("unexpected trace errors: %v", node.AllErrors())
	}
	if result.Kind() != value.KindString {
		t.Fatalf("result kind = %v, want string", result.Kind())
	}
}

// TestEval_UndefinedGet mirrors spec.md §8 scenario 2.
func TestEval_UndefinedGet(t *testing.T) {
	root := &ast.Block{Kind: "document", Body: []*ast.Block{
		{Kind: "get", GetName: "somevar"},
	}}
	scope := value.NewScope()
	st := newTestState()
	_, node := Eval(root, scope, "", st)

	if !node.HasError {
		t.Fatal("expected has_error = true")
	}
	found := false
	for _, e := range node.AllErrors() {
		if contains(e, "somevar") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want one mentioning somevar", node.AllErrors())
	}
}

// TestEval_ForUnequalLists mirrors spec.md §8 scenario 5.
func TestEval_ForUnequalLists(t *testing.T) {
	two := &ast.Block{Kind: "data", Raw: true, DataValue: []any{"a", "b"}}
	three := &ast.Block{Kind: "data", Raw: true, DataValue: []any{"x", "y", "z"}}
	root := &ast.Block{
		Kind:          "for",
		Fors:          map[string]*ast.Block{"a": two, "b": three},
		ForsOrder:     []string{"a", "b"},
		RepeatBody:    &ast.Block{Kind: "literal", Text: "."},
		IterationType: "text",
	}
	scope := value.NewScope()
	st := newTestState()
	_, node := Eval(root, scope, "", st)

	if !node.HasError {
		t.Fatal("expected has_error = true for unequal list lengths")
	}
}

// TestEval_CodeSharedScopeNoMutate mirrors spec.md §8 scenario 6 / P5.
func TestEval_CodeSharedScopeNoMutate(t *testing.T) {
	root := &ast.Block{Kind: "document", Body: []*ast.Block{
		{Kind: "document", Assign: "NAME", Body: []*ast.Block{{Kind: "literal", Text: "foo"}}},
		{Kind: "code", Lan: "expr", Code: &ast.Block{Kind: "literal", Text: `NAME + "oof"`}},
		{Kind: "get", GetName: "NAME"},
	}}
	scope := value.NewScope()
	st := newTestState()
	_, node := Eval(root, scope, "", st)
	if node.HasError {
		t.Fatalf("unexpected errors: %v", node.AllErrors())
	}
	v, ok := scope.Get("NAME")
	if !ok || v.AsString() != "foo" {
		t.Errorf("NAME after code block = %v, want unchanged \"foo\"", v)
	}
}

// TestEval_PartialOutputOnError exercises P1: text children after an
// erroring child still contribute their output.
func TestEval_PartialOutputOnError(t *testing.T) {
	root := &ast.Block{Kind: "document", Body: []*ast.Block{
		{Kind: "literal", Text: "before "},
		{Kind: "get", GetName: "missing"},
		{Kind: "literal", Text: "after"},
	}}
	scope := value.NewScope()
	st := newTestState()
	result, node := Eval(root, scope, "", st)
	if !node.HasError {
		t.Fatal("expected has_error = true")
	}
	if result.String() != "before after" {
		t.Errorf("result = %q, want \"before after\"", result.String())
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
