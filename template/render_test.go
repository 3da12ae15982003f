package template

import (
	"pdl/ast"
	"pdl/value"
	"testing"
)

func TestRender_SimpleVariable(t *testing.T) {
	scope := value.NewScope()
	scope.Bind("NAME", value.String("World"))

	out, errs := Render("Hello, {{ NAME }}!", scope, ast.Location{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "Hello, World!" {
		t.Errorf("Render() = %q, want %q", out, "Hello, World!")
	}
}

func TestRender_UndefinedKeepsOriginal(t *testing.T) {
	scope := value.NewScope()

	out, errs := Render("Tell me about {{ somevar }}?", scope, ast.Location{File: "p.yaml", Line: 3})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if out != "Tell me about {{ somevar }}?" {
		t.Errorf("Render() = %q, want original text retained", out)
	}
}

func TestRender_AttrAndIndex(t *testing.T) {
	scope := value.NewScope()
	scope.Bind("obj", value.FromNative(map[string]any{"a": "b"}))
	scope.Bind("list", value.FromNative([]any{"x", "y"}))

	out, errs := Render("{{ obj.a }}-{{ list[1] }}", scope, ast.Location{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out != "b-y" {
		t.Errorf("Render() = %q, want %q", out, "b-y")
	}
}

func TestEvalBool_Truthiness(t *testing.T) {
	scope := value.NewScope()
	scope.Bind("n", value.Int(0))
	scope.Bind("s", value.String(""))
	scope.Bind("ok", value.Bool(true))

	cases := []struct {
		expr string
		want bool
	}{
		{"ok", true},
		{"n", false},
		{"s", false},
		{"1 == 1", true},
		{"1 < 2 && ok", true},
		{"!ok", false},
	}
	for _, c := range cases {
		got, err := EvalBool(c.expr, scope, ast.Location{})
		if err != nil {
			t.Fatalf("EvalBool(%q) error: %v", c.expr, err)
		}
		if got != c.want {
			t.Errorf("EvalBool(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}
