package parsepipe

import (
	"pdl/ast"
	"pdl/perr"
	"testing"
)

func TestRun_JSON(t *testing.T) {
	spec := &Spec{Kind: "json"}
	v, err := Run(spec, `{"a": 1, "b": [1,2]}`, ast.Location{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	obj, _ := v.AsObject()
	if obj["a"].AsInt() != 1 {
		t.Errorf("a = %v, want 1", obj["a"])
	}
}

func TestRun_YAML(t *testing.T) {
	spec := &Spec{Kind: "yaml"}
	v, err := Run(spec, "name: foo\nnum: 3\n", ast.Location{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	obj, _ := v.AsObject()
	if obj["name"].AsString() != "foo" {
		t.Errorf("name = %v, want foo", obj["name"])
	}
}

func TestRun_RegexFindAll(t *testing.T) {
	spec := &Spec{Kind: "regex", Pattern: `\d+`, Mode: RegexFindAll}
	v, err := Run(spec, "a1 b22 c333", ast.Location{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(v.AsList()) != 3 {
		t.Fatalf("got %d matches, want 3", len(v.AsList()))
	}
}

func TestRun_InvalidJSON(t *testing.T) {
	spec := &Spec{Kind: "json"}
	_, err := Run(spec, "{not json", ast.Location{File: "p.pdl", Line: 5})
	if err == nil {
		t.Fatal("expected parser error")
	}
	if err.Kind != perr.KindParser {
		t.Errorf("Kind = %v, want %v", err.Kind, perr.KindParser)
	}
}
