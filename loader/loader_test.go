package loader

import "testing"

func TestParse_LiteralShorthand(t *testing.T) {
	b, err := Parse(`"hello {{ NAME }}"`, "prog.pdl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.Kind != "literal" || b.Text != "hello {{ NAME }}" {
		t.Fatalf("got %+v", b)
	}
}

func TestParse_Document(t *testing.T) {
	src := `
document:
  - "Hello,"
  - get: NAME
`
	b, err := Parse(src, "prog.pdl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.Kind != "document" || len(b.Body) != 2 {
		t.Fatalf("got %+v", b)
	}
	if b.Body[1].Kind != "get" || b.Body[1].GetName != "NAME" {
		t.Fatalf("second child = %+v", b.Body[1])
	}
}

func TestParse_FunctionMissingReturn(t *testing.T) {
	src := `
function: greet
params:
  - name: who
body: "hi {{ who }}"
`
	_, err := Parse(src, "prog.pdl")
	if err == nil {
		t.Fatal("expected missing-return error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if ve.Message != "Missing required field: return" {
		t.Errorf("message = %q", ve.Message)
	}
}

func TestParse_IfThenElse(t *testing.T) {
	src := `
if: "{{ X }}"
then: "yes"
else: "no"
`
	b, err := Parse(src, "prog.pdl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if b.Condition != "{{ X }}" || b.Then.Text != "yes" || b.Else.Text != "no" {
		t.Fatalf("got %+v", b)
	}
}

func TestParse_ForFields(t *testing.T) {
	src := `
for:
  a:
    data: [1, 2]
    raw: true
  b:
    data: [3, 4]
    raw: true
repeat: "{{ a }}-{{ b }}"
iteration_type: array
`
	b, err := Parse(src, "prog.pdl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(b.ForsOrder) != 2 || b.IterationType != "array" {
		t.Fatalf("got %+v", b)
	}
}
