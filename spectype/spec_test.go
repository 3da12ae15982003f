package spectype

import (
	"pdl/value"
	"testing"
)

func TestCheck_PrimitiveMismatch(t *testing.T) {
	s, err := FromNative("int")
	if err != nil {
		t.Fatalf("FromNative: %v", err)
	}
	mismatches := Check(value.String("hello"), s)
	if len(mismatches) != 1 {
		t.Fatalf("got %d mismatches, want 1", len(mismatches))
	}
	want := "hello should be of type <class 'int'>"
	if mismatches[0].Message != want {
		t.Errorf("Message = %q, want %q", mismatches[0].Message, want)
	}
}

func TestCheck_Idempotent(t *testing.T) {
	s, _ := FromNative(map[string]any{"name": "str"})
	v := value.FromNative(map[string]any{"name": "ok"})
	first := Check(v, s)
	second := Check(v, s)
	if len(first) != len(second) {
		t.Fatalf("non-idempotent check: %v vs %v", first, second)
	}
}

func TestCheck_ListOf(t *testing.T) {
	s, _ := FromNative([]any{"int"})
	v := value.FromNative([]any{1, 2, "x"})
	mismatches := Check(v, s)
	if len(mismatches) != 1 {
		t.Fatalf("got %d mismatches, want 1", len(mismatches))
	}
}

func TestCheck_Union(t *testing.T) {
	s, _ := FromNative(map[string]any{"type": "union", "of": []any{"int", "str"}})
	if len(Check(value.String("x"), s)) != 0 {
		t.Error("string branch should match")
	}
	if len(Check(value.Bool(true), s)) == 0 {
		t.Error("bool should not match int|str union")
	}
}
