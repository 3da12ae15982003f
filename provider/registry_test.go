package provider

import (
	"context"
	"testing"

	"pdl/value"
)

func TestMockModelProvider_GenerateText(t *testing.T) {
	m := &mockModelProvider{}
	out, err := m.GenerateText(context.Background(), "any", nil, ModelDefaults{}, " World")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != " World" {
		t.Errorf("GenerateText() = %q, want %q", out, " World")
	}
}

func TestRegistry_ModelLookup(t *testing.T) {
	r := NewRegistry(nil, &RegistryConfig{})
	if _, err := r.Model("mock"); err != nil {
		t.Errorf("Model(mock): %v", err)
	}
	if _, err := r.Model("nonexistent"); err == nil {
		t.Error("expected error for unregistered platform")
	}
}

func TestRegistry_NeverFailsOnMissingCredentials(t *testing.T) {
	// Constructing the registry with no env vars set must not error or
	// panic; only a call that needs bam/watsonx/openai credentials should
	// fail (spec.md §6).
	r := NewRegistry(nil, &RegistryConfig{})
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
}

func TestExprRunner_RunCode(t *testing.T) {
	runner := newExprRunner()
	out, err := runner.RunCode(context.Background(), "1 + 2", map[string]any{})
	if err != nil {
		t.Fatalf("RunCode: %v", err)
	}
	if out.AsInt() != 3 {
		t.Errorf("RunCode() = %v, want 3", out)
	}
}

func TestRisorRunner_RunCode(t *testing.T) {
	runner := newRisorRunner()
	out, err := runner.RunCode(context.Background(), `name := "foo"; name + "bar"`, map[string]any{})
	if err != nil {
		t.Fatalf("RunCode: %v", err)
	}
	if out.Kind() != value.KindString || out.AsString() != "foobar" {
		t.Errorf("RunCode() = %v, want foobar", out)
	}
}
