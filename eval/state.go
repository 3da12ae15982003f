// Package eval implements the Block Evaluator of spec.md §4.1: the
// recursive tree-walking interpreter orchestrating the Template Engine,
// Spec Checker, Parser Pipeline, Provider Registry, and Trace Builder.
// Grounded on the teacher's StepExecutor.ExecuteStep dispatch-by-kind
// switch (runtime/engine/dsl/step_executor.go), generalized from a flat
// step list to a recursive block tree.
package eval

import (
	"context"
	"log/slog"

	"pdl/ast"
	"pdl/provider"
)

// LoadFunc resolves an `include` path to a parsed Block, injected so eval
// never imports the loader package directly (spec.md §1 treats AST loading
// as an external collaborator; this keeps that boundary real rather than
// just a package comment).
type LoadFunc func(path string) (*ast.Block, error)

// State carries interpreter-wide flags through a run (spec.md §4.1 "state
// carries interpreter flags: trace-on/off, batch size, yield handler for
// streaming").
type State struct {
	Ctx          context.Context
	Logger       *slog.Logger
	Providers    *provider.Registry
	TraceEnabled bool
	Yield        provider.YieldHandler
	BaseDir      string // directory `include`/`read` relative paths resolve against
	defaults     provider.ModelDefaults
	Load         LoadFunc
}

// ModelDefaults returns the default sampling parameters applied to any
// `model` block that does not override them (spec.md §6).
func (s *State) ModelDefaults() provider.ModelDefaults { return s.defaults }

// SetModelDefaults overrides the default sampling parameters (e.g. loaded
// from a program's own config section).
func (s *State) SetModelDefaults(d provider.ModelDefaults) { s.defaults = d }

// Cancelled reports whether the host has asked evaluation to stop (spec.md
// §5 "Cancellation is cooperative... checks at every block boundary").
func (s *State) Cancelled() bool {
	if s.Ctx == nil {
		return false
	}
	select {
	case <-s.Ctx.Done():
		return true
	default:
		return false
	}
}

func NewState(ctx context.Context, logger *slog.Logger, providers *provider.Registry) *State {
	if logger == nil {
		logger = slog.Default()
	}
	var defaults provider.ModelDefaults
	// InitializeConfig applies the creasty/defaults struct tags; it cannot
	// fail on a zero-value ModelDefaults with no raw overrides.
	_ = provider.InitializeConfig(&defaults, nil)
	return &State{Ctx: ctx, Logger: logger, Providers: providers, TraceEnabled: true, defaults: defaults}
}
