package provider

import (
	"context"

	"github.com/expr-lang/expr"

	"pdl/value"
)

// exprRunner is the `code` block's `lan: expr` provider: a narrow,
// side-effect-free expression language, grounded on the teacher's yaml
// engine (runtime/engine/yaml) which uses expr-lang for its
// ExpressionEvaluator. It is a good fit for lightweight per-step
// arithmetic/boolean code blocks that do not need Risor's full scripting
// surface. Distinct from the Template Engine (template package), which
// never delegates to a host evaluator — a `code` block explicitly names an
// external language provider, so `expr` legitimately fills one provider slot
// the way `risor`/`python`/`command` fill others.
type exprRunner struct{}

func newExprRunner() CodeRunner { return &exprRunner{} }

func (e *exprRunner) RunCode(ctx context.Context, source string, globals map[string]any) (value.Value, error) {
	program, err := expr.Compile(source, expr.Env(globals))
	if err != nil {
		return value.Value{}, err
	}
	out, err := expr.Run(program, globals)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromNative(out), nil
}
