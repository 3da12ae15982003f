package template

import (
	"fmt"
	"strconv"
	"strings"

	"pdl/ast"
	"pdl/perr"
	"pdl/value"
)

// UndefinedErr distinguishes "name not found"/"attribute not found" failures
// so the caller can recover and keep the original `{{ … }}` text (spec.md
// §4.2 "Template evaluation never aborts the enclosing block").
type UndefinedErr struct{ what string }

func (e *UndefinedErr) Error() string { return fmt.Sprintf("%s is undefined", e.what) }

func evalExpr(e expr, scope *value.Scope) (value.Value, error) {
	switch n := e.(type) {
	case identExpr:
		v, ok := scope.Get(n.name)
		if !ok {
			return value.Value{}, &UndefinedErr{what: n.name}
		}
		return v, nil
	case numberExpr:
		if strings.Contains(n.text, ".") {
			f, err := strconv.ParseFloat(n.text, 64)
			if err != nil {
				return value.Value{}, err
			}
			return value.Float(f), nil
		}
		i, err := strconv.ParseInt(n.text, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(i), nil
	case stringExpr:
		return value.String(n.text), nil
	case attrExpr:
		recv, err := evalExpr(n.recv, scope)
		if err != nil {
			return value.Value{}, err
		}
		v, ok := recv.Field(n.name)
		if !ok {
			return value.Value{}, &UndefinedErr{what: n.name}
		}
		return v, nil
	case indexExpr:
		recv, err := evalExpr(n.recv, scope)
		if err != nil {
			return value.Value{}, err
		}
		idx, err := evalExpr(n.idx, scope)
		if err != nil {
			return value.Value{}, err
		}
		if idx.Kind() == value.KindString {
			v, ok := recv.Field(idx.AsString())
			if !ok {
				return value.Value{}, &UndefinedErr{what: idx.AsString()}
			}
			return v, nil
		}
		v, ok := recv.Index(int(idx.AsInt()))
		if !ok {
			return value.Value{}, &UndefinedErr{what: fmt.Sprintf("index %d", idx.AsInt())}
		}
		return v, nil
	case callExpr:
		return evalCall(n, scope)
	case unaryExpr:
		inner, err := evalExpr(n.expr, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(!inner.Truthy()), nil
	case binaryExpr:
		return evalBinary(n, scope)
	default:
		return value.Value{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

// evalBinary implements the small comparison/boolean operator set spec.md
// §4.2 calls for. && and || short-circuit on Go-level truthiness.
func evalBinary(n binaryExpr, scope *value.Scope) (value.Value, error) {
	switch n.op {
	case "&&":
		left, err := evalExpr(n.left, scope)
		if err != nil {
			return value.Value{}, err
		}
		if !left.Truthy() {
			return value.Bool(false), nil
		}
		right, err := evalExpr(n.right, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.Truthy()), nil
	case "||":
		left, err := evalExpr(n.left, scope)
		if err != nil {
			return value.Value{}, err
		}
		if left.Truthy() {
			return value.Bool(true), nil
		}
		right, err := evalExpr(n.right, scope)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.Truthy()), nil
	}

	left, err := evalExpr(n.left, scope)
	if err != nil {
		return value.Value{}, err
	}
	right, err := evalExpr(n.right, scope)
	if err != nil {
		return value.Value{}, err
	}
	switch n.op {
	case "==":
		return value.Bool(valuesEqual(left, right)), nil
	case "!=":
		return value.Bool(!valuesEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		lf, rf := left.AsFloat(), right.AsFloat()
		if left.Kind() == value.KindString && right.Kind() == value.KindString {
			return value.Bool(compareStrings(n.op, left.AsString(), right.AsString())), nil
		}
		switch n.op {
		case "<":
			return value.Bool(lf < rf), nil
		case "<=":
			return value.Bool(lf <= rf), nil
		case ">":
			return value.Bool(lf > rf), nil
		default:
			return value.Bool(lf >= rf), nil
		}
	default:
		return value.Value{}, fmt.Errorf("unsupported operator %q", n.op)
	}
}

func compareStrings(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func valuesEqual(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		// allow numeric cross-kind comparison
		if (a.Kind() == value.KindInt || a.Kind() == value.KindFloat) &&
			(b.Kind() == value.KindInt || b.Kind() == value.KindFloat) {
			return a.AsFloat() == b.AsFloat()
		}
		return false
	}
	return a.String() == b.String()
}

// evalCall implements the small builtin function set the template grammar
// supports (spec.md §4.2 "function application for a small set of
// built-ins").
func evalCall(n callExpr, scope *value.Scope) (value.Value, error) {
	args := make([]value.Value, len(n.args))
	for i, a := range n.args {
		v, err := evalExpr(a, scope)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	switch n.name {
	case "len":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("len() takes exactly one argument")
		}
		switch args[0].Kind() {
		case value.KindString:
			return value.Int(int64(len(args[0].AsString()))), nil
		case value.KindList:
			return value.Int(int64(len(args[0].AsList()))), nil
		case value.KindObject:
			obj, _ := args[0].AsObject()
			return value.Int(int64(len(obj))), nil
		default:
			return value.Int(0), nil
		}
	case "upper":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("upper() takes exactly one argument")
		}
		return value.String(strings.ToUpper(args[0].String())), nil
	case "lower":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("lower() takes exactly one argument")
		}
		return value.String(strings.ToLower(args[0].String())), nil
	case "str":
		if len(args) != 1 {
			return value.Value{}, fmt.Errorf("str() takes exactly one argument")
		}
		return value.String(args[0].String()), nil
	default:
		return value.Value{}, fmt.Errorf("unknown function %q", n.name)
	}
}

// EvalBool evaluates src as a boolean-context expression, used by
// `if`/`until` conditions (spec.md §4.2). src is either a bare expression or
// one expression wrapped in a single `{{ }}` span.
func EvalBool(src string, scope *value.Scope, loc ast.Location) (bool, *perr.Error) {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "{{") && strings.HasSuffix(src, "}}") {
		src = src[2 : len(src)-2]
	}
	e, err := parseExpr(src)
	if err != nil {
		return false, perr.New(perr.KindType, loc, "invalid condition expression: %v", err)
	}
	v, err := evalExpr(e, scope)
	if err != nil {
		if u, ok := err.(*UndefinedErr); ok {
			return false, perr.UndefinedName(loc, u.what)
		}
		return false, perr.New(perr.KindType, loc, "%v", err)
	}
	return v.Truthy(), nil
}
