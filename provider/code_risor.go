package provider

import (
	"context"
	"reflect"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"pdl/value"
)

// risorRunner is the `code` block's `lan: risor` / default provider: a
// general-purpose embedded scripting language standing in for the original
// language's `python` code blocks. Per spec.md's Non-goals ("no sandboxing
// of user code"), WithoutDefaultGlobals only removes the os/exec/file
// builtins the teacher's Interpreter also strips — the privilege posture is
// unchanged, the globals the evaluator injects are still fully available.
// The script's final expression value becomes the block's result, matching
// Risor's own program-value convention.
type risorRunner struct{}

func newRisorRunner() CodeRunner { return &risorRunner{} }

func (r *risorRunner) RunCode(ctx context.Context, source string, globals map[string]any) (value.Value, error) {
	converted := convertGlobals(globals)

	result, err := risor.Eval(ctx, source,
		risor.WithoutDefaultGlobals(),
		risor.WithGlobals(converted),
	)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromNative(objectToGo(result)), nil
}

// convertGlobals mirrors the teacher's Interpreter.convertGlobals: Go values
// pass through untouched except funcs (wrapped as Risor builtins) and maps
// containing funcs (wrapped as Risor modules), since Risor's VM cannot
// reflect.Func directly.
func convertGlobals(globals map[string]any) map[string]any {
	out := make(map[string]any, len(globals))
	for k, v := range globals {
		out[k] = goToRisor(k, v)
	}
	return out
}

func goToRisor(name string, v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(object.Object); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return wrapGoFunc(name, v)
	case reflect.Map:
		if m, ok := v.(map[string]any); ok {
			hasFunc := false
			for _, val := range m {
				if val != nil && reflect.TypeOf(val).Kind() == reflect.Func {
					hasFunc = true
					break
				}
			}
			if hasFunc {
				return mapToModule(name, m)
			}
			converted := make(map[string]any, len(m))
			for k, val := range m {
				converted[k] = goToRisor(k, val)
			}
			return converted
		}
		return v
	default:
		return v
	}
}

func wrapGoFunc(name string, fn any) *object.Builtin {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		goArgs := make([]reflect.Value, len(args))
		for i, arg := range args {
			goVal := objectToGo(arg)
			var expected reflect.Type
			switch {
			case i < fnType.NumIn():
				expected = fnType.In(i)
			case fnType.IsVariadic():
				expected = fnType.In(fnType.NumIn() - 1).Elem()
			}
			if expected != nil {
				goArgs[i] = convertToExpectedType(goVal, expected)
			} else {
				goArgs[i] = reflect.ValueOf(goVal)
			}
		}
		results := fnValue.Call(goArgs)
		if len(results) == 0 {
			return object.Nil
		}
		last := len(results) - 1
		if fnType.NumOut() > 0 && fnType.Out(last).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
			if !results[last].IsNil() {
				return object.NewError(results[last].Interface().(error))
			}
			if len(results) > 1 {
				return goValueToObject(results[0].Interface())
			}
			return object.Nil
		}
		return goValueToObject(results[0].Interface())
	})
}

func convertToExpectedType(val any, expected reflect.Type) reflect.Value {
	if val == nil {
		return reflect.Zero(expected)
	}
	actual := reflect.ValueOf(val)
	if actual.Type().AssignableTo(expected) {
		return actual
	}
	if actual.Type().ConvertibleTo(expected) {
		return actual.Convert(expected)
	}
	return actual
}

func goValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	obj := object.FromGoType(v)
	if obj == nil {
		return object.Nil
	}
	return obj
}

func mapToModule(name string, m map[string]any) *object.Module {
	contents := make(map[string]object.Object, len(m))
	for k, v := range m {
		if v == nil {
			contents[k] = object.Nil
			continue
		}
		if reflect.ValueOf(v).Kind() == reflect.Func {
			contents[k] = wrapGoFunc(name+"."+k, v)
		} else {
			contents[k] = goValueToObject(v)
		}
	}
	return object.NewBuiltinsModule(name, contents)
}

func objectToGo(obj object.Object) any {
	if obj == nil {
		return nil
	}
	switch o := obj.(type) {
	case *object.Map:
		m := make(map[string]any)
		for k, v := range o.Value() {
			m[k] = objectToGo(v)
		}
		return m
	case *object.List:
		items := o.Value()
		out := make([]any, len(items))
		for i, v := range items {
			out[i] = objectToGo(v)
		}
		return out
	case *object.NilType:
		return nil
	default:
		return obj.Interface()
	}
}
