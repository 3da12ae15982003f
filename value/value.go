// Package value defines the tagged value universe and scope model that the
// block evaluator operates over (spec.md §3).
package value

import "fmt"

// Kind discriminates the tagged Value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindObject
	KindFunction
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Value is the tagged sum Null|Bool|Int|Float|String|List|Object|Function|Error.
// Values are immutable by convention (spec.md §3); List and Object are copied
// on assignment by Scope.Bind to preserve lexical semantics (see §4.7).
type Value struct {
	kind     Kind
	b        bool
	i        int64
	f        float64
	s        string
	list     []Value
	obj      map[string]Value
	objOrder []string // preserves insertion order for serialization
	fn       *Function
	err      error
}

// Function is defined in function.go to avoid an import cycle with the block
// package; it is declared there and referenced here via the fn field's type.

func Null() Value                    { return Value{kind: KindNull} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func String(s string) Value          { return Value{kind: KindString, s: s} }
func ErrorValue(err error) Value     { return Value{kind: KindError, err: err} }

func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Object builds an Object value from ordered key/value pairs.
func Object(keys []string, items map[string]Value) Value {
	cp := make(map[string]Value, len(items))
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := items[k]
		if !ok {
			continue
		}
		cp[k] = v
		order = append(order, k)
	}
	return Value{kind: KindObject, obj: cp, objOrder: order}
}

// ObjectFromMap builds an Object from an unordered map (order is sorted-free;
// callers that care about deterministic order should use Object instead).
func ObjectFromMap(m map[string]Value) Value {
	order := make([]string, 0, len(m))
	for k := range m {
		order = append(order, k)
	}
	return Object(order, m)
}

func FunctionValue(fn *Function) Value { return Value{kind: KindFunction, fn: fn} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) AsBool() bool    { return v.b }
func (v Value) AsInt() int64    { return v.i }
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}
func (v Value) AsString() string      { return v.s }
func (v Value) AsList() []Value       { return v.list }
func (v Value) AsFunction() *Function { return v.fn }
func (v Value) AsError() error        { return v.err }

// AsObject returns the object's values and the declaration order of its keys.
func (v Value) AsObject() (map[string]Value, []string) { return v.obj, v.objOrder }

// Field performs attribute access into an Object; any other kind returns
// (zero Value, false). List indexing is done by Index. Used by the template
// engine's attribute and string-index access.
func (v Value) Field(name string) (Value, bool) {
	if v.kind == KindObject {
		val, ok := v.obj[name]
		return val, ok
	}
	return Value{}, false
}

// Index performs list indexing; out-of-range returns (Null, false).
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Truthy implements spec.md §4.2's boolean coercion rule:
// null, empty string, 0, empty list/object -> false; all else -> true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) > 0
	case KindObject:
		return len(v.obj) > 0
	default:
		return true
	}
}

// String renders the value the way the template/document concatenation
// machinery does when projecting a Value into text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindError:
		if v.err != nil {
			return v.err.Error()
		}
		return ""
	case KindList, KindObject, KindFunction:
		return fmt.Sprintf("%v", v.Native())
	default:
		return ""
	}
}

// Native converts a Value into a plain Go any (map[string]any / []any / ...),
// used by parsers, providers, and the Risor/expr code-block bridges.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Native()
		}
		return out
	case KindFunction:
		return v.fn
	case KindError:
		if v.err != nil {
			return v.err.Error()
		}
		return nil
	default:
		return nil
	}
}

// FromNative converts a plain Go value (as produced by encoding/json,
// gopkg.in/yaml.v3, gabs, or a provider) into a Value.
func FromNative(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int64:
		return Int(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromNative(e)
		}
		return List(items)
	case []Value:
		return List(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		items := make(map[string]Value, len(x))
		for k, e := range x {
			keys = append(keys, k)
			items[k] = FromNative(e)
		}
		return Object(keys, items)
	case map[string]Value:
		return ObjectFromMap(x)
	case error:
		return ErrorValue(x)
	default:
		return String(fmt.Sprintf("%v", x))
	}
}

// DeepCopy returns a structurally independent copy of a composite value so
// that assignment into a scope cannot be mutated through an aliased reference
// (spec.md §3's "composite values are copied on assignment").
func (v Value) DeepCopy() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, e := range v.list {
			items[i] = e.DeepCopy()
		}
		return List(items)
	case KindObject:
		items := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			items[k] = e.DeepCopy()
		}
		return Object(v.objOrder, items)
	default:
		return v
	}
}
