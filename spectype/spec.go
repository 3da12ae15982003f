// Package spectype implements the Spec Checker of spec.md §4.3: a small
// structural schema language (primitive names, list-of, object-with-
// required-fields, union, any) checked against a runtime value.Value.
package spectype

import (
	"fmt"
	"strings"

	"pdl/value"
)

// Kind discriminates a Spec node.
type Kind int

const (
	KindAny Kind = iota
	KindPrimitive
	KindList
	KindObject
	KindUnion
)

// Spec is the structural schema checked against a Value (spec.md §3 "Spec
// types").
type Spec struct {
	kind      Kind
	primitive string   // "str" | "int" | "float" | "bool" | "null", when kind == KindPrimitive
	elem      *Spec    // list element spec, when kind == KindList
	fields    map[string]*Spec
	required  []string
	branches  []*Spec // when kind == KindUnion
}

func Any() *Spec                   { return &Spec{kind: KindAny} }
func Primitive(name string) *Spec  { return &Spec{kind: KindPrimitive, primitive: name} }
func ListOf(elem *Spec) *Spec       { return &Spec{kind: KindList, elem: elem} }
func Union(branches ...*Spec) *Spec { return &Spec{kind: KindUnion, branches: branches} }

// Object builds an object spec; required names a subset of fields' keys that
// must be present on the checked value.
func Object(fields map[string]*Spec, required []string) *Spec {
	return &Spec{kind: KindObject, fields: fields, required: required}
}

// FromNative decodes a `spec:` YAML/JSON field (as parsed into a generic Go
// value) into a *Spec. Accepted shapes: a bare string primitive name, a
// one-element list `[elem-spec]`, a mapping with a reserved "type": "union"
// key and "of": [...] branches, or a plain mapping treated as an object spec
// whose required fields are its own keys.
func FromNative(raw any) (*Spec, error) {
	switch v := raw.(type) {
	case nil:
		return Any(), nil
	case string:
		if v == "any" {
			return Any(), nil
		}
		return Primitive(v), nil
	case []any:
		if len(v) != 1 {
			return nil, fmt.Errorf("list spec must have exactly one element spec")
		}
		elem, err := FromNative(v[0])
		if err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case map[string]any:
		if t, ok := v["type"]; ok && t == "union" {
			ofRaw, _ := v["of"].([]any)
			branches := make([]*Spec, 0, len(ofRaw))
			for _, b := range ofRaw {
				bs, err := FromNative(b)
				if err != nil {
					return nil, err
				}
				branches = append(branches, bs)
			}
			return Union(branches...), nil
		}
		fields := make(map[string]*Spec, len(v))
		required := make([]string, 0, len(v))
		for k, fv := range v {
			fs, err := FromNative(fv)
			if err != nil {
				return nil, err
			}
			fields[k] = fs
			required = append(required, k)
		}
		return Object(fields, required), nil
	default:
		return nil, fmt.Errorf("unsupported spec literal %T", raw)
	}
}

// Mismatch is one Spec Checker failure (spec.md §4.3 message form).
type Mismatch struct {
	Path    string
	Message string
}

func (m Mismatch) String() string {
	if m.Path == "" {
		return m.Message
	}
	return fmt.Sprintf("%s: %s", m.Path, m.Message)
}

// Check verifies v conforms to s, returning every mismatch found via
// structural recursion into lists/objects (spec.md §4.3). Running Check
// twice on the same (value, spec) pair returns the same verdict (P6).
func Check(v value.Value, s *Spec) []Mismatch {
	return checkAt(v, s, "")
}

func checkAt(v value.Value, s *Spec, path string) []Mismatch {
	switch s.kind {
	case KindAny:
		return nil
	case KindPrimitive:
		if !primitiveMatches(v, s.primitive) {
			return []Mismatch{{Path: path, Message: fmt.Sprintf("%s should be of type <class '%s'>", v.String(), s.primitive)}}
		}
		return nil
	case KindList:
		if v.Kind() != value.KindList {
			return []Mismatch{{Path: path, Message: fmt.Sprintf("%s should be of type <class 'list'>", v.String())}}
		}
		var out []Mismatch
		for i, item := range v.AsList() {
			out = append(out, checkAt(item, s.elem, fmt.Sprintf("%s[%d]", path, i))...)
		}
		return out
	case KindObject:
		if v.Kind() != value.KindObject {
			return []Mismatch{{Path: path, Message: fmt.Sprintf("%s should be of type <class 'object'>", v.String())}}
		}
		obj, _ := v.AsObject()
		var out []Mismatch
		for _, name := range s.required {
			if _, ok := obj[name]; !ok {
				out = append(out, Mismatch{Path: path, Message: fmt.Sprintf("missing required field %q", name)})
			}
		}
		for name, fieldSpec := range s.fields {
			fv, ok := obj[name]
			if !ok {
				continue
			}
			fp := name
			if path != "" {
				fp = path + "." + name
			}
			out = append(out, checkAt(fv, fieldSpec, fp)...)
		}
		return out
	case KindUnion:
		for _, branch := range s.branches {
			if len(checkAt(v, branch, path)) == 0 {
				return nil
			}
		}
		names := make([]string, len(s.branches))
		for i, b := range s.branches {
			names[i] = b.describe()
		}
		return []Mismatch{{Path: path, Message: fmt.Sprintf("%s matches none of [%s]", v.String(), strings.Join(names, ", "))}}
	default:
		return []Mismatch{{Path: path, Message: "internal invariant: unknown spec kind"}}
	}
}

func (s *Spec) describe() string {
	switch s.kind {
	case KindAny:
		return "any"
	case KindPrimitive:
		return s.primitive
	case KindList:
		return "list[" + s.elem.describe() + "]"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

func primitiveMatches(v value.Value, name string) bool {
	switch name {
	case "str", "string":
		return v.Kind() == value.KindString
	case "int":
		return v.Kind() == value.KindInt
	case "float":
		return v.Kind() == value.KindFloat || v.Kind() == value.KindInt
	case "bool":
		return v.Kind() == value.KindBool
	case "null":
		return v.Kind() == value.KindNull
	default:
		return false
	}
}
