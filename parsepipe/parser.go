// Package parsepipe implements the Parser Pipeline of spec.md §4.4: a tagged
// union of post-processors (`json`, `yaml`, regex, nested-pdl) that turn a
// generated string into a structured value.Value.
package parsepipe

import (
	"regexp"

	"github.com/Jeffail/gabs/v2"
	"gopkg.in/yaml.v3"

	"pdl/ast"
	"pdl/perr"
	"pdl/value"
)

// RegexMode selects how a RegexParser collects matches (spec.md §4.4).
type RegexMode string

const (
	RegexFindAll RegexMode = "findall"
	RegexMatch   RegexMode = "match"
	RegexSearch  RegexMode = "search"
)

// Spec describes one parser invocation as decoded from a block's `parser`
// field. Kind is one of "json", "yaml", "regex", "pdl".
type Spec struct {
	Kind    string
	Pattern string    // regex
	Mode    RegexMode // regex
	PDL     string    // nested pdl document text, when Kind == "pdl"
}

// SpecFromNative decodes a `parser:` field. A bare string names the parser
// kind directly ("json", "yaml"); a mapping carries regex/pdl parameters.
func SpecFromNative(raw any) (*Spec, error) {
	switch v := raw.(type) {
	case string:
		return &Spec{Kind: v}, nil
	case map[string]any:
		kind, _ := v["kind"].(string)
		s := &Spec{Kind: kind}
		if p, ok := v["pattern"].(string); ok {
			s.Pattern = p
		}
		if m, ok := v["mode"].(string); ok {
			s.Mode = RegexMode(m)
		} else {
			s.Mode = RegexFindAll
		}
		if pdl, ok := v["pdl"].(string); ok {
			s.PDL = pdl
		}
		return s, nil
	default:
		return nil, errUnsupportedParserSpec
	}
}

var errUnsupportedParserSpec = &simpleErr{"unsupported parser spec literal"}

type simpleErr struct{ msg string }

func (e *simpleErr) Error() string { return e.msg }

// Run applies spec to src, returning the parsed Value or a located parser
// error (spec.md §4.4 "Failure produces a parse error with location; the
// original string remains available.").
func Run(spec *Spec, src string, loc ast.Location) (value.Value, *perr.Error) {
	switch spec.Kind {
	case "json":
		return runJSON(src, loc)
	case "yaml":
		return runYAML(src, loc)
	case "regex":
		return runRegex(spec, src, loc)
	case "pdl":
		// Nested-PDL parsing returns the input text unchanged as a string.
		// Nothing in this module evaluates it as a sub-program (eval's parser
		// phase keeps the returned string as the block result), and
		// spec.PDL is not read.
		return value.String(src), nil
	default:
		return value.Value{}, perr.New(perr.KindParser, loc, "unknown parser kind %q", spec.Kind)
	}
}

func runJSON(src string, loc ast.Location) (value.Value, *perr.Error) {
	container, err := gabs.ParseJSON([]byte(src))
	if err != nil {
		return value.Value{}, perr.Parser(loc, err, "json")
	}
	return value.FromNative(container.Data()), nil
}

func runYAML(src string, loc ast.Location) (value.Value, *perr.Error) {
	var out any
	if err := yaml.Unmarshal([]byte(src), &out); err != nil {
		return value.Value{}, perr.Parser(loc, err, "yaml")
	}
	return value.FromNative(normalizeYAML(out)), nil
}

// normalizeYAML converts yaml.v3's map[string]interface{} (already the
// default for string-keyed maps) recursively, and map[interface{}]interface{}
// on the rare path where it surfaces, into map[string]any so value.FromNative
// can ingest it uniformly.
func normalizeYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalizeYAML(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeYAML(e)
			}
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return x
	}
}

func runRegex(spec *Spec, src string, loc ast.Location) (value.Value, *perr.Error) {
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return value.Value{}, perr.Parser(loc, err, "regex")
	}
	switch spec.Mode {
	case RegexMatch:
		idx := re.FindStringSubmatchIndex(src)
		if idx == nil || idx[0] != 0 {
			return value.Value{}, perr.New(perr.KindParser, loc, "regex did not match at start of string")
		}
		return submatchValue(re.FindStringSubmatch(src)), nil
	case RegexSearch:
		m := re.FindStringSubmatch(src)
		if m == nil {
			return value.Value{}, perr.New(perr.KindParser, loc, "regex did not match")
		}
		return submatchValue(m), nil
	default: // findall
		all := re.FindAllStringSubmatch(src, -1)
		items := make([]value.Value, len(all))
		for i, m := range all {
			items[i] = submatchValue(m)
		}
		return value.List(items), nil
	}
}

func submatchValue(m []string) value.Value {
	if len(m) == 1 {
		return value.String(m[0])
	}
	items := make([]value.Value, len(m))
	for i, s := range m {
		items[i] = value.String(s)
	}
	return value.List(items)
}
