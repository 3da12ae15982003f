package template

import (
	"strings"

	"pdl/ast"
	"pdl/perr"
	"pdl/value"
)

// Render expands every `{{ expr }}` span in src against scope (spec.md
// §4.1 "Literal string", §4.2). On a per-span failure the original
// `{{ … }}` text is retained in the output and the error is appended to the
// returned slice; rendering continues with the remaining spans.
func Render(src string, scope *value.Scope, loc ast.Location) (string, []*perr.Error) {
	var out strings.Builder
	var errs []*perr.Error
	rest := src
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			out.WriteString(rest)
			break
		}
		end += start
		out.WriteString(rest[:start])
		raw := rest[start+2 : end]
		expanded, err := renderOne(raw, scope, loc)
		if err != nil {
			errs = append(errs, err)
			out.WriteString("{{" + raw + "}}")
		} else {
			out.WriteString(expanded)
		}
		rest = rest[end+2:]
	}
	return out.String(), errs
}

func renderOne(raw string, scope *value.Scope, loc ast.Location) (string, *perr.Error) {
	e, err := parseExpr(strings.TrimSpace(raw))
	if err != nil {
		return "", perr.New(perr.KindType, loc, "invalid template expression %q: %v", raw, err)
	}
	v, err := evalExpr(e, scope)
	if err != nil {
		if u, ok := err.(*UndefinedErr); ok {
			return "", perr.UndefinedName(loc, u.what)
		}
		return "", perr.New(perr.KindType, loc, "%v", err)
	}
	return v.String(), nil
}

// HasTemplate reports whether s contains a template span, used by the `data`
// block's raw=false recursive expansion to decide whether to descend into a
// string leaf at all.
func HasTemplate(s string) bool {
	return strings.Contains(s, "{{") && strings.Contains(s, "}}")
}
