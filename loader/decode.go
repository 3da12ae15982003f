package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"pdl/ast"
)

// decodeBlock turns one YAML node into a Block. Per spec.md §6 a block on
// disk is a mapping with exactly one discriminator key from `discriminators`
// plus any of the shared keys; a bare scalar is shorthand for a literal
// string, and a bare sequence is shorthand for a `sequence` of its entries
// (both forms appear throughout example PDL programs the way a bare string
// step appears throughout the teacher's own flow YAML).
func decodeBlock(node *yaml.Node, file string) (*ast.Block, error) {
	node = resolveAlias(node)
	loc := ast.Location{File: file, Line: node.Line}

	switch node.Kind {
	case yaml.ScalarNode:
		return &ast.Block{Kind: "literal", Loc: loc, Text: node.Value}, nil
	case yaml.SequenceNode:
		body, err := decodeBlockList(node, file)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Kind: "sequence", Loc: loc, Body: body}, nil
	case yaml.MappingNode:
		return decodeMapping(node, file, loc)
	default:
		return nil, fmt.Errorf("%s:%d - unsupported node kind", file, node.Line)
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func decodeBlockList(node *yaml.Node, file string) ([]*ast.Block, error) {
	out := make([]*ast.Block, 0, len(node.Content))
	for _, c := range node.Content {
		b, err := decodeBlock(c, file)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// fields indexes a mapping node's key/value pairs by name, preserving
// declaration order separately for callers that need it (defs, object keys,
// args, for-names).
type fields struct {
	order []string
	vals  map[string]*yaml.Node
}

func mappingFields(node *yaml.Node) fields {
	f := fields{vals: map[string]*yaml.Node{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		f.order = append(f.order, key)
		f.vals[key] = node.Content[i+1]
	}
	return f
}

func (f fields) get(name string) (*yaml.Node, bool) {
	v, ok := f.vals[name]
	return v, ok
}

func (f fields) native(name string) (any, bool, error) {
	n, ok := f.get(name)
	if !ok {
		return nil, false, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, true, err
	}
	return v, true, nil
}

func (f fields) str(name string) (string, bool) {
	n, ok := f.get(name)
	if !ok {
		return "", false
	}
	return n.Value, true
}

func (f fields) bool(name string, def bool) bool {
	n, ok := f.get(name)
	if !ok {
		return def
	}
	var v bool
	if err := n.Decode(&v); err != nil {
		return def
	}
	return v
}

func decodeMapping(node *yaml.Node, file string, loc ast.Location) (*ast.Block, error) {
	f := mappingFields(node)

	// A handful of shared/sibling field names legitimately coincide with
	// another kind's discriminator name (a `model` block's opaque `data`
	// sibling, a `read` block's `message` prompt, a `for` block's `repeat`
	// body) — so kind is resolved by first match in a fixed priority order,
	// not by scanning for exactly-one discriminator key.
	var kind string
	for _, d := range discriminators {
		if _, ok := f.vals[d]; ok {
			kind = d
			break
		}
	}
	if kind == "" {
		return nil, &ValidationError{File: file, Line: node.Line, Message: "Missing required field: kind"}
	}
	if err := checkAllowedFields(f, kind, file, node.Line); err != nil {
		return nil, err
	}

	b := &ast.Block{Kind: kind, Loc: loc}

	if v, ok := f.str("description"); ok {
		b.Description = v
	}
	if v, ok, err := f.native("spec"); err != nil {
		return nil, err
	} else if ok {
		b.Spec = v
	}
	if v, ok, err := f.native("parser"); err != nil {
		return nil, err
	} else if ok {
		b.ParserSpec = v
	}
	if v, ok := f.str("def"); ok {
		b.Assign = v
	}
	if n, ok := f.get("contribute"); ok {
		ct, err := decodeContribute(n)
		if err != nil {
			return nil, err
		}
		b.Contribute = ct
	}
	if n, ok := f.get("defs"); ok {
		defs, order, err := decodeDefs(n, file)
		if err != nil {
			return nil, err
		}
		b.Defs, b.DefsOrder = defs, order
	}
	if n, ok := f.get("fallback"); ok {
		fb, err := decodeBlock(n, file)
		if err != nil {
			return nil, err
		}
		b.Fallback = fb
	}

	if err := decodeKindFields(b, f, node, file); err != nil {
		return nil, err
	}
	return b, nil
}

// checkAllowedFields rejects any mapping key that is neither the block's own
// discriminator, a sharedKeys entry, nor one of that kind's declared sibling
// fields (kindFields) — spec.md §6's "Field not allowed: <name>" validator
// error.
func checkAllowedFields(f fields, kind string, file string, line int) error {
	allowed := map[string]bool{kind: true}
	for k := range sharedKeys {
		allowed[k] = true
	}
	for _, k := range kindFields[kind] {
		allowed[k] = true
	}
	for _, k := range f.order {
		if !allowed[k] {
			return fieldNotAllowed(file, line, k)
		}
	}
	return nil
}

func decodeContribute(n *yaml.Node) (*ast.ContributeTarget, error) {
	var names []string
	if n.Kind == yaml.SequenceNode {
		if err := n.Decode(&names); err != nil {
			return nil, err
		}
	} else {
		names = []string{n.Value}
	}
	ct := &ast.ContributeTarget{}
	for _, name := range names {
		switch name {
		case "RESULT", "result":
			ct.Result = true
		case "CONTEXT", "context":
			ct.Context = true
		}
	}
	return ct, nil
}

func decodeDefs(n *yaml.Node, file string) (map[string]*ast.Block, []string, error) {
	f := mappingFields(n)
	defs := map[string]*ast.Block{}
	for _, name := range f.order {
		b, err := decodeBlock(f.vals[name], file)
		if err != nil {
			return nil, nil, err
		}
		defs[name] = b
	}
	return defs, f.order, nil
}

// decodeKindFields fills in the kind-specific fields of b given the block's
// discriminator value node (f.vals[b.Kind]) and any sibling keys.
func decodeKindFields(b *ast.Block, f fields, node *yaml.Node, file string) error {
	disc := f.vals[b.Kind]

	switch b.Kind {
	case "literal":
		b.Text = disc.Value

	case "sequence", "document":
		body, err := decodeBlockList(disc, file)
		if err != nil {
			return err
		}
		b.Body = body

	case "array":
		body, err := decodeBlockList(disc, file)
		if err != nil {
			return err
		}
		b.Body = body

	case "object":
		keys, vals, err := decodeObjectFields(disc, file)
		if err != nil {
			return err
		}
		b.ObjectKeys, b.ObjectVals = keys, vals

	case "data":
		var v any
		if err := disc.Decode(&v); err != nil {
			return err
		}
		b.DataValue = v
		b.Raw = f.bool("raw", false)

	case "get":
		b.GetName = disc.Value

	case "if":
		b.Condition = disc.Value
		if n, ok := f.get("then"); ok {
			blk, err := decodeBlock(n, file)
			if err != nil {
				return err
			}
			b.Then = blk
		} else {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: then"}
		}
		if n, ok := f.get("else"); ok {
			blk, err := decodeBlock(n, file)
			if err != nil {
				return err
			}
			b.Else = blk
		}

	case "repeat":
		body, err := decodeBlock(disc, file)
		if err != nil {
			return err
		}
		b.RepeatBody = body
		if n, ok := f.get("num_iterations"); ok {
			var v int
			if err := n.Decode(&v); err != nil {
				return err
			}
			b.NumIterations = v
		} else {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: num_iterations"}
		}
		b.IterationType = iterationTypeOrDefault(f)

	case "repeatUntil":
		body, err := decodeBlock(disc, file)
		if err != nil {
			return err
		}
		b.RepeatBody = body
		until, ok := f.str("until")
		if !ok {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: until"}
		}
		b.Until = until
		b.IterationType = iterationTypeOrDefault(f)

	case "for":
		names, iterables, err := decodeForsFields(disc, file)
		if err != nil {
			return err
		}
		b.Fors, b.ForsOrder = iterables, names
		n, ok := f.get("repeat")
		if !ok {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: repeat"}
		}
		body, err := decodeBlock(n, file)
		if err != nil {
			return err
		}
		b.RepeatBody = body
		b.IterationType = iterationTypeOrDefault(f)

	case "function":
		b.FunctionName = disc.Value
		if n, ok := f.get("params"); ok {
			params, err := decodeParams(n)
			if err != nil {
				return err
			}
			b.Params = params
		}
		if v, ok, err := f.native("return"); err != nil {
			return err
		} else if ok {
			b.Return = v
		} else {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: return"}
		}
		n, ok := f.get("body")
		if !ok {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: body"}
		}
		body, err := decodeBlock(n, file)
		if err != nil {
			return err
		}
		b.FunctionBody = body

	case "call":
		b.CallName = disc.Value
		if n, ok := f.get("args"); ok {
			args, order, err := decodeArgs(n, file)
			if err != nil {
				return err
			}
			b.Args, b.ArgsOrder = args, order
		}
		if n, ok := f.get("params"); ok {
			params, err := decodeParams(n)
			if err != nil {
				return err
			}
			b.Params = params
		}
		if v, ok, err := f.native("return"); err != nil {
			return err
		} else if ok {
			b.Return = v
		}

	case "code":
		code, err := decodeBlock(disc, file)
		if err != nil {
			return err
		}
		b.Code = code
		lan, ok := f.str("lan")
		if !ok {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: lan"}
		}
		b.Lan = lan

	case "model":
		b.ModelID = disc.Value
		if n, ok := f.get("input"); ok {
			in, err := decodeBlock(n, file)
			if err != nil {
				return err
			}
			b.ModelInput = in
		}
		if v, ok := f.str("mock_response"); ok {
			b.MockResponse = v
			b.HasMock = true
		}
		if v, ok, err := f.native("data"); err != nil {
			return err
		} else if ok {
			b.DataOpaque = v
			b.HasDataOpaque = true
		}

	case "api":
		b.URL = disc.Value
		if n, ok := f.get("input"); ok {
			in, err := decodeBlock(n, file)
			if err != nil {
				return err
			}
			b.APIInput = in
		}

	case "read":
		if disc.Value != "" && disc.Tag != "!!null" {
			b.ReadPath = disc.Value
		}
		b.Multiline = f.bool("multiline", false)
		if v, ok := f.str("message"); ok {
			b.Message = v
		}

	case "include":
		b.IncludePath = disc.Value

	case "message":
		b.Role = disc.Value
		n, ok := f.get("body")
		if !ok {
			return &ValidationError{File: file, Line: node.Line, Message: "Missing required field: body"}
		}
		body, err := decodeBlock(n, file)
		if err != nil {
			return err
		}
		b.MessageBody = body

	default:
		// Unreachable: b.Kind is always one of discriminators, every case of
		// which is handled above.
		return fmt.Errorf("%s:%d - internal error: unhandled block kind %q", file, node.Line, b.Kind)
	}
	return nil
}

func iterationTypeOrDefault(f fields) string {
	if v, ok := f.str("iteration_type"); ok {
		return v
	}
	return "text"
}

func decodeObjectFields(disc *yaml.Node, file string) ([]string, map[string]*ast.Block, error) {
	keys := []string{}
	vals := map[string]*ast.Block{}
	if disc.Kind == yaml.MappingNode {
		f := mappingFields(disc)
		for _, k := range f.order {
			blk, err := decodeBlock(f.vals[k], file)
			if err != nil {
				return nil, nil, err
			}
			keys = append(keys, k)
			vals[k] = blk
		}
		return keys, vals, nil
	}
	// sequence-of-entries form: [{key: "...", value: <block>}, ...]
	for _, entry := range disc.Content {
		ef := mappingFields(entry)
		keyNode, ok := ef.get("key")
		if !ok {
			return nil, nil, &ValidationError{File: file, Line: entry.Line, Message: "Missing required field: key"}
		}
		valNode, ok := ef.get("value")
		if !ok {
			return nil, nil, &ValidationError{File: file, Line: entry.Line, Message: "Missing required field: value"}
		}
		blk, err := decodeBlock(valNode, file)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, keyNode.Value)
		vals[keyNode.Value] = blk
	}
	return keys, vals, nil
}

func decodeForsFields(disc *yaml.Node, file string) ([]string, map[string]*ast.Block, error) {
	f := mappingFields(disc)
	out := map[string]*ast.Block{}
	for _, name := range f.order {
		blk, err := decodeBlock(f.vals[name], file)
		if err != nil {
			return nil, nil, err
		}
		out[name] = blk
	}
	return f.order, out, nil
}

func decodeArgs(n *yaml.Node, file string) (map[string]*ast.Block, []string, error) {
	f := mappingFields(n)
	out := map[string]*ast.Block{}
	for _, name := range f.order {
		blk, err := decodeBlock(f.vals[name], file)
		if err != nil {
			return nil, nil, err
		}
		out[name] = blk
	}
	return out, f.order, nil
}

func decodeParams(n *yaml.Node) ([]ast.Param, error) {
	var raw []map[string]any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]ast.Param, 0, len(raw))
	for _, r := range raw {
		name, _ := r["name"].(string)
		out = append(out, ast.Param{Name: name, Spec: r["spec"]})
	}
	return out, nil
}
