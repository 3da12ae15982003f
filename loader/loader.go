// Package loader implements AST loading and the minimal structural
// validator of spec.md §6: turning a YAML program on disk into the
// ast.Block tree the Block Evaluator consumes, and producing the exact
// validator error strings spec.md names ("Missing required field: <name>",
// "Field not allowed: <name>"). spec.md §1 treats this as an external
// collaborator — kept as its own package, separate from eval, so a real
// schema-driven validator can replace it later without touching the
// evaluator (see DESIGN.md's Open Question resolution).
//
// Grounded on the teacher's FlowLoader (runtime/engine/dsl/loader.go):
// read file → parse → return the AST, the same three-step shape, adapted
// from the teacher's custom brace-DSL grammar to gopkg.in/yaml.v3 decoding
// of PDL's YAML program format.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pdl/ast"
)

// discriminators lists the single-discriminator-key block kinds spec.md §6
// recognizes, ordered so that a kind checked earlier never loses to another
// kind's name reused as one of its own sibling fields (`read`'s `message`
// prompt, `for`'s `repeat` body) — see decodeMapping.
var discriminators = []string{
	"model", "code", "api", "get", "data", "document", "sequence", "array",
	"object", "read", "message", "include", "if", "for", "repeat",
	"repeatUntil", "function", "call",
}

var sharedKeys = map[string]bool{
	"description": true, "spec": true, "defs": true, "def": true,
	"contribute": true, "parser": true, "fallback": true,
}

// kindFields lists the sibling keys each mapping-shaped kind allows beyond
// its own discriminator key and sharedKeys. Any mapping key outside this
// union is a validator error (spec.md §6 "Field not allowed: <name>").
var kindFields = map[string][]string{
	"if":          {"then", "else"},
	"repeat":      {"num_iterations", "iteration_type"},
	"repeatUntil": {"until", "iteration_type"},
	"for":         {"repeat", "iteration_type"},
	"function":    {"params", "return", "body"},
	"call":        {"args", "params", "return"},
	"code":        {"lan"},
	"model":       {"input", "mock_response", "data"},
	"api":         {"input"},
	"read":        {"multiline", "message"},
	"message":     {"body"},
	"data":        {"raw"},
}

// ValidationError is a located validator failure, rendered exactly as
// spec.md §6 specifies: "<file>:<line> - Missing required field: <name>" /
// "<file>:<line> - Field not allowed: <name>".
type ValidationError struct {
	File    string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d - %s", e.File, e.Line, e.Message)
}

func missingField(file string, line int, name string) *ValidationError {
	return &ValidationError{File: file, Line: line, Message: "Missing required field: " + name}
}

func fieldNotAllowed(file string, line int, name string) *ValidationError {
	return &ValidationError{File: file, Line: line, Message: "Field not allowed: " + name}
}

// Load reads and parses path into a Block tree.
func Load(path string) (*ast.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading PDL file: %w", err)
	}
	block, err := Parse(string(data), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("error parsing PDL file %s: %w", path, err)
	}
	return block, nil
}

// Parse decodes src (one YAML document) into a Block tree, attributing
// errors to file for the validator's location strings.
func Parse(src string, file string) (*ast.Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return decodeBlock(doc.Content[0], file)
}
