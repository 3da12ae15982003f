// Package ast defines the Block tree that a loaded PDL document decodes into
// (spec.md §3 Block, §4.1). It is kept free of evaluation logic so that
// value.Function can reference a block body without an import cycle between
// value and eval.
package ast

// Location pinpoints a block's origin for error messages and the trace
// (spec.md §6 Location: "<file>:<line>").
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return l.File + ":" + itoa(l.Line)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ContributeTarget names where a block's result is surfaced: the document
// RESULT stream, the chat CONTEXT, both, or neither (spec.md §4.1, §6).
type ContributeTarget struct {
	Result  bool
	Context bool
}

// DefaultContribute is the implicit contribution when a block carries no
// `contribute` key: both RESULT and CONTEXT (spec.md §3 "default both", §6).
// Some block kinds resolve a narrower effective default to avoid
// double-counting a child's own contribution — see eval.defaultContribute.
var DefaultContribute = ContributeTarget{Result: true, Context: true}

// Param is one function parameter declaration: a name plus an optional spec
// type (spec.md §3 Function "{params: list[(name, spec)], ...}").
type Param struct {
	Name string
	Spec any
}

// Block is the discriminated AST node of spec.md §3. Shared fields live as
// named struct fields; every kind-specific field the loader decodes also
// gets a named field here rather than a generic bag, so the Block Evaluator
// never needs to re-interpret raw YAML/JSON — only the loader does that
// (spec.md explicitly keeps AST validation/decoding an external collaborator
// and kind dispatch the evaluator's own job, so the split is: loader decodes
// shape, evaluator decides semantics).
type Block struct {
	Kind string // literal, sequence, document, array, object, data, get, if, repeat, repeatUntil, for, function, call, code, model, api, read, include, message
	Loc  Location

	Description string
	Spec        any               // `spec:` value, decoded but uninterpreted until spectype.FromNative runs
	Defs        map[string]*Block // `defs:` sub-block declarations
	DefsOrder   []string          // declaration order (spec.md I3)
	Contribute  *ContributeTarget // nil means the kind's default (eval.defaultContribute)
	Assign      string            // `def:` target name, if any
	ParserSpec  any               // `parser:` value, decoded but uninterpreted until parsepipe.SpecFromNative runs
	Fallback    *Block            // `fallback:` block, if any

	// literal
	Text string

	// sequence / document / array
	Body []*Block

	// object
	ObjectKeys []string
	ObjectVals map[string]*Block

	// data
	DataValue any  // literal value, decoded as plain Go native (map/list/scalar)
	Raw       bool // raw=true: return DataValue verbatim; raw=false: template-expand strings within it

	// get
	GetName string

	// if / then / else
	Condition string
	Then      *Block
	Else      *Block

	// repeat / repeatUntil
	RepeatBody    *Block
	NumIterations int
	IterationType string // text | array | lastOf
	Until         string // condition expression, repeatUntil only

	// for
	Fors      map[string]*Block // name -> iterable block
	ForsOrder []string

	// function
	FunctionName string
	Params       []Param
	Return       any // declared return spec, decoded but uninterpreted
	FunctionBody *Block

	// call
	CallName string
	Args     map[string]*Block
	ArgsOrder []string

	// code
	Lan  string
	Code *Block // evaluated first to produce the source string

	// model
	ModelID      string
	ModelInput   *Block
	MockResponse string
	HasMock      bool
	DataOpaque   any // the open-question `data=True` opaque pass-through field
	HasDataOpaque bool

	// api
	URL      string
	APIInput *Block

	// read
	ReadPath  string
	Multiline bool
	Message   string

	// include
	IncludePath string

	// message
	Role        string
	MessageBody *Block
}
