package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pdl/value"
)

// YieldHandler receives streamed chunks from generate_text_stream before the
// evaluator collects them into the final string (spec.md §5).
type YieldHandler func(chunk string)

// TextGenerator is the narrow verb a model provider exposes.
type TextGenerator interface {
	GenerateText(ctx context.Context, modelID string, messages []value.ChatMessage, params ModelDefaults, data any) (string, error)
}

// StreamingTextGenerator is the optional streaming verb. No provider in this
// package implements it, and the evaluator calls only GenerateText, so a
// YieldHandler is never invoked.
type StreamingTextGenerator interface {
	GenerateTextStream(ctx context.Context, modelID string, messages []value.ChatMessage, params ModelDefaults, data any, yield YieldHandler) (string, error)
}

// CodeRunner is the `code` block's narrow verb, dispatched by `lan`.
type CodeRunner interface {
	RunCode(ctx context.Context, source string, globals map[string]any) (value.Value, error)
}

// InputReader is the `read` block's narrow verb.
type InputReader interface {
	ReadInput(ctx context.Context, path string, multiline bool, message string) (string, error)
}

// HTTPGetter is the `api` block's narrow verb.
type HTTPGetter interface {
	HTTPGet(ctx context.Context, url string) (value.Value, int, error)
}

// Registry dispatches model/code/api/read requests to pluggable providers
// keyed by platform prefix, code language, or a fixed name (spec.md §4.5).
// It is the only process-wide state in the interpreter (spec.md §9); it is
// constructed once and passed into the evaluator as a parameter so tests can
// substitute mocks (required for P1, P2, P4, P8).
type Registry struct {
	logger *slog.Logger
	config *RegistryConfig
	models map[string]TextGenerator // keyed by platform prefix: "bam", "watsonx", "openai", "mock"
	code   map[string]CodeRunner    // keyed by `lan`: "risor", "expr"
	reader InputReader
	http   HTTPGetter

	mu      sync.Mutex
	clients map[string]any // memoized per-model-id clients (spec.md §4.5 "created lazily and memoized")
}

// NewRegistry builds the default registry. Credentials are read from config
// but never validated at construction — only the first call that needs a
// given provider's credential fails if it is missing (spec.md §6 "Absent
// credentials for an unused provider must not fail startup").
func NewRegistry(logger *slog.Logger, config *RegistryConfig) *Registry {
	if config == nil {
		config = LoadRegistryConfigFromEnv()
	}
	r := &Registry{
		logger:  logger,
		config:  config,
		models:  make(map[string]TextGenerator),
		code:    make(map[string]CodeRunner),
		clients: make(map[string]any),
	}
	r.models["mock"] = &mockModelProvider{}
	r.models["bam"] = newGenAIProvider(config)
	r.models["watsonx"] = newWatsonxProvider(config)
	r.models["openai"] = newOpenAIProvider(config)
	r.code["risor"] = newRisorRunner()
	r.code["expr"] = newExprRunner()
	r.reader = newStdInOutReader()
	r.http = newRestyHTTPGetter()
	return r
}

// RegisterModelProvider lets tests substitute a model provider for a platform.
func (r *Registry) RegisterModelProvider(platform string, p TextGenerator) { r.models[platform] = p }

// RegisterCodeRunner lets tests substitute a fake code runner.
func (r *Registry) RegisterCodeRunner(lan string, p CodeRunner) { r.code[lan] = p }

func (r *Registry) Model(platform string) (TextGenerator, error) {
	p, ok := r.models[platform]
	if !ok {
		return nil, fmt.Errorf("no model provider registered for platform %q", platform)
	}
	return p, nil
}

func (r *Registry) Code(lan string) (CodeRunner, error) {
	if lan == "" {
		lan = "risor"
	}
	p, ok := r.code[lan]
	if !ok {
		return nil, fmt.Errorf("no code provider registered for language %q", lan)
	}
	return p, nil
}

func (r *Registry) Reader() InputReader { return r.reader }
func (r *Registry) HTTP() HTTPGetter    { return r.http }

// MemoizedClient returns a lazily-created, per-model-id client, building it
// with build on first use (spec.md §4.5 "Model clients are created lazily
// and memoized per model id").
func (r *Registry) MemoizedClient(modelID string, build func() any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[modelID]; ok {
		return c
	}
	c := build()
	r.clients[modelID] = c
	return c
}

func (r *Registry) Logger() *slog.Logger { return r.logger }
