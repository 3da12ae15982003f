// Package server exposes the Block Evaluator over HTTP: POST a PDL program,
// get back its rendered document and trace. Grounded on the teacher's
// App/NewHttpHandler pair (runtime/app.go, runtime/http_handler.go) — same
// gin.Engine wiring and graceful-shutdown shape, repurposed from serving a
// directory of named flows behind fixed per-flow routes to serving PDL's
// single "run this program" operation behind one route.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pdl/ast"
	"pdl/eval"
	"pdl/loader"
	"pdl/provider"
	"pdl/trace"
	"pdl/value"
)

// Server wraps a gin.Engine serving the PDL evaluation endpoint.
type Server struct {
	Providers *provider.Registry
	Logger    *slog.Logger
	BaseDir   string

	router *gin.Engine
	http   *http.Server
}

// New builds a Server with routes registered, grounded on App.Start's
// Initialize → Gin setup ordering minus the flows-directory preload (PDL
// programs arrive in the request body, not from a fixed flows/ directory).
func New(providers *provider.Registry, logger *slog.Logger, baseDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	s := &Server{Providers: providers, Logger: logger, BaseDir: baseDir, router: router}
	router.POST("/run", s.handleRun)
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return s
}

type runRequest struct {
	Program string         `json:"program"`
	Scope   map[string]any `json:"scope"`
}

type runResponse struct {
	Document string   `json:"document"`
	HasError bool      `json:"has_error"`
	Errors   []string  `json:"errors,omitempty"`
	Trace    *traceDTO `json:"trace,omitempty"`
}

// handleRun implements the request→Execution→response pattern of the
// teacher's handleRequest (runtime/http_handler.go), adapted from
// extracting bound flow-step values out of an HTTP request to parsing a
// PDL program out of the request body and running it through Eval.
func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body: " + err.Error()})
		return
	}

	root, err := loader.Parse(req.Program, "request")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "parse error: " + err.Error()})
		return
	}

	scope := value.NewScope()
	for name, v := range req.Scope {
		scope.Bind(name, value.FromNative(v))
	}

	st := eval.NewState(c.Request.Context(), s.Logger, s.Providers)
	st.BaseDir = s.BaseDir
	st.Load = func(path string) (*ast.Block, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.BaseDir, path)
		}
		return loader.Load(path)
	}

	result, node := eval.Eval(root, scope, "", st)

	resp := runResponse{
		Document: result.String(),
		HasError: node.HasError,
		Errors:   node.AllErrors(),
		Trace:    toTraceDTO(node),
	}
	c.JSON(http.StatusOK, resp)
}

// Start runs the HTTP server and blocks until shutdown, grounded on
// App.Start's signal-handling and graceful-shutdown sequence.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}

	shutdownChan := make(chan error, 1)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdownChan <- s.http.Shutdown(ctx)
	}()

	fmt.Printf("pdl server listening on %s\n", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return <-shutdownChan
}

// traceDTO is the JSON-serializable projection of trace.Node the teacher's
// ResponseHandler pipeline would hand to a JSONResponseHandler.
type traceDTO struct {
	Kind     string              `json:"kind"`
	Location string              `json:"location,omitempty"`
	Result   any                 `json:"result,omitempty"`
	HasError bool                `json:"has_error"`
	Errors   []string            `json:"errors,omitempty"`
	Children []*traceDTO         `json:"children,omitempty"`
	Defs     map[string]*traceDTO `json:"defs,omitempty"`
}

func toTraceDTO(n *trace.Node) *traceDTO {
	if n == nil {
		return nil
	}
	d := &traceDTO{
		Kind:     n.Kind,
		Location: n.Loc.String(),
		Result:   n.Result,
		HasError: n.HasError,
		Errors:   n.Errors,
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, toTraceDTO(c))
	}
	if len(n.Defs) > 0 {
		d.Defs = make(map[string]*traceDTO, len(n.Defs))
		for name, c := range n.Defs {
			d.Defs[name] = toTraceDTO(c)
		}
	}
	return d
}
