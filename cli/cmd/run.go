package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdl/ast"
	"pdl/eval"
	"pdl/loader"
	"pdl/provider"
	"pdl/trace"
	"pdl/value"
)

var (
	traceOut string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a PDL program and print its rendered document",
	Long: `run reads a PDL program from file, evaluates it, and writes the
rendered document to standard output.

Example:
  pdl run hello.pdl
  pdl run hello.pdl --trace-out hello.trace.json
`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "write the evaluation trace as JSON to this file")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]

	root, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("error loading PDL file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	registry := provider.NewRegistry(logger, provider.LoadRegistryConfigFromEnv())

	st := eval.NewState(context.Background(), logger, registry)
	st.BaseDir = filepath.Dir(path)
	st.Load = func(p string) (*ast.Block, error) { return loader.Load(resolveInclude(st.BaseDir, p)) }

	result, node := eval.Eval(root, value.NewScope(), "", st)

	fmt.Println(result.String())

	if node.HasError {
		for _, e := range node.AllErrors() {
			fmt.Fprintln(os.Stderr, e)
		}
	}

	if traceOut != "" {
		if err := writeTrace(traceOut, node); err != nil {
			return fmt.Errorf("error writing trace: %w", err)
		}
	}

	// spec.md §7: "the program exit code is nonzero iff any has_error flag
	// was set in the final trace."
	if node.HasError {
		return fmt.Errorf("program completed with errors")
	}

	return nil
}

func resolveInclude(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func writeTrace(path string, node *trace.Node) error {
	b, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
