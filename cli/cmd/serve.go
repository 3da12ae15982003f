package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pdl/provider"
	"pdl/server"
)

var (
	serveAddr    string
	serveBaseDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the PDL evaluator over HTTP",
	Long: `serve starts an HTTP server exposing POST /run, which accepts a PDL
program in the request body and returns its rendered document and trace.

Example:
  pdl serve --addr :8080
`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveBaseDir, "base-dir", ".", "directory `include`/`read` relative paths resolve against")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	registry := provider.NewRegistry(logger, provider.LoadRegistryConfigFromEnv())
	srv := server.New(registry, logger, serveBaseDir)
	return srv.Start(serveAddr)
}
