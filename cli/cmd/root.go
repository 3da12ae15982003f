package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pdl",
	Short: "PDL - Prompt Description Language interpreter",
	Long: `pdl runs Prompt Description Language programs: a tree-walking
interpreter over block-structured prompt/model/code programs.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
