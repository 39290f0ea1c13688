package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagWorkspace string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lspmap",
		Short: "Map every declaration in a project via its language server",
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root to analyze")
	root.AddCommand(newAnalyzeCmd(), newServersCmd())
	return root
}
