package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yannbam/lspmap/toolchain"
)

var (
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newServersCmd() *cobra.Command {
	var savePath string
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Detect which language servers are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := toolchain.Detect(flagWorkspace)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, server := range snapshot.Servers {
				status := missingStyle.Render("missing")
				if server.Available {
					status = availableStyle.Render("available")
				}
				fmt.Fprintf(out, "%-12s %-28s %s", server.Language, server.Command, status)
				if server.CommandPath != "" {
					fmt.Fprintf(out, " [%s]", server.CommandPath)
				}
				if server.WorkspaceMatches > 0 {
					fmt.Fprintf(out, " files=%d", server.WorkspaceMatches)
				}
				fmt.Fprintf(out, " (%s)\n", strings.Join(server.Extensions, ","))
			}
			if savePath != "" {
				if err := snapshot.Save(savePath); err != nil {
					return err
				}
				cmd.Printf("Snapshot saved to %s\n", savePath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&savePath, "save", "", "Persist the detection snapshot as JSON")
	return cmd
}
