package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yannbam/lspmap/analyzer"
	"github.com/yannbam/lspmap/discovery"
	"github.com/yannbam/lspmap/language"
	"github.com/yannbam/lspmap/lsp"
	"github.com/yannbam/lspmap/persistence"
	"github.com/yannbam/lspmap/toolchain"
)

var (
	summaryStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// analysisOutput is the JSON document written for consumers.
type analysisOutput struct {
	Language    string                 `json:"language"`
	Root        string                 `json:"root"`
	GeneratedAt time.Time              `json:"generated_at"`
	Symbols     []*analyzer.SymbolNode `json:"symbols"`
	Errors      []analyzer.FileError   `json:"errors,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	var langKey string
	var outPath string
	var indexPath string
	var configPath string
	var timeoutSeconds int
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a workspace and emit its symbol tree as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := toolchain.DefaultRunConfig()
			if configPath != "" {
				loaded, err := toolchain.LoadRunConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if flagWorkspace != "" {
				cfg.Workspace = flagWorkspace
			}
			if langKey != "" {
				cfg.Language = langKey
			}
			if timeoutSeconds > 0 {
				cfg.SymbolTimeoutSeconds = timeoutSeconds
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if cfg.Language == "" {
				return errors.New("language is required (--lang or config)")
			}
			lang, ok := language.Lookup(cfg.Language)
			if !ok {
				return fmt.Errorf("unsupported language %q", cfg.Language)
			}

			desc := cfg.ServerFor(lang)
			if _, err := exec.LookPath(desc.Command); err != nil {
				return fmt.Errorf("language server %q not found in PATH (see 'lspmap servers')", desc.Command)
			}

			files, err := discovery.FindFiles(cfg.Workspace, desc.Extensions)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no %s files under %s", lang, cfg.Workspace)
			}

			logger := log.New(cmd.ErrOrStderr(), "lspmap ", log.LstdFlags)
			session := lsp.NewSession(lsp.Config{
				Command:    desc.Command,
				Args:       desc.Args,
				RootDir:    cfg.Workspace,
				LanguageID: desc.LanguageID,
				Logger:     logger,
			})
			ctx := cmd.Context()
			startCtx, cancelStart := context.WithTimeout(ctx, cfg.StartupTimeout())
			err = session.Start(startCtx)
			cancelStart()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			pipeline := analyzer.NewPipeline(session, lang, cfg.SymbolTimeout(), logger)
			run := analyzer.NewRun(pipeline, logger)
			result := run.Analyze(ctx, files)

			output := analysisOutput{
				Language:    string(lang),
				Root:        cfg.Workspace,
				GeneratedAt: time.Now().UTC(),
				Symbols:     result.Symbols,
				Errors:      result.Errors,
			}
			if err := writeOutput(cmd.OutOrStdout(), outPath, output); err != nil {
				return err
			}
			if indexPath != "" {
				if err := indexResult(indexPath, string(lang), result); err != nil {
					return err
				}
			}
			printSummary(cmd, len(files), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&langKey, "lang", "", "Language to analyze (go, java, ts, python, rust, c, cpp, ...)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write JSON to a file instead of stdout")
	cmd.Flags().StringVar(&indexPath, "index", "", "Also persist symbols into a SQLite index at this path")
	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML run config")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Per-file symbol request timeout in seconds")
	return cmd
}

func writeOutput(stdout io.Writer, outPath string, output analysisOutput) error {
	var w io.Writer = stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func indexResult(indexPath, lang string, result *analyzer.Result) error {
	store, err := persistence.NewSymbolStore(indexPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	byFile := map[string][]*analyzer.SymbolNode{}
	var order []string
	for _, node := range result.Symbols {
		if _, seen := byFile[node.File]; !seen {
			order = append(order, node.File)
		}
		byFile[node.File] = append(byFile[node.File], node)
	}
	for _, file := range order {
		if err := store.ReplaceFile(file, lang, byFile[file]); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(cmd *cobra.Command, fileCount int, result *analyzer.Result) {
	total := countSymbols(result.Symbols)
	fmt.Fprintln(cmd.ErrOrStderr(), summaryStyle.Render(
		fmt.Sprintf("analyzed %d files, %d symbols", fileCount, total)))
	for _, fileErr := range result.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(
			fmt.Sprintf("  %s: %s", fileErr.File, fileErr.Message)))
	}
}

func countSymbols(nodes []*analyzer.SymbolNode) int {
	total := 0
	for _, node := range nodes {
		total += 1 + countSymbols(node.Children)
	}
	return total
}
