package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"
)

// linkDefinition asks the server where the symbol at pos is defined and, when
// the answer lies in a different file, reads that file and attaches a
// {file, range, preview} record. Same-file answers, errors, and empty results
// all yield nil; a declaration without a located body is not an error.
func (p *Pipeline) linkDefinition(ctx context.Context, declFile string, pos protocol.Position) *Definition {
	loc, err := p.source.Definition(ctx, declFile, pos)
	if err != nil || loc == nil {
		return nil
	}
	defFile := loc.URI.Filename()
	if defFile == "" || sameFile(defFile, declFile) {
		return nil
	}
	preview := ""
	if data, err := os.ReadFile(defFile); err == nil {
		lines := strings.Split(string(data), "\n")
		if int(loc.Range.Start.Line) < len(lines) {
			preview = strings.TrimSpace(lines[loc.Range.Start.Line])
		}
	}
	return &Definition{
		File:    defFile,
		Range:   toRange(loc.Range),
		Preview: preview,
	}
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
