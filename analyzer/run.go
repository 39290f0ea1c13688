package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
)

// FileError records one recovered per-file failure.
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Result is everything a run extracted: the concatenated top-level forest and
// the per-file failures that were recovered along the way.
type Result struct {
	Symbols []*SymbolNode `json:"symbols"`
	Errors  []FileError   `json:"errors,omitempty"`
}

// Run walks the discovered file set through one pipeline. Files are analyzed
// strictly sequentially: the language server behind the pipeline is a shared,
// stateful, single-writer resource and overlapping requests are not safe
// against every implementation.
type Run struct {
	pipeline *Pipeline
	logger   *log.Logger
}

// NewRun builds a run around an existing pipeline.
func NewRun(pipeline *Pipeline, logger *log.Logger) *Run {
	if logger == nil {
		logger = log.New(os.Stderr, "lspmap ", log.LstdFlags)
	}
	return &Run{pipeline: pipeline, logger: logger}
}

// Analyze processes every file, isolating failures: a file that errors or
// panics contributes zero symbols and one recorded error, and the run
// continues with the next file.
func (r *Run) Analyze(ctx context.Context, files []string) *Result {
	result := &Result{}
	for _, file := range files {
		nodes, err := r.analyzeOne(ctx, file)
		if err != nil {
			r.logger.Printf("analysis failed for %s: %v", file, err)
			result.Errors = append(result.Errors, FileError{File: file, Message: err.Error()})
			continue
		}
		result.Symbols = append(result.Symbols, nodes...)
	}
	return result
}

func (r *Run) analyzeOne(ctx context.Context, file string) (nodes []*SymbolNode, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during analysis: %v", rec)
		}
	}()
	return r.pipeline.AnalyzeFile(ctx, file)
}
