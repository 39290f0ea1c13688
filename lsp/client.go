// Package lsp owns the lifecycle of one external language server: spawning
// the subprocess, the JSON-RPC channel over its stdio, the initialize
// handshake, and the small set of requests the analyzer issues against it.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// ErrStartup wraps spawn or handshake failures. It is fatal: the run aborts
// before any file is analyzed.
var ErrStartup = errors.New("language server startup failed")

// ErrTimeout marks one abandoned request. The server process is left running
// and no cancellation is sent; only this result is discarded.
var ErrTimeout = errors.New("language server request timed out")

type sessionState int

const (
	stateUnstarted sessionState = iota
	stateInitializing
	stateReady
	stateShuttingDown
	stateClosed
)

// Config describes how to start a language server session.
type Config struct {
	Command    string
	Args       []string
	RootDir    string
	LanguageID string
	Logger     *log.Logger
}

// Session drives one language server subprocess. Exactly one session exists
// per run; it is passed explicitly to every caller instead of living in a
// package variable so the one-session invariant stays testable.
type Session struct {
	cfg    Config
	logger *log.Logger

	cmd    *exec.Cmd
	conn   *jsonrpc2.Conn
	cancel context.CancelFunc
	caps   Capabilities

	mu     sync.Mutex
	state  sessionState
	opened map[uri.URI]bool

	closeOnce sync.Once
}

// NewSession prepares an unstarted session.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "lsp ", log.LstdFlags)
	}
	return &Session{
		cfg:    cfg,
		logger: logger,
		opened: make(map[uri.URI]bool),
	}
}

// Start spawns the server and performs the initialize/initialized handshake,
// advertising hierarchical document-symbol support. The handshake honors ctx,
// so callers bound startup by passing a deadline. Any failure here wraps
// ErrStartup.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateUnstarted {
		s.mu.Unlock()
		return fmt.Errorf("%w: session already started", ErrStartup)
	}
	s.state = stateInitializing
	s.mu.Unlock()

	if s.cfg.Command == "" {
		return s.failStartup(errors.New("server command is required"))
	}
	root := s.cfg.RootDir
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return s.failStartup(err)
	}

	procCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	cmd := exec.CommandContext(procCtx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = absRoot

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return s.failStartup(err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.failStartup(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.failStartup(err)
	}

	rwc := &stdioReadWriteCloser{reader: stdout, writer: stdin}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})

	handler := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if !req.Notif {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
		}
		// Server notifications (diagnostics, progress) carry nothing the
		// symbol pipeline needs.
		return nil, nil
	})
	s.conn = jsonrpc2.NewConn(procCtx, stream, handler)
	s.cmd = cmd

	go func() {
		_, _ = io.Copy(io.Discard, stderr)
	}()

	if err := cmd.Start(); err != nil {
		return s.failStartup(err)
	}
	if err := s.initialize(ctx, absRoot); err != nil {
		_ = cmd.Process.Kill()
		return s.failStartup(err)
	}

	s.mu.Lock()
	s.state = stateReady
	s.mu.Unlock()
	return nil
}

func (s *Session) failStartup(err error) error {
	s.mu.Lock()
	s.state = stateClosed
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return fmt.Errorf("%w: %v", ErrStartup, err)
}

func (s *Session) initialize(ctx context.Context, root string) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   uri.File(root),
		ClientInfo: &protocol.ClientInfo{
			Name:    "lspmap",
			Version: "0.1",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: &protocol.TextDocumentClientCapabilities{
				DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
					HierarchicalDocumentSymbolSupport: true,
				},
				Definition: &protocol.DefinitionTextDocumentClientCapabilities{},
			},
		},
	}
	var result initializeResult
	if err := s.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	s.caps = Capabilities{
		DocumentSymbols: capabilityEnabled(result.Capabilities.DocumentSymbolProvider),
		TypeHierarchy:   capabilityEnabled(result.Capabilities.TypeHierarchyProvider),
		Definition:      capabilityEnabled(result.Capabilities.DefinitionProvider),
	}
	return s.conn.Notify(ctx, "initialized", &protocol.InitializedParams{})
}

// Capabilities returns the handshake record. Read-only after Start.
func (s *Session) Capabilities() Capabilities {
	return s.caps
}

func (s *Session) ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return fmt.Errorf("session not ready (state %d)", s.state)
	}
	return nil
}

// OpenDocument sends didOpen for the file once per session.
func (s *Session) OpenDocument(ctx context.Context, path string) error {
	if err := s.ready(); err != nil {
		return err
	}
	docURI := uri.File(path)
	s.mu.Lock()
	if s.opened[docURI] {
		s.mu.Unlock()
		return nil
	}
	s.opened[docURI] = true
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	params := protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        docURI,
			LanguageID: protocol.LanguageIdentifier(s.cfg.LanguageID),
			Version:    1,
			Text:       string(data),
		},
	}
	return s.conn.Notify(ctx, "textDocument/didOpen", params)
}

type symbolReply struct {
	symbols []RawSymbol
	err     error
}

// DocumentSymbols requests the file's symbol tree and races it against the
// timeout. Losing the race returns ErrTimeout and discards only this result:
// the subprocess keeps running and no cancel message is sent, so this is not
// true cancellation.
func (s *Session) DocumentSymbols(ctx context.Context, path string, timeout time.Duration) ([]RawSymbol, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	params := protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(path)},
	}
	replyCh := make(chan symbolReply, 1)
	go func() {
		var raw json.RawMessage
		if err := s.conn.Call(ctx, "textDocument/documentSymbol", params, &raw); err != nil {
			replyCh <- symbolReply{err: err}
			return
		}
		symbols, err := decodeSymbolResponse(raw)
		replyCh <- symbolReply{symbols: symbols, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case reply := <-replyCh:
		return reply.symbols, reply.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: documentSymbol %s after %s", ErrTimeout, filepath.Base(path), timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Supertypes resolves the immediate supertypes at a position via the optional
// type-hierarchy capability. Missing capability, errors, and empty results all
// yield nil: the caller falls back to the textual source.
func (s *Session) Supertypes(ctx context.Context, path string, pos protocol.Position) ([]string, error) {
	if !s.caps.TypeHierarchy {
		return nil, nil
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	prepare := typeHierarchyPrepareParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(path)},
			Position:     pos,
		},
	}
	var items []TypeHierarchyItem
	if err := s.conn.Call(ctx, "textDocument/prepareTypeHierarchy", prepare, &items); err != nil {
		s.logger.Printf("prepareTypeHierarchy %s: %v", filepath.Base(path), err)
		return nil, nil
	}
	if len(items) == 0 {
		return nil, nil
	}
	var supers []TypeHierarchyItem
	if err := s.conn.Call(ctx, "typeHierarchy/supertypes", typeHierarchySupertypesParams{Item: items[0]}, &supers); err != nil {
		s.logger.Printf("typeHierarchy/supertypes %s: %v", filepath.Base(path), err)
		return nil, nil
	}
	names := make([]string, 0, len(supers))
	for _, item := range supers {
		names = append(names, item.Name)
	}
	return names, nil
}

// Definition resolves the definition location at a position. Empty results
// return nil without error.
func (s *Session) Definition(ctx context.Context, path string, pos protocol.Position) (*protocol.Location, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	params := protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri.File(path)},
			Position:     pos,
		},
	}
	var raw json.RawMessage
	if err := s.conn.Call(ctx, "textDocument/definition", params, &raw); err != nil {
		return nil, err
	}
	locs := decodeLocationResponse(raw)
	if len(locs) == 0 {
		return nil, nil
	}
	return &locs[0], nil
}

// Close runs the ordered shutdown-then-terminate sequence exactly once.
// Errors are logged, never surfaced; the session is already ending.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		started := s.state == stateReady || s.state == stateInitializing
		s.state = stateShuttingDown
		s.mu.Unlock()

		if started && s.conn != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := s.conn.Call(shutdownCtx, "shutdown", nil, nil); err != nil {
				s.logger.Printf("shutdown request: %v", err)
			}
			if err := s.conn.Notify(shutdownCtx, "exit", nil); err != nil {
				s.logger.Printf("exit notification: %v", err)
			}
			cancel()
		}
		if s.conn != nil {
			if err := s.conn.Close(); err != nil {
				s.logger.Printf("close connection: %v", err)
			}
		}
		if s.cancel != nil {
			s.cancel()
		}
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
			_, _ = s.cmd.Process.Wait()
		}
		s.mu.Lock()
		s.state = stateClosed
		s.mu.Unlock()
	})
	return nil
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s *stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s *stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}
