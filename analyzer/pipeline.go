package analyzer

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"go.lsp.dev/protocol"

	"github.com/yannbam/lspmap/language"
	"github.com/yannbam/lspmap/lsp"
)

// DefaultSymbolTimeout bounds the documentSymbol request per file. Servers
// that index the whole project on first touch can take seconds here.
const DefaultSymbolTimeout = 10 * time.Second

// ErrNoSymbols marks a file the server answered with an empty symbol result.
// Surfacing it keeps silently-unanalyzed files distinguishable from files the
// run never saw.
var ErrNoSymbols = errors.New("language server reported no symbols")

// SymbolSource is the slice of the protocol session the pipeline consumes.
// *lsp.Session implements it; tests substitute fakes.
type SymbolSource interface {
	Capabilities() lsp.Capabilities
	OpenDocument(ctx context.Context, path string) error
	DocumentSymbols(ctx context.Context, path string, timeout time.Duration) ([]lsp.RawSymbol, error)
	Supertypes(ctx context.Context, path string, pos protocol.Position) ([]string, error)
	Definition(ctx context.Context, path string, pos protocol.Position) (*protocol.Location, error)
}

// Pipeline normalizes one file at a time: open the document, fetch the raw
// symbol tree under a bound, then convert every raw symbol recursively.
type Pipeline struct {
	source  SymbolSource
	lang    language.Language
	timeout time.Duration
	logger  *log.Logger
}

// NewPipeline wires a pipeline to a symbol source for one language.
func NewPipeline(source SymbolSource, lang language.Language, timeout time.Duration, logger *log.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultSymbolTimeout
	}
	if logger == nil {
		logger = log.New(os.Stderr, "analyzer ", log.LstdFlags)
	}
	return &Pipeline{source: source, lang: lang, timeout: timeout, logger: logger}
}

// AnalyzeFile produces the normalized symbol forest for one file. A timeout,
// read failure, or empty symbol result surfaces as the file's error; the
// caller decides that one file's failure never ends the run.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) ([]*SymbolNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")

	if err := p.source.OpenDocument(ctx, path); err != nil {
		return nil, err
	}
	raws, err := p.source.DocumentSymbols(ctx, path, p.timeout)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrNoSymbols
	}

	headerLike := p.lang.HeaderFile(path)
	nodes := p.convertAll(ctx, path, lines, raws, headerLike)
	if p.lang.Traits().MergeTypedefs {
		nodes = MergeStructTypedefs(nodes)
	}
	return nodes, nil
}

func (p *Pipeline) convertAll(ctx context.Context, path string, lines []string, raws []lsp.RawSymbol, headerLike bool) []*SymbolNode {
	var nodes []*SymbolNode
	for _, raw := range raws {
		if node := p.convert(ctx, path, lines, raw, headerLike); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// convert builds one normalized node, or nil when the symbol is a dropped
// forward/friend declaration.
func (p *Pipeline) convert(ctx context.Context, path string, lines []string, raw lsp.RawSymbol, headerLike bool) *SymbolNode {
	kind := KindName(raw.Kind)
	typeLike := isTypeLike(kind)
	declLine := int(raw.Range.Start.Line)

	preview := reconstructPreview(p.lang, lines, declLine, typeLike)
	if droppedDeclaration(p.lang, preview) {
		return nil
	}

	node := &SymbolNode{
		Name:          cleanName(raw.Name),
		Kind:          kind,
		File:          path,
		Range:         toRange(raw.Range),
		Preview:       preview,
		Documentation: extractDocumentation(p.lang, lines, declLine),
	}

	if typeLike {
		node.TypeParameters = parseTypeParameters(p.lang, preview, node.Name)
		textual := parseTextualSupertypes(p.lang, preview)
		var protocolNames []string
		if p.source.Capabilities().TypeHierarchy {
			protocolNames, _ = p.source.Supertypes(ctx, path, raw.SelectionRange.Start)
		}
		node.Supertypes = resolveSupertypes(p.lang, protocolNames, textual)
	}

	if headerLike && definitionEligible(kind) && p.source.Capabilities().Definition {
		node.Definition = p.linkDefinition(ctx, path, raw.SelectionRange.Start)
	}

	if children := p.convertAll(ctx, path, lines, raw.Children, headerLike); len(children) > 0 {
		node.Children = children
	}
	return node
}
