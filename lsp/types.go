package lsp

import (
	"encoding/json"

	"go.lsp.dev/protocol"
)

// Capabilities is the read-only record of what the server advertised during
// the handshake.
type Capabilities struct {
	DocumentSymbols bool
	TypeHierarchy   bool
	Definition      bool
}

// initializeResult decodes only the capability fields the session cares
// about. Raw messages keep boolean-or-object capability values uniform.
type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
}

type serverCapabilities struct {
	DocumentSymbolProvider json.RawMessage `json:"documentSymbolProvider,omitempty"`
	TypeHierarchyProvider  json.RawMessage `json:"typeHierarchyProvider,omitempty"`
	DefinitionProvider     json.RawMessage `json:"definitionProvider,omitempty"`
}

func capabilityEnabled(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "false", "null":
		return false
	}
	return true
}

// RawSymbol is the single internal shape every documentSymbol response decodes
// into, whether the server answered hierarchically or with the flat legacy
// form. Downstream code never re-checks the wire shape.
type RawSymbol struct {
	Name           string
	Detail         string
	Kind           protocol.SymbolKind
	Range          protocol.Range
	SelectionRange protocol.Range
	Children       []RawSymbol
}

// decodeSymbolResponse normalizes a documentSymbol result. A flat
// SymbolInformation list becomes childless RawSymbols whose selection range
// equals the full range.
func decodeSymbolResponse(raw json.RawMessage) ([]RawSymbol, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var probe []struct {
		Location json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if len(probe) > 0 && probe[0].Location != nil {
		var flat []protocol.SymbolInformation
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, err
		}
		symbols := make([]RawSymbol, 0, len(flat))
		for _, sym := range flat {
			symbols = append(symbols, RawSymbol{
				Name:           sym.Name,
				Kind:           sym.Kind,
				Range:          sym.Location.Range,
				SelectionRange: sym.Location.Range,
			})
		}
		return symbols, nil
	}
	var hier []protocol.DocumentSymbol
	if err := json.Unmarshal(raw, &hier); err != nil {
		return nil, err
	}
	return convertDocumentSymbols(hier), nil
}

func convertDocumentSymbols(symbols []protocol.DocumentSymbol) []RawSymbol {
	out := make([]RawSymbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, RawSymbol{
			Name:           sym.Name,
			Detail:         sym.Detail,
			Kind:           sym.Kind,
			Range:          sym.Range,
			SelectionRange: sym.SelectionRange,
			Children:       convertDocumentSymbols(sym.Children),
		})
	}
	return out
}

// Type hierarchy requests are LSP 3.17; go.lsp.dev/protocol v0.12 predates
// them, so the item and parameter shapes are declared here.

// TypeHierarchyItem mirrors the 3.17 wire shape.
type TypeHierarchyItem struct {
	Name           string               `json:"name"`
	Kind           protocol.SymbolKind  `json:"kind"`
	URI            protocol.DocumentURI `json:"uri"`
	Range          protocol.Range       `json:"range"`
	SelectionRange protocol.Range       `json:"selectionRange"`
	Detail         string               `json:"detail,omitempty"`
	Data           json.RawMessage      `json:"data,omitempty"`
}

type typeHierarchyPrepareParams struct {
	protocol.TextDocumentPositionParams
}

type typeHierarchySupertypesParams struct {
	Item TypeHierarchyItem `json:"item"`
}

// locationLink is the subset of LocationLink needed to fold link-style
// definition responses into plain locations.
type locationLink struct {
	TargetURI   protocol.DocumentURI `json:"targetUri"`
	TargetRange protocol.Range       `json:"targetRange"`
}

func decodeLocationResponse(raw json.RawMessage) []protocol.Location {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var locs []protocol.Location
	if err := json.Unmarshal(raw, &locs); err == nil && len(locs) > 0 && locs[0].URI != "" {
		return locs
	}
	var single protocol.Location
	if err := json.Unmarshal(raw, &single); err == nil && single.URI != "" {
		return []protocol.Location{single}
	}
	var links []locationLink
	if err := json.Unmarshal(raw, &links); err == nil && len(links) > 0 && links[0].TargetURI != "" {
		out := make([]protocol.Location, 0, len(links))
		for _, link := range links {
			out = append(out, protocol.Location{URI: link.TargetURI, Range: link.TargetRange})
		}
		return out
	}
	return nil
}
