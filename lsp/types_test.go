package lsp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestDecodeSymbolResponseHierarchical(t *testing.T) {
	raw := json.RawMessage(`[
		{
			"name": "Widget",
			"kind": 5,
			"range": {"start": {"line": 0, "character": 0}, "end": {"line": 9, "character": 1}},
			"selectionRange": {"start": {"line": 0, "character": 6}, "end": {"line": 0, "character": 12}},
			"children": [
				{
					"name": "draw",
					"kind": 6,
					"range": {"start": {"line": 2, "character": 4}, "end": {"line": 4, "character": 5}},
					"selectionRange": {"start": {"line": 2, "character": 9}, "end": {"line": 2, "character": 13}}
				}
			]
		}
	]`)
	symbols, err := decodeSymbolResponse(raw)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	require.Equal(t, "Widget", symbols[0].Name)
	require.Equal(t, protocol.SymbolKindClass, symbols[0].Kind)
	require.Equal(t, uint32(6), symbols[0].SelectionRange.Start.Character)
	require.Len(t, symbols[0].Children, 1)
	require.Equal(t, "draw", symbols[0].Children[0].Name)
	require.Equal(t, protocol.SymbolKindMethod, symbols[0].Children[0].Kind)
}

func TestDecodeSymbolResponseFlat(t *testing.T) {
	raw := json.RawMessage(`[
		{
			"name": "frob",
			"kind": 12,
			"location": {
				"uri": "file:///tmp/frob.c",
				"range": {"start": {"line": 3, "character": 0}, "end": {"line": 5, "character": 1}}
			}
		}
	]`)
	symbols, err := decodeSymbolResponse(raw)
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	require.Equal(t, "frob", symbols[0].Name)
	require.Equal(t, protocol.SymbolKindFunction, symbols[0].Kind)
	// Flat symbols carry no selection range; it mirrors the full range.
	require.Equal(t, symbols[0].Range, symbols[0].SelectionRange)
	require.Empty(t, symbols[0].Children)
}

func TestDecodeSymbolResponseNull(t *testing.T) {
	symbols, err := decodeSymbolResponse(json.RawMessage("null"))
	require.NoError(t, err)
	require.Nil(t, symbols)

	symbols, err = decodeSymbolResponse(nil)
	require.NoError(t, err)
	require.Nil(t, symbols)
}

func TestDecodeSymbolResponseEmptyArray(t *testing.T) {
	symbols, err := decodeSymbolResponse(json.RawMessage("[]"))
	require.NoError(t, err)
	require.Empty(t, symbols)
}

func TestDecodeSymbolResponseMalformed(t *testing.T) {
	_, err := decodeSymbolResponse(json.RawMessage(`{"not": "an array"}`))
	require.Error(t, err)
}

func TestCapabilityEnabled(t *testing.T) {
	require.False(t, capabilityEnabled(nil))
	require.False(t, capabilityEnabled(json.RawMessage("false")))
	require.False(t, capabilityEnabled(json.RawMessage("null")))
	require.True(t, capabilityEnabled(json.RawMessage("true")))
	require.True(t, capabilityEnabled(json.RawMessage(`{"workDoneProgress": true}`)))
}

func TestInitializeResultDecode(t *testing.T) {
	raw := []byte(`{
		"capabilities": {
			"documentSymbolProvider": true,
			"typeHierarchyProvider": {"workDoneProgress": false},
			"definitionProvider": false
		}
	}`)
	var result initializeResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.True(t, capabilityEnabled(result.Capabilities.DocumentSymbolProvider))
	require.True(t, capabilityEnabled(result.Capabilities.TypeHierarchyProvider))
	require.False(t, capabilityEnabled(result.Capabilities.DefinitionProvider))
}

func TestDecodeLocationResponseArray(t *testing.T) {
	raw := json.RawMessage(`[
		{"uri": "file:///src/a.c", "range": {"start": {"line": 1, "character": 0}, "end": {"line": 1, "character": 5}}}
	]`)
	locs := decodeLocationResponse(raw)
	require.Len(t, locs, 1)
	require.Equal(t, protocol.DocumentURI("file:///src/a.c"), locs[0].URI)
	require.Equal(t, uint32(1), locs[0].Range.Start.Line)
}

func TestDecodeLocationResponseSingle(t *testing.T) {
	raw := json.RawMessage(`{"uri": "file:///src/b.c", "range": {"start": {"line": 7, "character": 0}, "end": {"line": 9, "character": 1}}}`)
	locs := decodeLocationResponse(raw)
	require.Len(t, locs, 1)
	require.Equal(t, protocol.DocumentURI("file:///src/b.c"), locs[0].URI)
}

func TestDecodeLocationResponseLinks(t *testing.T) {
	raw := json.RawMessage(`[
		{
			"targetUri": "file:///src/c.c",
			"targetRange": {"start": {"line": 2, "character": 0}, "end": {"line": 4, "character": 1}},
			"targetSelectionRange": {"start": {"line": 2, "character": 4}, "end": {"line": 2, "character": 8}}
		}
	]`)
	locs := decodeLocationResponse(raw)
	require.Len(t, locs, 1)
	require.Equal(t, protocol.DocumentURI("file:///src/c.c"), locs[0].URI)
	require.Equal(t, uint32(2), locs[0].Range.Start.Line)
}

func TestDecodeLocationResponseNull(t *testing.T) {
	require.Nil(t, decodeLocationResponse(json.RawMessage("null")))
	require.Nil(t, decodeLocationResponse(nil))
	require.Nil(t, decodeLocationResponse(json.RawMessage("[]")))
}
