// Package analyzer converts raw language-server symbol data plus source text
// into one normalized, hierarchical symbol tree per file. It reconstructs
// declaration previews, recovers documentation comments, extracts generic
// parameters, resolves supertypes from two sources, merges C-family
// typedef/aggregate pairs, and links declarations to out-of-line definitions.
package analyzer

import (
	"strings"

	"go.lsp.dev/protocol"
)

// Position is a 0-based line/character location.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range spans from Start to End, End never before Start.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Supertype names one direct base type or interface. TypeArguments holds the
// raw argument texts in declaration order when the textual source supplied
// them; the protocol source never does.
type Supertype struct {
	Name          string   `json:"name"`
	TypeArguments []string `json:"typeArguments,omitempty"`
}

// Definition points a declaration-only symbol at its out-of-line
// implementation. It never references the declaring file.
type Definition struct {
	File    string `json:"file"`
	Range   Range  `json:"range"`
	Preview string `json:"preview"`
}

// SymbolNode is one normalized declaration. Nodes are built once while
// walking a file's raw symbol data and are immutable afterwards; only the
// typedef merge pass replaces pairs with fresh nodes.
type SymbolNode struct {
	Name           string        `json:"name"`
	Kind           string        `json:"kind"`
	File           string        `json:"file"`
	Range          Range         `json:"range"`
	Preview        string        `json:"preview,omitempty"`
	Documentation  string        `json:"documentation,omitempty"`
	TypeParameters []string      `json:"typeParameters,omitempty"`
	Supertypes     []Supertype   `json:"supertypes,omitempty"`
	Children       []*SymbolNode `json:"children,omitempty"`
	Definition     *Definition   `json:"definition,omitempty"`
}

var kindNames = map[protocol.SymbolKind]string{
	protocol.SymbolKindFile:          "file",
	protocol.SymbolKindModule:        "module",
	protocol.SymbolKindNamespace:     "namespace",
	protocol.SymbolKindPackage:       "package",
	protocol.SymbolKindClass:         "class",
	protocol.SymbolKindMethod:        "method",
	protocol.SymbolKindProperty:      "property",
	protocol.SymbolKindField:         "field",
	protocol.SymbolKindConstructor:   "constructor",
	protocol.SymbolKindEnum:          "enum",
	protocol.SymbolKindInterface:     "interface",
	protocol.SymbolKindFunction:      "function",
	protocol.SymbolKindVariable:      "variable",
	protocol.SymbolKindConstant:      "constant",
	protocol.SymbolKindString:        "string",
	protocol.SymbolKindNumber:        "number",
	protocol.SymbolKindBoolean:       "boolean",
	protocol.SymbolKindArray:         "array",
	protocol.SymbolKindObject:        "object",
	protocol.SymbolKindKey:           "key",
	protocol.SymbolKindNull:          "null",
	protocol.SymbolKindEnumMember:    "enumMember",
	protocol.SymbolKindStruct:        "struct",
	protocol.SymbolKindEvent:         "event",
	protocol.SymbolKindOperator:      "operator",
	protocol.SymbolKindTypeParameter: "typeParameter",
}

// KindName maps an LSP symbol kind to its normalized string form. Kinds
// outside the specified range fall back to "object" rather than erroring.
func KindName(kind protocol.SymbolKind) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return "object"
}

// typeLikeKinds are the only kinds that may carry type parameters and
// supertypes.
var typeLikeKinds = map[string]bool{
	"class":     true,
	"interface": true,
	"enum":      true,
	"struct":    true,
}

func isTypeLike(kind string) bool {
	return typeLikeKinds[kind]
}

func definitionEligible(kind string) bool {
	return kind == "method" || kind == "function"
}

// cleanName strips a trailing generic suffix some servers append to the
// symbol name, so "Foo<T, U>" and "Foo" collapse to the same name.
func cleanName(name string) string {
	if idx := strings.IndexAny(name, "<"); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	return strings.TrimSpace(name)
}

func toRange(r protocol.Range) Range {
	return Range{
		Start: Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   Position{Line: r.End.Line, Character: r.End.Character},
	}
}

// rangeWithin reports whether inner is fully contained in outer, line-wise.
func rangeWithin(inner, outer Range) bool {
	if inner.Start.Line < outer.Start.Line || inner.End.Line > outer.End.Line {
		return false
	}
	return true
}
