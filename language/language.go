// Package language holds the closed set of supported languages and the
// per-language behavior tables the analyzer consults: which server binary to
// spawn, how documentation comments look, how inheritance clauses are written,
// and how protocol and textual supertype data are fused. Adding a language
// means adding one entry to the traits table.
package language

import (
	"path/filepath"
	"strings"
)

// Language identifies one supported source language.
type Language string

const (
	Go         Language = "go"
	Java       Language = "java"
	TypeScript Language = "typescript"
	JavaScript Language = "javascript"
	Python     Language = "python"
	Rust       Language = "rust"
	C          Language = "c"
	CPP        Language = "cpp"
)

// ServerDescriptor captures what is needed to start a language server.
type ServerDescriptor struct {
	Command    string
	Args       []string
	LanguageID string
	Extensions []string
}

// InheritanceSyntax selects how a textual inheritance clause is written.
type InheritanceSyntax int

const (
	// SyntaxNone means the language has no textual inheritance clause.
	SyntaxNone InheritanceSyntax = iota
	// SyntaxKeyword means clauses introduced by extends/implements keywords.
	SyntaxKeyword
	// SyntaxColon means a trailing colon-separated base list (C++, Rust traits).
	SyntaxColon
	// SyntaxParen means a parenthesized base list after the class name (Python).
	SyntaxParen
)

// FusionPolicy selects which supertype source wins when both are available.
// The choices encode observed server quirks, not protocol guarantees.
type FusionPolicy int

const (
	// PreferTextual uses the parsed clause when non-empty; some servers mangle
	// generic arguments or drop implemented interfaces from hierarchy results.
	PreferTextual FusionPolicy = iota
	// PreferProtocol trusts the hierarchy query and falls back to the parsed
	// clause only when the query returns nothing.
	PreferProtocol
)

// Traits is the full per-language behavior record.
type Traits struct {
	Server      ServerDescriptor
	Inheritance InheritanceSyntax
	Fusion      FusionPolicy

	// ImplicitSupertypes are filtered out of protocol hierarchy results; they
	// are reported for every type and carry no information.
	ImplicitSupertypes []string

	// Comment markers. TripleComment is empty when the language has no
	// dedicated doc-line style.
	LineComment   string
	TripleComment string
	BlockStart    string
	BlockEnd      string

	// AnnotationPrefixes are line prefixes that sit between a declaration and
	// its documentation comment (annotations, attributes, decorators) and must
	// be skipped without ending the upward scan.
	AnnotationPrefixes []string

	// TemplateIntroducer is set when a generic introducer keyword precedes the
	// aggregate keyword on an earlier line (C++ templates).
	TemplateIntroducer bool

	// MergeTypedefs enables the anonymous-aggregate/typedef merge pass.
	MergeTypedefs bool

	// HeaderExtensions mark declaration-only files eligible for out-of-line
	// definition linking.
	HeaderExtensions []string

	// TypeArgOpen is the bracket opening a type-argument list.
	TypeArgOpen byte
}

var traitsTable = map[Language]Traits{
	Go: {
		Server:      ServerDescriptor{Command: "gopls", Args: []string{"serve"}, LanguageID: "go", Extensions: []string{"go"}},
		Inheritance: SyntaxNone,
		Fusion:      PreferProtocol,
		LineComment: "//",
		BlockStart:  "/*", BlockEnd: "*/",
		TypeArgOpen: '[',
	},
	Java: {
		Server:             ServerDescriptor{Command: "jdtls", LanguageID: "java", Extensions: []string{"java"}},
		Inheritance:        SyntaxKeyword,
		Fusion:             PreferTextual,
		ImplicitSupertypes: []string{"Object", "java.lang.Object"},
		LineComment:        "//",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"@"},
		TypeArgOpen:        '<',
	},
	TypeScript: {
		Server:             ServerDescriptor{Command: "typescript-language-server", Args: []string{"--stdio"}, LanguageID: "typescript", Extensions: []string{"ts", "tsx"}},
		Inheritance:        SyntaxKeyword,
		Fusion:             PreferTextual,
		LineComment:        "//",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"@"},
		TypeArgOpen:        '<',
	},
	JavaScript: {
		Server:             ServerDescriptor{Command: "typescript-language-server", Args: []string{"--stdio"}, LanguageID: "javascript", Extensions: []string{"js", "jsx"}},
		Inheritance:        SyntaxKeyword,
		Fusion:             PreferTextual,
		LineComment:        "//",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"@"},
		TypeArgOpen:        '<',
	},
	Python: {
		Server:             ServerDescriptor{Command: "pylsp", LanguageID: "python", Extensions: []string{"py"}},
		Inheritance:        SyntaxParen,
		Fusion:             PreferTextual,
		LineComment:        "#",
		AnnotationPrefixes: []string{"@"},
		TypeArgOpen:        '[',
	},
	Rust: {
		Server:             ServerDescriptor{Command: "rust-analyzer", LanguageID: "rust", Extensions: []string{"rs"}},
		Inheritance:        SyntaxColon,
		Fusion:             PreferProtocol,
		LineComment:        "//",
		TripleComment:      "///",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"#[", "#!["},
		TypeArgOpen:        '<',
	},
	C: {
		Server:             ServerDescriptor{Command: "clangd", LanguageID: "c", Extensions: []string{"c", "h"}},
		Inheritance:        SyntaxNone,
		Fusion:             PreferProtocol,
		LineComment:        "//",
		TripleComment:      "///",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"[[", "#pragma", "__attribute__"},
		MergeTypedefs:      true,
		HeaderExtensions:   []string{"h"},
	},
	CPP: {
		Server:             ServerDescriptor{Command: "clangd", LanguageID: "cpp", Extensions: []string{"cpp", "cc", "cxx", "hpp", "hh", "hxx"}},
		Inheritance:        SyntaxColon,
		Fusion:             PreferProtocol,
		LineComment:        "//",
		TripleComment:      "///",
		BlockStart:         "/*", BlockEnd: "*/",
		AnnotationPrefixes: []string{"[[", "#pragma", "__attribute__", "template"},
		TemplateIntroducer: true,
		MergeTypedefs:      true,
		HeaderExtensions:   []string{"hpp", "hh", "hxx", "h"},
		TypeArgOpen:        '<',
	},
}

var aliasMap = map[string]Language{}

func init() {
	addAlias(Go, "go", "golang", "gopls")
	addAlias(Java, "java", "jdtls")
	addAlias(TypeScript, "ts", "typescript")
	addAlias(JavaScript, "js", "javascript")
	addAlias(Python, "py", "python", "pylsp")
	addAlias(Rust, "rs", "rust", "rust-analyzer")
	addAlias(C, "c")
	addAlias(CPP, "cpp", "c++", "cxx", "clangd")
}

func addAlias(lang Language, keys ...string) {
	for _, key := range keys {
		aliasMap[key] = lang
	}
}

// Lookup resolves a user-supplied language key or alias.
func Lookup(key string) (Language, bool) {
	lang, ok := aliasMap[strings.ToLower(strings.TrimSpace(key))]
	return lang, ok
}

// All lists the supported languages in a stable order.
func All() []Language {
	return []Language{Go, Java, TypeScript, JavaScript, Python, Rust, C, CPP}
}

// Traits returns the behavior record for the language. Unknown languages get a
// zero record, which disables every optional behavior.
func (l Language) Traits() Traits {
	return traitsTable[l]
}

// CFamily reports whether the language uses the C declaration grammar, which
// gates the forward-declaration filter and the typedef merge pass.
func (l Language) CFamily() bool {
	return l == C || l == CPP
}

// HeaderFile reports whether path looks like a declaration-only file for the
// language (C-family headers).
func (l Language) HeaderFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, h := range l.Traits().HeaderExtensions {
		if ext == h {
			return true
		}
	}
	return false
}

// ByExtension infers a language from a file path.
func ByExtension(path string) (Language, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", false
	}
	for _, lang := range All() {
		for _, e := range lang.Traits().Server.Extensions {
			if e == ext {
				return lang, true
			}
		}
	}
	return "", false
}

// AnnotationLine reports whether the trimmed line is an annotation, attribute,
// or decorator line that may sit between a declaration and its documentation.
func (l Language) AnnotationLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, prefix := range l.Traits().AnnotationPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
