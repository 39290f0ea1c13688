package analyzer

import (
	"strings"

	"github.com/yannbam/lspmap/language"
)

// parseTextualSupertypes locates the language's inheritance clause in a
// reconstructed preview and parses it into named supertypes with raw type
// argument texts. It returns nil when the preview carries no clause.
func parseTextualSupertypes(lang language.Language, preview string) []Supertype {
	traits := lang.Traits()
	switch traits.Inheritance {
	case language.SyntaxKeyword:
		return parseKeywordClauses(preview, traits.TypeArgOpen)
	case language.SyntaxColon:
		return parseColonList(lang, preview)
	case language.SyntaxParen:
		return parseParenList(preview, traits.TypeArgOpen)
	default:
		return nil
	}
}

// resolveSupertypes fuses the protocol and textual sources under the
// language's trust policy. Protocol data carries names only; a language's
// always-implicit supertypes are filtered out of it. The result is nil when
// neither source yields anything.
func resolveSupertypes(lang language.Language, protocolNames []string, textual []Supertype) []Supertype {
	traits := lang.Traits()
	var proto []Supertype
	for _, name := range protocolNames {
		name = strings.TrimSpace(name)
		if name == "" || isImplicitSupertype(traits, name) {
			continue
		}
		proto = append(proto, Supertype{Name: cleanName(name)})
	}
	switch traits.Fusion {
	case language.PreferTextual:
		if len(textual) > 0 {
			return textual
		}
		return proto
	default:
		if len(proto) > 0 {
			return proto
		}
		return textual
	}
}

func isImplicitSupertype(traits language.Traits, name string) bool {
	for _, implicit := range traits.ImplicitSupertypes {
		if name == implicit {
			return true
		}
	}
	return false
}

var inheritanceKeywords = []string{"extends", "implements"}

// parseKeywordClauses handles extends/implements clauses. Keywords are only
// honored at bracket depth zero so generic bounds inside a parameter list
// never start a clause.
func parseKeywordClauses(preview string, argOpen byte) []Supertype {
	type clause struct{ start, end int }
	var spans []clause
	positions := keywordPositions(preview, inheritanceKeywords)
	for i, pos := range positions {
		start := pos.end
		end := len(preview)
		if i+1 < len(positions) {
			end = positions[i+1].start
		}
		spans = append(spans, clause{start, end})
	}
	var supers []Supertype
	for _, span := range spans {
		for _, entry := range splitTopLevel(preview[span.start:span.end], ',') {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			supers = append(supers, parseTypeRef(entry, argOpen))
		}
	}
	return supers
}

type keywordPos struct{ start, end int }

func keywordPositions(s string, keywords []string) []keywordPos {
	var out []keywordPos
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			if depth > 0 {
				depth--
			}
		}
		if depth != 0 {
			continue
		}
		for _, kw := range keywords {
			if !strings.HasPrefix(s[i:], kw) {
				continue
			}
			before := i == 0 || isWordBreak(s[i-1])
			afterIdx := i + len(kw)
			after := afterIdx >= len(s) || isWordBreak(s[afterIdx])
			if before && after {
				out = append(out, keywordPos{start: i, end: afterIdx})
				i = afterIdx - 1
				break
			}
		}
	}
	return out
}

func isWordBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == ',' || c == '{'
}

// cpp base lists allow access and virtual specifiers before each base name.
var baseSpecifiers = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"virtual":   true,
}

// parseColonList handles trailing colon base lists: comma-separated for C++,
// plus-separated trait bounds for Rust.
func parseColonList(lang language.Language, preview string) []Supertype {
	idx := topLevelColon(preview)
	if idx < 0 {
		return nil
	}
	clause := preview[idx+1:]
	sep := byte(',')
	if lang == language.Rust {
		sep = '+'
	}
	var supers []Supertype
	for _, entry := range splitTopLevel(clause, sep) {
		entry = strings.TrimSpace(entry)
		entry = stripBaseSpecifiers(entry)
		if entry == "" {
			continue
		}
		supers = append(supers, parseTypeRef(entry, '<'))
	}
	return supers
}

func stripBaseSpecifiers(entry string) string {
	fields := strings.Fields(entry)
	for len(fields) > 0 && baseSpecifiers[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// topLevelColon finds the inheritance colon: depth zero and not part of a
// scope-resolution "::" pair.
func topLevelColon(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth != 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == ':' {
				i++
				continue
			}
			if i > 0 && s[i-1] == ':' {
				continue
			}
			return i
		}
	}
	return -1
}

// parseParenList handles Python-style parenthesized base lists. Keyword
// arguments such as metaclass= are not base classes and are skipped.
func parseParenList(preview string, argOpen byte) []Supertype {
	inner, ok := bracketedList(preview, '(', ')')
	if !ok {
		return nil
	}
	var supers []Supertype
	for _, entry := range splitTopLevel(inner, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.Contains(entry, "=") {
			continue
		}
		supers = append(supers, parseTypeRef(entry, argOpen))
	}
	return supers
}

// parseTypeRef splits one clause entry at its first depth-0 argument bracket
// into a name and the raw argument texts.
func parseTypeRef(entry string, argOpen byte) Supertype {
	if argOpen == 0 {
		return Supertype{Name: entry}
	}
	open, closer := bracketPair(argOpen)
	idx := strings.IndexByte(entry, open)
	if idx < 0 {
		return Supertype{Name: entry}
	}
	inner, ok := bracketedList(entry[idx:], open, closer)
	if !ok {
		return Supertype{Name: strings.TrimSpace(entry[:idx])}
	}
	var args []string
	for _, arg := range splitTopLevel(inner, ',') {
		arg = strings.TrimSpace(arg)
		if arg != "" {
			args = append(args, arg)
		}
	}
	return Supertype{Name: strings.TrimSpace(entry[:idx]), TypeArguments: args}
}
