package analyzer

import (
	"strings"

	"github.com/yannbam/lspmap/language"
)

// pure keyword fragments carry no parameter name (variance markers, bare
// template keywords) and are dropped.
var typeParamKeywords = map[string]bool{
	"in":       true,
	"out":      true,
	"const":    true,
	"typename": true,
	"class":    true,
	"struct":   true,
}

// parseTypeParameters extracts the ordered generic parameter names from a
// declaration preview. It returns nil, not an empty list, when the
// declaration has no parameter list.
func parseTypeParameters(lang language.Language, preview, name string) []string {
	traits := lang.Traits()
	if traits.TemplateIntroducer {
		if params := parseTemplateIntroducer(preview); params != nil {
			return params
		}
	}
	if traits.TypeArgOpen == 0 {
		return nil
	}
	open, close := bracketPair(traits.TypeArgOpen)
	inner, ok := listAfterName(preview, name, open, close)
	if !ok {
		return nil
	}
	var params []string
	for _, fragment := range splitTopLevel(inner, ',') {
		fragment = strings.TrimSpace(fragment)
		// Shed variance markers and similar keyword prefixes so the
		// parameter name itself is left at the front.
		for {
			ident := leadingIdentifier(fragment)
			if ident == "" {
				break
			}
			if !typeParamKeywords[ident] {
				params = append(params, ident)
				break
			}
			fragment = strings.TrimSpace(fragment[len(ident):])
		}
	}
	return params
}

// parseTemplateIntroducer handles the template-prefixed form, where the
// parameter list follows the introducer keyword rather than the type name and
// the parameter name is the last token of each fragment.
func parseTemplateIntroducer(preview string) []string {
	idx := strings.Index(preview, "template")
	if idx < 0 {
		return nil
	}
	rest := preview[idx+len("template"):]
	inner, ok := bracketedList(rest, '<', '>')
	if !ok {
		return nil
	}
	var params []string
	for _, fragment := range splitTopLevel(inner, ',') {
		if cut := strings.IndexByte(fragment, '='); cut >= 0 {
			fragment = fragment[:cut]
		}
		fields := strings.Fields(fragment)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimLeft(fields[len(fields)-1], ".*&")
		if name == "" || typeParamKeywords[name] {
			continue
		}
		params = append(params, name)
	}
	return params
}

// listAfterName finds the type name in the preview and requires the opening
// bracket to follow immediately, allowing only whitespace in between.
func listAfterName(preview, name string, open, close byte) (string, bool) {
	if name == "" {
		return "", false
	}
	search := preview
	offset := 0
	for {
		idx := strings.Index(search, name)
		if idx < 0 {
			return "", false
		}
		after := offset + idx + len(name)
		rest := preview[after:]
		trimmed := strings.TrimLeft(rest, " \t")
		if len(trimmed) > 0 && trimmed[0] == open {
			return bracketedList(rest, open, close)
		}
		offset += idx + len(name)
		search = preview[offset:]
	}
}

// bracketedList returns the depth-0 span between the first opening bracket in
// s and its matching closer.
func bracketedList(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits on sep at bracket depth zero, tracking every bracket
// family so nested argument lists stay intact.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// leadingIdentifier takes the identifier run at the start of a fragment,
// discarding bound and default suffixes. Rust lifetimes keep their tick.
func leadingIdentifier(fragment string) string {
	end := 0
	for end < len(fragment) {
		c := fragment[end]
		if c == '_' || c == '\'' || c == '$' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(end > 0 && c >= '0' && c <= '9') {
			end++
			continue
		}
		break
	}
	return fragment[:end]
}

func bracketPair(open byte) (byte, byte) {
	if open == '[' {
		return '[', ']'
	}
	return '<', '>'
}
