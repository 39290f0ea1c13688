package analyzer

import (
	"regexp"
	"strings"

	"github.com/yannbam/lspmap/language"
)

// templateWindow bounds how far above a declaration the template introducer
// may sit before the search gives up.
const templateWindow = 10

var aggregateKeyword = regexp.MustCompile(`\b(class|struct|union|enum)\b`)

// forwardDeclPattern matches a bare C-family forward declaration; such
// symbols duplicate the defining entry and are dropped.
var forwardDeclPattern = regexp.MustCompile(`^(typedef\s+)?(struct|class|union|enum)\s+[A-Za-z_]\w*\s*;$`)

// reconstructPreview rebuilds one representative declaration line starting at
// startLine. Type-like symbols collect fragments forward until the first
// unmatched opening brace, a terminating semicolon, or end of file, with
// comments stripped; everything else keeps its declaration line as-is.
func reconstructPreview(lang language.Language, lines []string, startLine int, typeLike bool) string {
	if startLine < 0 || startLine >= len(lines) {
		return ""
	}
	if !typeLike {
		return strings.TrimSpace(lines[startLine])
	}

	traits := lang.Traits()
	var fragments []string
	inBlock := false
	done := false
	for i := startLine; i < len(lines) && !done; i++ {
		cleaned := stripComments(lines[i], traits, &inBlock)
		var fragment string
		fragment, done = cutDeclaration(lang, cleaned)
		fragment = strings.Join(strings.Fields(fragment), " ")
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	preview := strings.Join(fragments, " ")

	if traits.TemplateIntroducer && !strings.HasPrefix(preview, "template") && aggregateKeyword.MatchString(preview) {
		if intro := findTemplateIntroducer(lines, startLine); intro != "" {
			preview = intro + " " + preview
		}
	}
	return preview
}

// cutDeclaration trims a cleaned line at the declaration boundary and reports
// whether scanning should stop.
func cutDeclaration(lang language.Language, line string) (string, bool) {
	if idx := strings.IndexByte(line, '{'); idx >= 0 {
		return line[:idx], true
	}
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx+1], true
	}
	if lang == language.Python && strings.HasSuffix(strings.TrimSpace(line), ":") {
		return line, true
	}
	return line, false
}

// stripComments removes line and block comments, carrying block state across
// lines.
func stripComments(line string, traits language.Traits, inBlock *bool) string {
	if traits.BlockStart == "" && traits.LineComment == "" {
		return line
	}
	var out strings.Builder
	i := 0
	for i < len(line) {
		if *inBlock {
			end := strings.Index(line[i:], traits.BlockEnd)
			if end < 0 {
				return out.String()
			}
			i += end + len(traits.BlockEnd)
			*inBlock = false
			continue
		}
		if traits.LineComment != "" && strings.HasPrefix(line[i:], traits.LineComment) {
			return out.String()
		}
		if traits.BlockStart != "" && strings.HasPrefix(line[i:], traits.BlockStart) {
			i += len(traits.BlockStart)
			*inBlock = true
			continue
		}
		out.WriteByte(line[i])
		i++
	}
	return out.String()
}

// findTemplateIntroducer scans a bounded window backward for the template
// clause belonging to the aggregate at startLine. The search aborts when any
// other declaration intervenes, so an unrelated template never gets attached.
func findTemplateIntroducer(lines []string, startLine int) string {
	low := startLine - templateWindow
	if low < 0 {
		low = 0
	}
	for i := startLine - 1; i >= low; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			return ""
		}
		if strings.HasPrefix(trimmed, "template") {
			parts := make([]string, 0, startLine-i)
			for j := i; j < startLine; j++ {
				part := strings.Join(strings.Fields(lines[j]), " ")
				if part != "" {
					parts = append(parts, part)
				}
			}
			return strings.Join(parts, " ")
		}
		if strings.ContainsAny(trimmed, "{};") {
			return ""
		}
		// Parameter-list lines of a multi-line introducer may name class or
		// struct parameters themselves; they end with ',' or '>' and are not
		// intervening declarations.
		if aggregateKeyword.MatchString(trimmed) &&
			!strings.HasSuffix(trimmed, ",") && !strings.HasSuffix(trimmed, ">") {
			return ""
		}
	}
	return ""
}

// droppedDeclaration reports whether a reconstructed preview is a C-family
// forward or friend declaration, which would duplicate the defining symbol.
func droppedDeclaration(lang language.Language, preview string) bool {
	if !lang.CFamily() {
		return false
	}
	if strings.HasPrefix(preview, "friend ") {
		return true
	}
	return forwardDeclPattern.MatchString(preview)
}
