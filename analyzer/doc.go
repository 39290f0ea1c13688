package analyzer

import (
	"strings"

	"github.com/yannbam/lspmap/language"
)

// blockOpenerWindow caps how many lines above the closing marker the block
// comment opener is sought before the search is abandoned.
const blockOpenerWindow = 50

// extractDocumentation recovers the documentation comment attached above the
// declaration at declLine. Blank lines and annotation/attribute lines are
// skipped without ending the scan; any other line either starts one of the
// three recognized comment shapes or ends the scan with no documentation.
func extractDocumentation(lang language.Language, lines []string, declLine int) string {
	traits := lang.Traits()

	i := declLine - 1
	for i >= 0 {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || lang.AnnotationLine(trimmed) {
			i--
			continue
		}
		break
	}
	if i < 0 {
		return ""
	}
	trimmed := strings.TrimSpace(lines[i])

	if traits.TripleComment != "" && strings.HasPrefix(trimmed, traits.TripleComment) {
		return collectLineRun(lines, i, traits.TripleComment, "")
	}
	if traits.BlockEnd != "" && strings.HasSuffix(trimmed, traits.BlockEnd) {
		return collectBlock(lines, i, traits)
	}
	if traits.LineComment != "" && strings.HasPrefix(trimmed, traits.LineComment) {
		return collectLineRun(lines, i, traits.LineComment, traits.TripleComment)
	}
	return ""
}

// collectLineRun walks upward collecting the contiguous run of lines starting
// with marker, then rejoins them top to bottom with markers stripped. Lines
// matching the longer exclude marker end the run, so a plain-comment run never
// swallows a doc-comment line and leaves its extra marker byte behind.
func collectLineRun(lines []string, last int, marker, exclude string) string {
	inRun := func(line string) bool {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, marker) {
			return false
		}
		return exclude == "" || !strings.HasPrefix(trimmed, exclude)
	}
	first := last
	for first-1 >= 0 && inRun(lines[first-1]) {
		first--
	}
	collected := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		collected = append(collected, strings.TrimPrefix(strings.TrimSpace(lines[i]), marker))
	}
	return joinDocLines(collected)
}

// collectBlock resolves a block comment whose closing marker sits on line
// last. The opener is sought within a bounded backward window; past that
// ceiling the comment is treated as absent.
func collectBlock(lines []string, last int, traits language.Traits) string {
	low := last - blockOpenerWindow
	if low < 0 {
		low = 0
	}
	first := -1
	for i := last; i >= low; i-- {
		if strings.Contains(lines[i], traits.BlockStart) {
			first = i
			break
		}
	}
	if first < 0 {
		return ""
	}
	collected := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		collected = append(collected, cleanBlockLine(lines[i], traits))
	}
	return joinDocLines(collected)
}

// cleanBlockLine strips block markers and the conventional leading asterisk.
func cleanBlockLine(line string, traits language.Traits) string {
	trimmed := strings.TrimSpace(line)
	if idx := strings.Index(trimmed, traits.BlockStart); idx >= 0 {
		trimmed = trimmed[idx+len(traits.BlockStart):]
		// Javadoc-style openers double the second marker byte.
		trimmed = strings.TrimPrefix(trimmed, "*")
	}
	if idx := strings.LastIndex(trimmed, traits.BlockEnd); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimPrefix(trimmed, "*")
	return strings.TrimSpace(trimmed)
}

// joinDocLines trims blank artifacts from both edges and rejoins the text.
func joinDocLines(collected []string) string {
	for i := range collected {
		collected[i] = strings.TrimSpace(collected[i])
	}
	start := 0
	for start < len(collected) && collected[start] == "" {
		start++
	}
	end := len(collected)
	for end > start && collected[end-1] == "" {
		end--
	}
	if start >= end {
		return ""
	}
	return strings.Join(collected[start:end], "\n")
}
