package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yannbam/lspmap/language"
)

func TestExtractDocumentationBlockComment(t *testing.T) {
	lines := strings.Split(`/**
 * Creates a user.
 *
 * Validates the name first.
 */
public class UserService {`, "\n")
	doc := extractDocumentation(language.Java, lines, 5)
	require.Equal(t, "Creates a user.\n\nValidates the name first.", doc)
}

func TestExtractDocumentationSingleLineBlock(t *testing.T) {
	lines := []string{"/** Short note. */", "class Compact {"}
	doc := extractDocumentation(language.Java, lines, 1)
	require.Equal(t, "Short note.", doc)
}

func TestExtractDocumentationSkipsAnnotations(t *testing.T) {
	lines := strings.Split(`/** Annotated service. */
@Service
@Deprecated
public class LegacyService {`, "\n")
	doc := extractDocumentation(language.Java, lines, 3)
	require.Equal(t, "Annotated service.", doc)
}

func TestExtractDocumentationSkipsBlankLines(t *testing.T) {
	lines := strings.Split(`// Standalone helper.
// Used everywhere.

class Helper {`, "\n")
	doc := extractDocumentation(language.Java, lines, 3)
	require.Equal(t, "Standalone helper.\nUsed everywhere.", doc)
}

func TestExtractDocumentationTripleMarker(t *testing.T) {
	lines := strings.Split(`/// A growable buffer.
/// Not thread safe.
pub struct Buffer {`, "\n")
	doc := extractDocumentation(language.Rust, lines, 2)
	require.Equal(t, "A growable buffer.\nNot thread safe.", doc)
}

func TestExtractDocumentationTripleRunStopsAtGap(t *testing.T) {
	lines := strings.Split(`/// Unrelated.
fn other() {}
/// Attached.
pub struct Thing {`, "\n")
	doc := extractDocumentation(language.Rust, lines, 3)
	require.Equal(t, "Attached.", doc)
}

func TestExtractDocumentationPlainRunStopsAtDocMarker(t *testing.T) {
	lines := strings.Split(`/// Belongs to something else.
// Local note.
fn helper() {`, "\n")
	doc := extractDocumentation(language.Rust, lines, 2)
	require.Equal(t, "Local note.", doc)
	require.NotContains(t, doc, "/")
}

func TestExtractDocumentationRustAttributes(t *testing.T) {
	lines := strings.Split(`/// Serialized config.
#[derive(Debug, Clone)]
pub struct Config {`, "\n")
	doc := extractDocumentation(language.Rust, lines, 2)
	require.Equal(t, "Serialized config.", doc)
}

func TestExtractDocumentationPythonHashRun(t *testing.T) {
	lines := strings.Split(`# Loads data rows.
# Slow on big files.
@lru_cache
def load_rows():`, "\n")
	doc := extractDocumentation(language.Python, lines, 3)
	require.Equal(t, "Loads data rows.\nSlow on big files.", doc)
}

func TestExtractDocumentationNoneWhenCodeAbove(t *testing.T) {
	lines := []string{"int x = 1;", "class Plain {"}
	doc := extractDocumentation(language.Java, lines, 1)
	require.Empty(t, doc)
}

func TestExtractDocumentationOpenerPastCeiling(t *testing.T) {
	var lines []string
	lines = append(lines, "/*")
	for i := 0; i < blockOpenerWindow+5; i++ {
		lines = append(lines, " some text")
	}
	lines = append(lines, " */", "class Buried {")
	doc := extractDocumentation(language.Java, lines, len(lines)-1)
	require.Empty(t, doc)
}

func TestExtractDocumentationTopOfFile(t *testing.T) {
	lines := []string{"class First {"}
	require.Empty(t, extractDocumentation(language.Java, lines, 0))
}
