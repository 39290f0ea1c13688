package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yannbam/lspmap/language"
)

func TestReconstructPreviewMultiLineDeclaration(t *testing.T) {
	lines := strings.Split(`public class MultiLine
    extends BaseThing
    implements Runnable {
    int field;
}`, "\n")
	preview := reconstructPreview(language.Java, lines, 0, true)
	require.Equal(t, "public class MultiLine extends BaseThing implements Runnable", preview)
}

func TestReconstructPreviewExcludesBraceAndBody(t *testing.T) {
	lines := []string{"class Compact { int x; } // trailing"}
	preview := reconstructPreview(language.Java, lines, 0, true)
	require.Equal(t, "class Compact", preview)
}

func TestReconstructPreviewStripsComments(t *testing.T) {
	lines := strings.Split(`class Annotated /* inline note */
    extends Base // comment
{`, "\n")
	preview := reconstructPreview(language.Java, lines, 0, true)
	require.Equal(t, "class Annotated extends Base", preview)
}

func TestReconstructPreviewNonTypeUsesDeclarationLine(t *testing.T) {
	lines := []string{"    void frob(int x) {"}
	preview := reconstructPreview(language.Java, lines, 0, false)
	require.Equal(t, "void frob(int x) {", preview)
}

func TestReconstructPreviewTemplateIntroducer(t *testing.T) {
	lines := strings.Split(`template<typename T, int N>
class Vec {
};`, "\n")
	preview := reconstructPreview(language.CPP, lines, 1, true)
	require.Equal(t, "template<typename T, int N> class Vec", preview)
}

func TestReconstructPreviewTemplateIntroducerMultiLine(t *testing.T) {
	lines := strings.Split(`template<typename T,
         typename U>
class Pair {
};`, "\n")
	preview := reconstructPreview(language.CPP, lines, 2, true)
	require.Equal(t, "template<typename T, typename U> class Pair", preview)
}

func TestReconstructPreviewTemplateClassParameterOnOwnLine(t *testing.T) {
	lines := strings.Split(`template <typename T,
          class U>
class Pair {
};`, "\n")
	preview := reconstructPreview(language.CPP, lines, 2, true)
	require.Equal(t, "template <typename T, class U> class Pair", preview)
}

func TestReconstructPreviewIgnoresForeignTemplate(t *testing.T) {
	// The template belongs to Other; an intervening aggregate declaration
	// must stop the backward search.
	lines := strings.Split(`template<typename T>
class Other {};
class Plain {
};`, "\n")
	preview := reconstructPreview(language.CPP, lines, 2, true)
	require.Equal(t, "class Plain", preview)
}

func TestReconstructPreviewPythonStopsAtColon(t *testing.T) {
	lines := strings.Split(`class Child(Base):
    pass`, "\n")
	preview := reconstructPreview(language.Python, lines, 0, true)
	require.Equal(t, "class Child(Base):", preview)
}

func TestDroppedDeclaration(t *testing.T) {
	require.True(t, droppedDeclaration(language.CPP, "class Widget;"))
	require.True(t, droppedDeclaration(language.C, "struct list_node;"))
	require.True(t, droppedDeclaration(language.CPP, "friend class Inspector;"))
	require.False(t, droppedDeclaration(language.CPP, "class Widget"))
	require.False(t, droppedDeclaration(language.CPP, "struct pair final"))
	// Forward declarations are a C-family concern only.
	require.False(t, droppedDeclaration(language.Java, "class Widget;"))
}
