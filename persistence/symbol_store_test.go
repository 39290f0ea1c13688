package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yannbam/lspmap/analyzer"
)

func openTestStore(t *testing.T) *SymbolStore {
	t.Helper()
	store, err := NewSymbolStore(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTree() []*analyzer.SymbolNode {
	return []*analyzer.SymbolNode{
		{
			Name:           "UserService",
			Kind:           "class",
			File:           "/src/UserService.java",
			Range:          analyzer.Range{Start: analyzer.Position{Line: 4}, End: analyzer.Position{Line: 40}},
			Preview:        "public class UserService extends Base<User>",
			TypeParameters: []string{"T"},
			Supertypes:     []analyzer.Supertype{{Name: "Base", TypeArguments: []string{"User"}}},
			Children: []*analyzer.SymbolNode{
				{
					Name:  "create",
					Kind:  "method",
					File:  "/src/UserService.java",
					Range: analyzer.Range{Start: analyzer.Position{Line: 10}, End: analyzer.Position{Line: 14}},
				},
			},
		},
	}
}

func TestReplaceFileAndLookup(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.ReplaceFile("/src/UserService.java", "java", sampleTree()))

	count, err := store.FileSymbolCount("/src/UserService.java")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	syms, err := store.SymbolsByName("create")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	require.Equal(t, "method", syms[0].Kind)
	require.Equal(t, int64(10), syms[0].StartLine)
}

func TestReplaceFileIsIdempotentPerFile(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.ReplaceFile("/src/UserService.java", "java", sampleTree()))
	require.NoError(t, store.ReplaceFile("/src/UserService.java", "java", sampleTree()))

	syms, err := store.SymbolsByName("UserService")
	require.NoError(t, err)
	require.Len(t, syms, 1)
}

func TestReplaceFileRemovesStaleSymbols(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.ReplaceFile("/src/UserService.java", "java", sampleTree()))

	replacement := []*analyzer.SymbolNode{{Name: "Renamed", Kind: "class", File: "/src/UserService.java"}}
	require.NoError(t, store.ReplaceFile("/src/UserService.java", "java", replacement))

	stale, err := store.SymbolsByName("UserService")
	require.NoError(t, err)
	require.Empty(t, stale)

	count, err := store.FileSymbolCount("/src/UserService.java")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReplaceFileRequiresPath(t *testing.T) {
	store := openTestStore(t)
	require.Error(t, store.ReplaceFile("", "java", nil))
}

func TestFileSymbolCountUnknownFile(t *testing.T) {
	store := openTestStore(t)
	count, err := store.FileSymbolCount("/never/indexed.java")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestSymbolsByNameAcrossFiles(t *testing.T) {
	store := openTestStore(t)
	nodeFor := func(file string) []*analyzer.SymbolNode {
		return []*analyzer.SymbolNode{{Name: "init", Kind: "function", File: file}}
	}
	require.NoError(t, store.ReplaceFile("/src/a.c", "c", nodeFor("/src/a.c")))
	require.NoError(t, store.ReplaceFile("/src/b.c", "c", nodeFor("/src/b.c")))

	syms, err := store.SymbolsByName("init")
	require.NoError(t, err)
	require.Len(t, syms, 2)
	require.Equal(t, "/src/a.c", syms[0].File)
	require.Equal(t, "/src/b.c", syms[1].File)
}
