package toolchain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yannbam/lspmap/language"
)

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lspmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspace: /src/project
language: java
symbol_timeout_seconds: 30
servers:
  java:
    command: /opt/jdtls/bin/jdtls
    args: ["-data", "/tmp/jdtls-ws"]
`), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/src/project", cfg.Workspace)
	require.Equal(t, "java", cfg.Language)
	require.Equal(t, 30*time.Second, cfg.SymbolTimeout())
	// Unset fields keep their defaults.
	require.Equal(t, 60*time.Second, cfg.StartupTimeout())

	desc := cfg.ServerFor(language.Java)
	require.Equal(t, "/opt/jdtls/bin/jdtls", desc.Command)
	require.Equal(t, []string{"-data", "/tmp/jdtls-ws"}, desc.Args)
	// Untouched languages keep the built-in command.
	require.Equal(t, "gopls", cfg.ServerFor(language.Go).Command)
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRunConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace: [unclosed"), 0o644))
	_, err := LoadRunConfig(path)
	require.Error(t, err)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := RunConfig{Workspace: "", SymbolTimeoutSeconds: -5}
	require.NoError(t, cfg.Normalize())
	require.True(t, filepath.IsAbs(cfg.Workspace))
	require.Equal(t, 10*time.Second, cfg.SymbolTimeout())
	require.Equal(t, 60*time.Second, cfg.StartupTimeout())
}

func TestNormalizeMakesWorkspaceAbsolute(t *testing.T) {
	cfg := RunConfig{Workspace: "relative/dir"}
	require.NoError(t, cfg.Normalize())
	require.True(t, filepath.IsAbs(cfg.Workspace))
}

func TestServerForWithoutOverride(t *testing.T) {
	cfg := DefaultRunConfig()
	desc := cfg.ServerFor(language.Rust)
	require.Equal(t, "rust-analyzer", desc.Command)
	require.Equal(t, "rust", desc.LanguageID)
}

func TestSnapshotSaveLoad(t *testing.T) {
	dir := t.TempDir()
	snapshot := &Snapshot{
		Workspace:   dir,
		LastUpdated: time.Now().UTC().Truncate(time.Second),
		Servers: []ServerStatus{
			{Language: "go", Command: "gopls", Available: true, Extensions: []string{"go"}},
			{Language: "java", Command: "jdtls", Extensions: []string{"java"}},
		},
	}
	path := DefaultSnapshotPath(dir)
	require.NoError(t, snapshot.Save(path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, snapshot.Workspace, loaded.Workspace)
	require.Len(t, loaded.Servers, 2)
	require.True(t, loaded.Servers[0].Available)
	require.False(t, loaded.Servers[1].Available)
}

func TestDetectCoversAllLanguages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))

	snapshot, err := Detect(dir)
	require.NoError(t, err)
	require.Len(t, snapshot.Servers, len(language.All()))
	byLang := map[string]ServerStatus{}
	for _, status := range snapshot.Servers {
		byLang[status.Language] = status
	}
	require.Equal(t, 1, byLang["go"].WorkspaceMatches)
	require.Equal(t, 0, byLang["rust"].WorkspaceMatches)
}
