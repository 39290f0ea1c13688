// Package toolchain knows which language server binary serves each language,
// whether it is installed, and how run-level knobs (timeouts, command
// overrides) are configured.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yannbam/lspmap/language"
)

// ServerOverride replaces the built-in spawn command for one language.
type ServerOverride struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// RunConfig captures every knob shared across the CLI entry points. Keeping
// it a lightweight struct makes it trivial to reuse in tests.
type RunConfig struct {
	Workspace             string                    `yaml:"workspace"`
	Language              string                    `yaml:"language"`
	SymbolTimeoutSeconds  int                       `yaml:"symbol_timeout_seconds"`
	StartupTimeoutSeconds int                       `yaml:"startup_timeout_seconds"`
	Servers               map[string]ServerOverride `yaml:"servers,omitempty"`
}

// DefaultRunConfig infers defaults from the current working directory.
func DefaultRunConfig() RunConfig {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return RunConfig{
		Workspace:             cwd,
		SymbolTimeoutSeconds:  10,
		StartupTimeoutSeconds: 60,
	}
}

// LoadRunConfig reads a YAML config over the defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize makes paths absolute and fills missing values so later code
// never re-checks the same invariants.
func (c *RunConfig) Normalize() error {
	if c.Workspace == "" {
		c.Workspace = "."
	}
	abs, err := filepath.Abs(c.Workspace)
	if err != nil {
		return err
	}
	c.Workspace = abs
	if c.SymbolTimeoutSeconds <= 0 {
		c.SymbolTimeoutSeconds = 10
	}
	if c.StartupTimeoutSeconds <= 0 {
		c.StartupTimeoutSeconds = 60
	}
	return nil
}

// SymbolTimeout is the per-file documentSymbol bound.
func (c RunConfig) SymbolTimeout() time.Duration {
	return time.Duration(c.SymbolTimeoutSeconds) * time.Second
}

// StartupTimeout bounds the spawn-and-handshake phase.
func (c RunConfig) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutSeconds) * time.Second
}

// ServerFor returns the spawn descriptor for a language, applying any
// configured override on top of the built-in table.
func (c RunConfig) ServerFor(lang language.Language) language.ServerDescriptor {
	desc := lang.Traits().Server
	if override, ok := c.Servers[string(lang)]; ok && override.Command != "" {
		desc.Command = override.Command
		desc.Args = override.Args
	}
	return desc
}
