package toolchain

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yannbam/lspmap/discovery"
	"github.com/yannbam/lspmap/language"
)

// ServerStatus stores availability for one supported language server.
type ServerStatus struct {
	Language         string   `json:"language"`
	Command          string   `json:"command"`
	CommandPath      string   `json:"command_path,omitempty"`
	Available        bool     `json:"available"`
	Extensions       []string `json:"extensions"`
	WorkspaceMatches int      `json:"workspace_matches"`
}

// Snapshot is the persisted detection result so other tools can share it.
type Snapshot struct {
	Workspace   string         `json:"workspace"`
	LastUpdated time.Time      `json:"last_updated"`
	Servers     []ServerStatus `json:"servers"`
}

// DefaultSnapshotPath returns the default workspace snapshot location.
func DefaultSnapshotPath(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, ".lspmap", "servers.json")
}

// Detect probes every supported language server on PATH and counts matching
// workspace files per language.
func Detect(workspace string) (*Snapshot, error) {
	snapshot := &Snapshot{
		Workspace:   workspace,
		LastUpdated: time.Now(),
	}
	for _, lang := range language.All() {
		desc := lang.Traits().Server
		status := ServerStatus{
			Language:   string(lang),
			Command:    desc.Command,
			Extensions: desc.Extensions,
		}
		if path, err := exec.LookPath(desc.Command); err == nil {
			status.Available = true
			status.CommandPath = path
		}
		if files, err := discovery.FindFiles(workspace, desc.Extensions); err == nil {
			status.WorkspaceMatches = len(files)
		}
		snapshot.Servers = append(snapshot.Servers, status)
	}
	return snapshot, nil
}

// Save writes the snapshot JSON, creating parent dirs as needed.
func (s *Snapshot) Save(path string) error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSnapshot reads a previously saved snapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
