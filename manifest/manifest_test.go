package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	content := `
[project]
name = "demo"
entry = "Main.java"

[run]
max-steps = 1000
history-capacity = 50

[trace]
enabled = true
path = "out.db"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Project.Name != "demo" {
		t.Errorf("name = %q", m.Project.Name)
	}
	if m.Run.MaxSteps != 1000 {
		t.Errorf("max-steps = %d", m.Run.MaxSteps)
	}
	if m.Run.HistoryCapacity != 50 {
		t.Errorf("history-capacity = %d", m.Run.HistoryCapacity)
	}
	if !m.Trace.Enabled || m.Trace.Path != "out.db" {
		t.Errorf("trace = %+v", m.Trace)
	}
	if got := m.EntryPath(); got != filepath.Join(dir, "Main.java") {
		t.Errorf("entry path = %q", got)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[project]\nname = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Run.MaxSteps != 50000 {
		t.Errorf("default max-steps = %d", m.Run.MaxSteps)
	}
	if m.Run.HistoryCapacity != 500 {
		t.Errorf("default history = %d", m.Run.HistoryCapacity)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
	if Exists(t.TempDir()) {
		t.Error("Exists true for empty dir")
	}
}
