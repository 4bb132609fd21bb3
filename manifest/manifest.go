// Package manifest handles marmoset.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a marmoset.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Run     Run     `toml:"run"`
	Trace   Trace   `toml:"trace"`

	// Dir is the directory containing the marmoset.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Run configures the execution driver.
type Run struct {
	MaxSteps        int `toml:"max-steps"`
	HistoryCapacity int `toml:"history-capacity"`
}

// Trace configures the sqlite trace recorder.
type Trace struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// FileName is the canonical manifest file name.
const FileName = "marmoset.toml"

// Load parses a marmoset.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	m.Dir = dir
	m.applyDefaults()

	return &m, nil
}

// Exists reports whether a manifest file is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Default returns a manifest with defaults applied, for flag-driven runs.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Run.MaxSteps <= 0 {
		m.Run.MaxSteps = 50000
	}
	if m.Run.HistoryCapacity <= 0 {
		m.Run.HistoryCapacity = 500
	}
	if m.Trace.Path == "" {
		m.Trace.Path = "marmoset-trace.db"
	}
}

// EntryPath resolves the configured entry file relative to the manifest
// directory.
func (m *Manifest) EntryPath() string {
	if m.Project.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Project.Entry) {
		return m.Project.Entry
	}
	return filepath.Join(m.Dir, m.Project.Entry)
}
