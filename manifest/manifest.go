// Package manifest handles tova.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "tova.toml"

// Manifest represents a tova.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	VM      VMConfig    `toml:"vm"`
	Image   ImageConfig `toml:"image"`

	// Dir is the directory containing the tova.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// VMConfig configures the execution engine.
type VMConfig struct {
	// StackCapacity is the operand stack limit. Zero means the
	// engine default. It is a checked ceiling: exceeding it at
	// runtime is a diagnosed error, never silent corruption.
	StackCapacity int `toml:"stack-capacity"`

	// TraceExecution enables per-instruction disassembly on the
	// trace channel. Diagnostic only; never affects semantics.
	TraceExecution bool `toml:"trace-execution"`

	// TraceStack enables per-instruction stack dumps.
	TraceStack bool `toml:"trace-stack"`
}

// ImageConfig configures chunk image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// Default returns the manifest used when no tova.toml is present.
func Default() *Manifest {
	return &Manifest{
		Image: ImageConfig{Output: "out.tvc"},
	}
}

// Exists reports whether dir contains a tova.toml.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Load parses a tova.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	m.Dir = dir

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the manifest for out-of-range settings.
func (m *Manifest) Validate() error {
	if m.VM.StackCapacity < 0 {
		return fmt.Errorf("vm.stack-capacity must not be negative (got %d)", m.VM.StackCapacity)
	}
	if m.VM.StackCapacity > 1<<16 {
		return fmt.Errorf("vm.stack-capacity %d exceeds the supported maximum %d", m.VM.StackCapacity, 1<<16)
	}
	return nil
}
