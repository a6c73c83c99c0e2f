// Package manifest handles cafebabe.toml runner configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file name looked up in a project directory.
const ManifestName = "cafebabe.toml"

// Manifest represents a cafebabe.toml runner configuration.
type Manifest struct {
	Run   Run   `toml:"run"`
	Index Index `toml:"index"`
	Log   Log   `toml:"log"`

	// Dir is the directory containing the cafebabe.toml file (set at load
	// time).
	Dir string `toml:"-"`
}

// Run configures execution and the post-parse sanity checks.
type Run struct {
	Entry       string `toml:"entry"`
	ExpectThis  string `toml:"expect-this"`
	ExpectSuper string `toml:"expect-super"`
}

// Index configures the class catalog database.
type Index struct {
	Path string `toml:"path"`
}

// Log configures diagnostics.
type Log struct {
	Verbose bool `toml:"verbose"`
}

// Default returns the configuration used when no manifest file exists.
func Default() *Manifest {
	m := &Manifest{Dir: "."}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Run.Entry == "" {
		m.Run.Entry = "main"
	}
	if m.Run.ExpectSuper == "" {
		m.Run.ExpectSuper = "java/lang/Object"
	}
	if m.Index.Path == "" {
		m.Index.Path = filepath.Join(".cafebabe", "classes.db")
	}
}

// Load parses a cafebabe.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m.applyDefaults()

	return &m, nil
}

// FindAndLoad walks up from startDir to find a cafebabe.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// IndexPath returns the absolute path of the class catalog database.
func (m *Manifest) IndexPath() string {
	if filepath.IsAbs(m.Index.Path) {
		return m.Index.Path
	}
	return filepath.Join(m.Dir, m.Index.Path)
}
