package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TestDataDir is the fixture directory, relative to this package.
const TestDataDir = "testdata"

// LoadedSuite pairs a suite with the file it came from.
type LoadedSuite struct {
	File  string
	Suite TestSuite
}

// LoadAllSuites reads every .yaml fixture under dir.
func LoadAllSuites(dir string) ([]LoadedSuite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read fixture directory %s: %w", dir, err)
	}

	var loaded []LoadedSuite
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		suite, err := loadSuiteFile(path)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, LoadedSuite{File: entry.Name(), Suite: *suite})
	}

	if len(loaded) == 0 {
		return nil, fmt.Errorf("no .yaml fixtures found in %s", dir)
	}
	return loaded, nil
}

func loadSuiteFile(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if suite.Name == "" {
		suite.Name = filepath.Base(path)
	}
	for i, tc := range suite.Tests {
		if tc.Name == "" {
			return nil, fmt.Errorf("%s: test %d has no name", path, i)
		}
		if len(tc.Program) == 0 {
			return nil, fmt.Errorf("%s: test %q has an empty program", path, tc.Name)
		}
		if (tc.Output != nil) == (tc.Error != "") {
			return nil, fmt.Errorf("%s: test %q must set exactly one of output or error", path, tc.Name)
		}
	}
	return &suite, nil
}
