// Package config loads the per-project .fmlint.toml. The file is found by
// walking from a start directory up to the filesystem root; every field is
// optional and decoding layers the file over the defaults, so a missing or
// partial file is never an error. Command-line flags override whatever the
// file set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fmlint/fmlint/pkg/constants"
)

// Config is the decoded .fmlint.toml.
type Config struct {
	Output OutputConfig `toml:"output"`
	Policy PolicyConfig `toml:"policy"`
	Docs   DocsConfig   `toml:"docs"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Color is one of "auto", "always" or "never".
	Color string `toml:"color"`
	// ContextLines is the number of source lines shown on each side of an
	// erroring line.
	ContextLines int `toml:"context_lines"`
}

// PolicyConfig controls exit-code mapping.
type PolicyConfig struct {
	GranularExitCodes bool `toml:"granular_exit_codes"`
}

// DocsConfig controls document validation.
type DocsConfig struct {
	// ExpectedVersion, when set, requires every document's version field to
	// match it.
	ExpectedVersion string `toml:"expected_version"`
	// Schema toggles the JSON-Schema rule.
	Schema bool `toml:"schema"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Output: OutputConfig{
			Color:        "auto",
			ContextLines: constants.DefaultContextLines,
		},
		Docs: DocsConfig{
			Schema: true,
		},
	}
}

// Find walks from startDir toward the filesystem root and returns the first
// .fmlint.toml it sees.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, constants.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults. Unknown keys are tolerated.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	switch cfg.Output.Color {
	case "auto", "always", "never":
	default:
		return Default(), fmt.Errorf("%s: [output].color must be auto, always or never, got %q", path, cfg.Output.Color)
	}
	if cfg.Output.ContextLines < 0 {
		return Default(), fmt.Errorf("%s: [output].context_lines must not be negative", path)
	}

	return cfg, nil
}

// Discover finds and loads the nearest configuration file. When none exists
// it returns the defaults and an empty path.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Default(), "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Default(), path, err
	}
	return cfg, path, nil
}
