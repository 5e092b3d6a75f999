package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".fmlint.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output.Color != "auto" {
		t.Errorf("default color = %q, want auto", cfg.Output.Color)
	}
	if cfg.Output.ContextLines != 2 {
		t.Errorf("default context lines = %d, want 2", cfg.Output.ContextLines)
	}
	if !cfg.Docs.Schema {
		t.Error("the schema rule must default to on")
	}
	if cfg.Policy.GranularExitCodes {
		t.Error("granular exit codes must default to off")
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[output]
color = "never"
context_lines = 4

[policy]
granular_exit_codes = true

[docs]
expected_version = "1.2.0"
schema = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Color != "never" || cfg.Output.ContextLines != 4 {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}
	if !cfg.Policy.GranularExitCodes {
		t.Error("expected granular exit codes on")
	}
	if cfg.Docs.ExpectedVersion != "1.2.0" || cfg.Docs.Schema {
		t.Errorf("unexpected docs config %+v", cfg.Docs)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[policy]
granular_exit_codes = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Color != "auto" || cfg.Output.ContextLines != 2 {
		t.Errorf("defaults lost: %+v", cfg.Output)
	}
	if !cfg.Docs.Schema {
		t.Error("an absent [docs].schema must stay on")
	}
	if !cfg.Policy.GranularExitCodes {
		t.Error("expected granular exit codes on")
	}
}

func TestLoadUnknownKeysTolerated(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
future_knob = "yes"

[output]
color = "always"
sparkle = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unknown keys must be tolerated, got %v", err)
	}
	if cfg.Output.Color != "always" {
		t.Errorf("color = %q, want always", cfg.Output.Color)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("color", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "[output]\ncolor = \"sometimes\"\n")
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "color") {
			t.Errorf("expected a color error, got %v", err)
		}
	})

	t.Run("context lines", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "[output]\ncontext_lines = -1\n")
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "context_lines") {
			t.Errorf("expected a context_lines error, got %v", err)
		}
	})

	t.Run("broken TOML", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "[output\n")
		if _, err := Load(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	wrote := writeConfig(t, root, "[policy]\ngranular_exit_codes = true\n")

	nested := filepath.Join(root, "docs", "tenets")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dirs: %v", err)
	}

	found, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find failed: ok=%v err=%v", ok, err)
	}
	if found != wrote {
		t.Errorf("found %q, want %q", found, wrote)
	}
}

func TestFindFirstHitWins(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[docs]\nexpected_version = \"9.9.9\"\n")

	child := filepath.Join(root, "docs")
	if err := os.MkdirAll(child, 0755); err != nil {
		t.Fatalf("failed to create child dir: %v", err)
	}
	nearest := writeConfig(t, child, "[docs]\nexpected_version = \"1.0.0\"\n")

	found, ok, err := Find(child)
	if err != nil || !ok {
		t.Fatalf("Find failed: ok=%v err=%v", ok, err)
	}
	if found != nearest {
		t.Errorf("found %q, want the nearest file %q", found, nearest)
	}
}

func TestDiscoverLoadsNearest(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[docs]\nexpected_version = \"3.0.0\"\n")

	cfg, path, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected the config path reported")
	}
	if cfg.Docs.ExpectedVersion != "3.0.0" {
		t.Errorf("expected_version = %q, want 3.0.0", cfg.Docs.ExpectedVersion)
	}
}
