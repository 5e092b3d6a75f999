package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fmlint/fmlint/pkg/cli"
)

func TestValidateColorMode(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		expectErr bool
	}{
		{"auto is valid", "auto", false},
		{"always is valid", "always", false},
		{"never is valid", "never", false},
		{"empty is invalid", "", true},
		{"unknown value", "sometimes", true},
		{"case sensitive", "Auto", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateColorMode(tt.mode)
			if tt.expectErr {
				if err == nil {
					t.Errorf("validateColorMode(%q) expected error but got none", tt.mode)
				} else if !strings.Contains(err.Error(), tt.mode) {
					t.Errorf("validateColorMode(%q) error should name the value, got: %v", tt.mode, err)
				}
			} else if err != nil {
				t.Errorf("validateColorMode(%q) unexpected error: %v", tt.mode, err)
			}
		})
	}
}

// newValidateFlags mirrors the validate command's flag definitions so option
// merging can be tested without mutating the shared command state.
func newValidateFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "validate"}
	cmd.Flags().IntP("parallel", "p", 0, "")
	cmd.Flags().Bool("strict", false, "")
	cmd.Flags().BoolP("quiet", "q", false, "")
	cmd.Flags().String("color", "auto", "")
	cmd.Flags().Bool("granular-exit", false, "")
	return cmd
}

// configuredDir creates a directory holding the given .fmlint.toml content.
// An empty file decodes to pure defaults and shields the test from any
// configuration above the temp directory.
func configuredDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".fmlint.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestBuildValidateOptionsDefaults(t *testing.T) {
	dir := configuredDir(t, "")

	opts, err := buildValidateOptions(newValidateFlags(), []string{dir})
	if err != nil {
		t.Fatalf("buildValidateOptions failed: %v", err)
	}
	if opts.Color != "auto" {
		t.Errorf("color = %q, want auto", opts.Color)
	}
	if opts.ContextLines != 2 {
		t.Errorf("context lines = %d, want 2", opts.ContextLines)
	}
	if !opts.SchemaCheck {
		t.Error("schema check must default to on")
	}
	if opts.GranularExit {
		t.Error("granular exit must default to off")
	}
	if len(opts.Paths) != 1 || opts.Paths[0] != dir {
		t.Errorf("paths = %v, want [%s]", opts.Paths, dir)
	}
}

func TestBuildValidateOptionsFlagOverridesConfig(t *testing.T) {
	dir := configuredDir(t, `
[output]
color = "never"
context_lines = 4

[policy]
granular_exit_codes = true
`)

	cmd := newValidateFlags()
	if err := cmd.Flags().Set("color", "always"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	opts, err := buildValidateOptions(cmd, []string{dir})
	if err != nil {
		t.Fatalf("buildValidateOptions failed: %v", err)
	}
	if opts.Color != "always" {
		t.Errorf("color = %q, the changed flag must override the file", opts.Color)
	}
	if !opts.GranularExit {
		t.Error("granular exit from the file must survive an untouched flag")
	}
	if opts.ContextLines != 4 {
		t.Errorf("context lines = %d, want 4 from the file", opts.ContextLines)
	}
}

func TestBuildValidateOptionsFileArgument(t *testing.T) {
	dir := configuredDir(t, "[docs]\nexpected_version = \"2.0.0\"\n")
	doc := filepath.Join(dir, "tenet.md")
	if err := os.WriteFile(doc, []byte("---\nid: x\n---\n"), 0644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	opts, err := buildValidateOptions(newValidateFlags(), []string{doc})
	if err != nil {
		t.Fatalf("buildValidateOptions failed: %v", err)
	}
	if opts.ExpectedVersion != "2.0.0" {
		t.Errorf("expected discovery to start from the file's directory, got %+v", opts)
	}
}

func TestBuildValidateOptionsRejectsBadColorFlag(t *testing.T) {
	dir := configuredDir(t, "")

	cmd := newValidateFlags()
	if err := cmd.Flags().Set("color", "rainbow"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	if _, err := buildValidateOptions(cmd, []string{dir}); err == nil || !strings.Contains(err.Error(), "rainbow") {
		t.Errorf("expected a color validation error, got %v", err)
	}
}

func TestCommandStructure(t *testing.T) {
	t.Run("root command is configured", func(t *testing.T) {
		if rootCmd.Use == "" || rootCmd.Short == "" || rootCmd.Long == "" {
			t.Error("root command must carry usage text")
		}
	})

	t.Run("subcommands registered", func(t *testing.T) {
		expected := []string{"validate", "watch", "version"}
		names := make(map[string]bool)
		for _, cmd := range rootCmd.Commands() {
			names[cmd.Name()] = true
		}
		for _, want := range expected {
			if !names[want] {
				t.Errorf("command %q should be registered", want)
			}
		}
	})

	t.Run("global verbose flag", func(t *testing.T) {
		flag := rootCmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("verbose flag should be configured")
		}
		if flag.DefValue != "false" {
			t.Error("verbose flag should default to false")
		}
	})
}

func TestSetVersionInfoRoundTrip(t *testing.T) {
	original := cli.GetVersion()
	defer cli.SetVersionInfo(original)

	cli.SetVersionInfo("9.9.9-test")
	if cli.GetVersion() != "9.9.9-test" {
		t.Error("SetVersionInfo should update the version in the CLI package")
	}
}

func TestVersionCommandOutput(t *testing.T) {
	original := cli.GetVersion()
	defer cli.SetVersionInfo(original)
	cli.SetVersionInfo("1.2.3-test")

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	versionCmd.Run(versionCmd, nil)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "fmlint") || !strings.Contains(output, "1.2.3-test") {
		t.Errorf("version output should name the binary and version, got: %q", output)
	}
}
