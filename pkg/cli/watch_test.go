package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestWatchRoots(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/tenets/clarity.md", cleanTenetDoc)
	writeDoc(t, root, "docs/bindings/go/wrap-errors.md", cleanBindingDoc)
	writeDoc(t, root, ".git/config.md", "not a document")

	dirs := watchRoots([]string{root})

	want := []string{
		root,
		filepath.Join(root, "docs"),
		filepath.Join(root, "docs", "bindings"),
		filepath.Join(root, "docs", "bindings", "go"),
		filepath.Join(root, "docs", "tenets"),
	}
	if len(dirs) != len(want) {
		t.Fatalf("expected %d directories, got %v", len(want), dirs)
	}
	got := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		got[dir] = true
	}
	for _, dir := range want {
		if !got[dir] {
			t.Errorf("expected %s among watch roots, got %v", dir, dirs)
		}
	}
	if got[filepath.Join(root, ".git")] {
		t.Errorf("dot directories must not be watched, got %v", dirs)
	}
}

func TestWatchRootsFileArgument(t *testing.T) {
	root := t.TempDir()
	path := writeDoc(t, root, "docs/tenets/clarity.md", cleanTenetDoc)

	dirs := watchRoots([]string{path})

	if len(dirs) != 1 || dirs[0] != filepath.Dir(path) {
		t.Errorf("expected only the parent directory, got %v", dirs)
	}
}

func TestWatchRootsSkipsMissingPaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	if dirs := watchRoots([]string{missing}); len(dirs) != 0 {
		t.Errorf("expected no roots for a missing path, got %v", dirs)
	}
}

func TestWatchCycleFullRun(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/tenets/clarity.md", cleanTenetDoc)
	writeDoc(t, root, "docs/bindings/go/wrap-errors.md", cleanBindingDoc)

	output := captureStdout(t, func() {
		watchCycle(testOptions(root), []string{root}, nil)
	})

	if !strings.Contains(output, "all files valid (2 checked)") {
		t.Errorf("expected a full-set success message, got %q", output)
	}
}

func TestWatchCycleChangedSubset(t *testing.T) {
	root := t.TempDir()
	clean := writeDoc(t, root, "docs/tenets/clarity.md", cleanTenetDoc)
	writeDoc(t, root, "docs/tenets/bad.md", badIDTenetDoc)

	output := captureStdout(t, func() {
		watchCycle(testOptions(root), []string{root}, []string{clean})
	})

	if !strings.Contains(output, "all files valid (1 checked)") {
		t.Errorf("expected only the changed file revalidated, got %q", output)
	}
	if strings.Contains(output, "bad.md") {
		t.Errorf("unchanged files must not be reported, got %q", output)
	}
}

func TestWatchCycleKeepsCrossFileState(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "docs/tenets/first.md", cleanTenetDoc)
	second := writeDoc(t, root, "docs/tenets/second.md", cleanTenetDoc)

	output := captureStdout(t, func() {
		watchCycle(testOptions(root), []string{root}, []string{second})
	})

	if !strings.Contains(output, "already declared") {
		t.Errorf("expected the duplicate id caught against the unchanged file, got %q", output)
	}
	if !strings.Contains(output, "first.md") {
		t.Errorf("expected the first declaration named, got %q", output)
	}
}
