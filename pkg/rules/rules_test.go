package rules

import (
	"strings"
	"testing"

	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/sanitizer"
)

const cleanTenet = `---
id: clarity
last_modified: '2024-01-15'
version: 1.0.0
---

# Clarity

Body text.
`

const cleanBinding = `---
id: error-wrapping
last_modified: '2024-01-15'
version: 1.0.0
derived_from: clarity
enforced_by: golangci-lint
---

Body text.
`

func tenetWithID(id string) string {
	return "---\nid: " + id + "\nlast_modified: '2024-01-15'\nversion: 1.0.0\n---\nBody.\n"
}

// runValidation prescans the target plus any companion documents, then
// validates the target alone.
func runValidation(t *testing.T, opts Options, target Document, others ...Document) ([]findings.Finding, *sanitizer.Redactor) {
	t.Helper()
	validator := New(opts)
	validator.Prescan(append([]Document{target}, others...))

	collector := findings.NewCollector()
	redactor := sanitizer.NewRedactor()
	validator.ValidateFile(target, collector, redactor)
	return collector.All(), redactor
}

func findingsOfType(all []findings.Finding, tag string) []findings.Finding {
	var matched []findings.Finding
	for _, f := range all {
		if f.Type == tag {
			matched = append(matched, f)
		}
	}
	return matched
}

func TestValidateFileCleanTenet(t *testing.T) {
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/clarity.md", Content: cleanTenet})
	if len(all) != 0 {
		t.Errorf("expected no findings for a clean tenet, got %v", all)
	}
}

func TestValidateFileCleanBinding(t *testing.T) {
	tenet := Document{Path: "docs/tenets/clarity.md", Content: cleanTenet}
	binding := Document{Path: "docs/bindings/go/error-wrapping.md", Content: cleanBinding}

	all, _ := runValidation(t, Options{SchemaCheck: true}, binding, tenet)
	if len(all) != 0 {
		t.Errorf("expected no findings for a clean binding, got %v", all)
	}
}

func TestValidateFileNoFrontmatter(t *testing.T) {
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/bare.md", Content: "# Title\n\nBody.\n"})

	matched := findingsOfType(all, findings.TypeNoFrontmatter)
	if len(matched) != 1 {
		t.Fatalf("expected one no_frontmatter finding, got %v", all)
	}
	if matched[0].Line != 0 {
		t.Errorf("expected document-level line 0, got %d", matched[0].Line)
	}
	if matched[0].Suggestion == "" {
		t.Error("expected a suggestion telling how to open a front matter block")
	}
}

func TestValidateFileLegacyHeader(t *testing.T) {
	content := "**ID**: clarity\n**Version**: 1.0.0\n\nBody.\n"
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/old.md", Content: content})

	matched := findingsOfType(all, findings.TypeNoFrontmatter)
	if len(matched) != 1 {
		t.Fatalf("expected one no_frontmatter finding, got %v", all)
	}
	if matched[0].Line != 1 {
		t.Errorf("expected line 1, got %d", matched[0].Line)
	}
	if !strings.Contains(matched[0].Message, "legacy") {
		t.Errorf("expected message to name the legacy header, got %q", matched[0].Message)
	}
	for _, want := range []string{"---", "id: clarity", "version: 1.0.0"} {
		if !strings.Contains(matched[0].Suggestion, want) {
			t.Errorf("expected migration suggestion to contain %q, got %q", want, matched[0].Suggestion)
		}
	}
}

func TestValidateFileUnclosedBlock(t *testing.T) {
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/open.md", Content: "---\nid: clarity\n"})

	matched := findingsOfType(all, findings.TypeYAMLSyntax)
	if len(matched) != 1 {
		t.Fatalf("expected one yaml_syntax finding, got %v", all)
	}
	if matched[0].Line != 1 {
		t.Errorf("expected line 1 for the opening delimiter, got %d", matched[0].Line)
	}
	if !strings.Contains(matched[0].Message, "never closed") {
		t.Errorf("unexpected message %q", matched[0].Message)
	}
}

func TestValidateFileEmptyBlock(t *testing.T) {
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/empty.md", Content: "---\n\n---\nBody.\n"})

	matched := findingsOfType(all, findings.TypeEmptyFrontmatter)
	if len(matched) != 1 {
		t.Fatalf("expected one empty_frontmatter finding, got %v", all)
	}
	if matched[0].File != "docs/tenets/empty.md" {
		t.Errorf("expected the finding stamped with the document path, got %q", matched[0].File)
	}
	if matched[0].Line != 0 {
		t.Errorf("expected document-level line 0, got %d", matched[0].Line)
	}
	if !strings.Contains(matched[0].Suggestion, "id, last_modified, version") {
		t.Errorf("expected required fields in the suggestion, got %q", matched[0].Suggestion)
	}
}

func TestValidateFileSyntaxError(t *testing.T) {
	content := "---\nid: \"unterminated\n---\nBody.\n"
	all, _ := runValidation(t, Options{}, Document{Path: "docs/tenets/broken.md", Content: content})

	matched := findingsOfType(all, findings.TypeYAMLSyntax)
	if len(matched) != 1 {
		t.Fatalf("expected one yaml_syntax finding, got %v", all)
	}
	if matched[0].File != "docs/tenets/broken.md" {
		t.Errorf("expected the finding stamped with the document path, got %q", matched[0].File)
	}
	if matched[0].Line < 2 {
		t.Errorf("expected a document line inside the block, got %d", matched[0].Line)
	}
}

func TestValidateFileDuplicateID(t *testing.T) {
	first := Document{Path: "docs/tenets/automation.md", Content: tenetWithID("automation")}
	second := Document{Path: "docs/tenets/copy.md", Content: tenetWithID("automation")}

	validator := New(Options{})
	validator.Prescan([]Document{first, second})

	firstCollector := findings.NewCollector()
	validator.ValidateFile(first, firstCollector, nil)
	if dups := findingsOfType(firstCollector.All(), findings.TypeDuplicateID); len(dups) != 0 {
		t.Errorf("the first declaration must not be flagged, got %v", dups)
	}

	secondCollector := findings.NewCollector()
	validator.ValidateFile(second, secondCollector, nil)
	dups := findingsOfType(secondCollector.All(), findings.TypeDuplicateID)
	if len(dups) != 1 {
		t.Fatalf("expected one duplicate_id finding, got %v", secondCollector.All())
	}
	if !strings.Contains(dups[0].Message, "docs/tenets/automation.md") {
		t.Errorf("expected the message to name the first declaring file, got %q", dups[0].Message)
	}
	if dups[0].Field != "id" || dups[0].Line != 2 {
		t.Errorf("expected field id on line 2, got field %q line %d", dups[0].Field, dups[0].Line)
	}
}

func TestPrescanSkipsUnparseableDocuments(t *testing.T) {
	unclosed := Document{Path: "docs/tenets/unclosed.md", Content: "---\nid: automation\n"}
	proper := Document{Path: "docs/tenets/automation.md", Content: tenetWithID("automation")}

	validator := New(Options{})
	validator.Prescan([]Document{unclosed, proper})

	collector := findings.NewCollector()
	validator.ValidateFile(proper, collector, nil)
	if dups := findingsOfType(collector.All(), findings.TypeDuplicateID); len(dups) != 0 {
		t.Errorf("unparseable documents must not register ids, got %v", dups)
	}
}

func TestKindForDocument(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		parsed map[string]any
		want   DocKind
	}{
		{"bindings path", "docs/bindings/go/wrap.md", nil, KindBinding},
		{"tenets path", "docs/tenets/clarity.md", nil, KindTenet},
		{"derived_from marks binding", "notes/wrap.md", map[string]any{"derived_from": "clarity"}, KindBinding},
		{"plain document is tenet", "notes/clarity.md", map[string]any{"id": "clarity"}, KindTenet},
		{"path wins over fields", "docs/tenets/odd.md", map[string]any{"derived_from": "clarity"}, KindTenet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindForDocument(tt.path, tt.parsed); got != tt.want {
				t.Errorf("KindForDocument(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
