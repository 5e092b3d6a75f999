// Package rules implements the validators that check rule-document front
// matter. Every expected failure becomes a finding on the collector; rules
// never panic and never abort a run.
package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/parser"
	"github.com/fmlint/fmlint/pkg/sanitizer"
)

// DocKind tells which required-field set applies to a document.
type DocKind int

const (
	// KindTenet documents declare a foundational principle.
	KindTenet DocKind = iota
	// KindBinding documents derive an enforceable rule from a tenet.
	KindBinding
)

// String returns the kind name used in messages.
func (k DocKind) String() string {
	if k == KindBinding {
		return "binding"
	}
	return "tenet"
}

// Document is one markdown file under validation.
type Document struct {
	Path    string
	Content string
}

// KindForDocument decides tenet vs binding: a path under a bindings (or
// tenets) directory wins; otherwise a derived_from field marks a binding.
func KindForDocument(path string, parsed map[string]any) DocKind {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch part {
		case "bindings":
			return KindBinding
		case "tenets":
			return KindTenet
		}
	}
	if parsed != nil {
		if _, ok := parsed["derived_from"]; ok {
			return KindBinding
		}
	}
	return KindTenet
}

// Options configures a validation run.
type Options struct {
	// ExpectedVersion, when non-empty, makes every document's version field
	// match it or fail with a version_mismatch finding.
	ExpectedVersion string
	// SchemaCheck runs the JSON-Schema rule after the field rules.
	SchemaCheck bool
}

// RunState is the cross-document memory of one validation run: which ids
// were declared where, and which tenet ids exist. It is built once by
// Prescan and read concurrently by per-file validation.
type RunState struct {
	idFiles  map[string]string
	tenetIDs map[string]bool
}

func newRunState() *RunState {
	return &RunState{
		idFiles:  make(map[string]string),
		tenetIDs: make(map[string]bool),
	}
}

// firstFile returns the first document that declared id.
func (s *RunState) firstFile(id string) (string, bool) {
	file, ok := s.idFiles[id]
	return file, ok
}

// hasTenet reports whether a tenet with the given id exists in the run.
func (s *RunState) hasTenet(id string) bool {
	return s.tenetIDs[id]
}

// Validator drives the field rules over documents of one run.
type Validator struct {
	opts  Options
	state *RunState
}

// New returns a Validator with empty run state.
func New(opts Options) *Validator {
	return &Validator{opts: opts, state: newRunState()}
}

// Prescan registers every document's id into the run state, in the order
// given. Call it with the full document set, sorted by path, before any
// ValidateFile call: duplicate-id detection and tenet references depend on
// it, and it must not run concurrently with validation.
func (v *Validator) Prescan(docs []Document) {
	for _, doc := range docs {
		fm := parser.Extract(doc.Content)
		if fm.Form != parser.FormYAML || fm.Unclosed {
			continue
		}
		parsed, _, parseErrs := parser.ParseWithLineMap(fm.Raw, fm.Offset)
		if len(parseErrs) > 0 || parsed == nil {
			continue
		}

		id, ok := parsed["id"].(string)
		if !ok || id == "" {
			continue
		}
		if _, seen := v.state.idFiles[id]; !seen {
			v.state.idFiles[id] = doc.Path
		}
		if KindForDocument(doc.Path, parsed) == KindTenet {
			v.state.tenetIDs[id] = true
		}
	}
}

// ValidateFile runs every rule for one document, appending findings to the
// collector. Values flagged as secrets are registered on the redactor so the
// formatter can scrub them from report text; redactor may be nil.
func (v *Validator) ValidateFile(doc Document, collector *findings.Collector, redactor *sanitizer.Redactor) {
	fm := parser.Extract(doc.Content)

	switch {
	case fm.Form == parser.FormNone:
		collector.AddError(doc.Path, 0, "", findings.TypeNoFrontmatter,
			"document has no front matter",
			"open the file with a --- delimited block declaring id, last_modified and version")
		return

	case fm.Form == parser.FormLegacy:
		collector.AddError(doc.Path, 1, "", findings.TypeNoFrontmatter,
			"front matter uses the legacy bold-label header",
			parser.LegacyMigrationSuggestion(fm))
		return

	case fm.Unclosed:
		collector.AddError(doc.Path, 1, "", findings.TypeYAMLSyntax,
			"front matter block is never closed",
			"add a closing --- line after the last field")
		return
	}

	parsed, lineMap, parseErrs := parser.ParseWithLineMap(fm.Raw, fm.Offset)
	if len(parseErrs) > 0 {
		for _, parseErr := range parseErrs {
			parseErr.File = doc.Path
			if parseErr.Type == findings.TypeEmptyFrontmatter && parseErr.Suggestion == "" {
				kind := KindForDocument(doc.Path, nil)
				parseErr.Suggestion = "declare at least: " + strings.Join(requiredFields(kind), ", ")
			}
			collector.Add(parseErr)
		}
		return
	}

	kind := KindForDocument(doc.Path, parsed)

	v.checkRequiredFields(doc, kind, parsed, fm.Offset, collector)
	v.checkID(doc, parsed, lineMap, collector)
	v.checkDate(doc, parsed, lineMap, collector)
	v.checkVersion(doc, parsed, lineMap, fm.Offset, collector)
	if kind == KindBinding {
		v.checkDerivedFrom(doc, parsed, lineMap, collector)
		v.checkEnforcedBy(doc, parsed, lineMap, collector)
	}
	v.checkOptionalFields(doc, parsed, lineMap, collector)
	v.checkUnknownFields(doc, kind, parsed, lineMap, collector)
	v.checkSecrets(doc, parsed, lineMap, collector, redactor)
	if v.opts.SchemaCheck {
		v.checkSchema(doc, kind, parsed, fm, collector)
	}
}

// fieldLine looks a field's declaration line up, falling back to the block
// start when the line map has no entry.
func fieldLine(lineMap parser.LineMap, field string, fallback int) int {
	if line, ok := lineMap[field]; ok {
		return line
	}
	return fallback
}

func describeValue(value any) string {
	return fmt.Sprintf("%v", value)
}
