package rules

import (
	"github.com/fmlint/fmlint/internal/mapper"
	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/parser"
)

// missingFieldTags groups the tags that report absent required fields. The
// schema's required cause and the field rules describe the same omission with
// different tags, so deduplication treats the group as one finding.
var missingFieldTags = map[string]bool{
	findings.TypeMissingRequiredFields: true,
	findings.TypeMissingVersion:        true,
}

// checkSchema validates the decoded front matter against the JSON Schema for
// the document kind and maps each cause back to a field and line. Causes the
// field rules already reported are skipped.
func (v *Validator) checkSchema(doc Document, kind DocKind, parsed map[string]any, fm parser.Frontmatter, collector *findings.Collector) {
	var err error
	if kind == KindBinding {
		err = parser.ValidateBindingFrontmatter(parsed)
	} else {
		err = parser.ValidateTenetFrontmatter(parsed)
	}
	if err == nil {
		return
	}

	resolved := mapper.ResolveFieldErrors(err, fm.Raw, fm.Offset)
	if len(resolved) == 0 {
		collector.AddError(doc.Path, 0, "", "schema_validation", mapper.CleanMessage(err), "")
		return
	}

	existing := collector.All()
	for _, fieldErr := range resolved {
		if schemaFindingCovered(existing, doc.Path, fieldErr) {
			continue
		}
		line := fieldErr.Line
		if line == 0 && fieldErr.Tag == findings.TypeMissingRequiredFields {
			line = fm.Offset
		}
		if fieldErr.Tag == findings.TypeUnknownFields {
			collector.AddWarning(doc.Path, line, fieldErr.Field, fieldErr.Tag, fieldErr.Message, "")
			continue
		}
		collector.AddError(doc.Path, line, fieldErr.Field, fieldErr.Tag, fieldErr.Message, "")
	}
}

func schemaFindingCovered(existing []findings.Finding, file string, fieldErr mapper.FieldError) bool {
	for _, f := range existing {
		if f.File != file {
			continue
		}
		if f.Field == fieldErr.Field && f.Type == fieldErr.Tag {
			return true
		}
		if missingFieldTags[f.Type] && missingFieldTags[fieldErr.Tag] {
			return true
		}
	}
	return false
}
