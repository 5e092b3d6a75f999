package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/parser"
)

var (
	// slugPattern is the lowercase hyphenated shape every id takes.
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// datePattern is the literal YYYY-MM-DD shape of last_modified.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// semverPattern is the MAJOR.MINOR.PATCH shape of version.
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// requiredFields lists the fields a document of the given kind must declare.
func requiredFields(kind DocKind) []string {
	fields := []string{"id", "last_modified", "version"}
	if kind == KindBinding {
		fields = append(fields, "derived_from", "enforced_by")
	}
	return fields
}

// knownFields is the set of recognized keys for a document kind; everything
// else is reported by the unknown-fields rule.
func knownFields(kind DocKind) map[string]bool {
	known := map[string]bool{
		"id":            true,
		"last_modified": true,
		"version":       true,
		"applies_to":    true,
	}
	if kind == KindBinding {
		known["derived_from"] = true
		known["enforced_by"] = true
	}
	return known
}

func (v *Validator) checkRequiredFields(doc Document, kind DocKind, parsed map[string]any, offset int, collector *findings.Collector) {
	var missing []string
	for _, field := range requiredFields(kind) {
		// version has its own rule with a dedicated tag.
		if field == "version" {
			continue
		}
		if _, ok := parsed[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return
	}

	collector.AddError(doc.Path, offset, "", findings.TypeMissingRequiredFields,
		fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		fmt.Sprintf("a %s declares %s", kind, strings.Join(requiredFields(kind), ", ")))
}

func (v *Validator) checkID(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	raw, ok := parsed["id"]
	if !ok {
		return
	}
	line := fieldLine(lineMap, "id", 0)

	id, ok := raw.(string)
	if !ok {
		collector.AddError(doc.Path, line, "id", findings.TypeInvalidIDFormat,
			fmt.Sprintf("id must be a string, got %s", describeValue(raw)), "")
		return
	}
	if !slugPattern.MatchString(id) {
		suggestion := ""
		if slug := slugify(id); slug != "" {
			suggestion = "id: " + slug
		}
		collector.AddError(doc.Path, line, "id", findings.TypeInvalidIDFormat,
			fmt.Sprintf("id '%s' is not a lowercase hyphenated slug", id), suggestion)
		return
	}

	if first, seen := v.state.firstFile(id); seen && first != doc.Path {
		collector.AddError(doc.Path, line, "id", findings.TypeDuplicateID,
			fmt.Sprintf("id '%s' is already declared in %s", id, first),
			"pick an id unique across the rule set")
	}
}

func (v *Validator) checkDate(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	raw, ok := parsed["last_modified"]
	if !ok {
		return
	}
	line := fieldLine(lineMap, "last_modified", 0)

	text, ok := dateString(raw)
	if !ok {
		collector.AddError(doc.Path, line, "last_modified", findings.TypeInvalidDateFormat,
			fmt.Sprintf("last_modified must be a YYYY-MM-DD date string, got %s", describeValue(raw)),
			"quote the date, e.g. last_modified: '2024-01-15'")
		return
	}
	if !datePattern.MatchString(text) {
		collector.AddError(doc.Path, line, "last_modified", findings.TypeInvalidDateFormat,
			fmt.Sprintf("last_modified '%s' is not a YYYY-MM-DD date", text),
			"quote the date, e.g. last_modified: '2024-01-15'")
		return
	}
	if _, err := time.Parse("2006-01-02", text); err != nil {
		collector.AddError(doc.Path, line, "last_modified", findings.TypeInvalidDateFormat,
			fmt.Sprintf("last_modified '%s' is not a real calendar date", text), "")
	}
}

// dateString accepts the two shapes YAML decoding can hand us for a date.
func dateString(value any) (string, bool) {
	switch date := value.(type) {
	case string:
		return date, true
	case time.Time:
		return date.Format("2006-01-02"), true
	}
	return "", false
}

func (v *Validator) checkVersion(doc Document, parsed map[string]any, lineMap parser.LineMap, offset int, collector *findings.Collector) {
	raw, ok := parsed["version"]
	if !ok {
		suggestion := "version: 0.1.0"
		if v.opts.ExpectedVersion != "" {
			suggestion = "version: " + v.opts.ExpectedVersion
		}
		collector.AddError(doc.Path, offset, "version", findings.TypeMissingVersion,
			"version field is missing", suggestion)
		return
	}
	line := fieldLine(lineMap, "version", offset)

	version, ok := raw.(string)
	if !ok {
		collector.AddError(doc.Path, line, "version", findings.TypeInvalidVersionFormat,
			fmt.Sprintf("version must be a MAJOR.MINOR.PATCH string, got %s", describeValue(raw)),
			"quote the version, e.g. version: '1.0.0'")
		return
	}
	if !semverPattern.MatchString(version) {
		collector.AddError(doc.Path, line, "version", findings.TypeInvalidVersionFormat,
			fmt.Sprintf("version '%s' is not MAJOR.MINOR.PATCH", version),
			"quote the version, e.g. version: '1.0.0'")
		return
	}

	if v.opts.ExpectedVersion != "" && version != v.opts.ExpectedVersion {
		collector.AddError(doc.Path, line, "version", findings.TypeVersionMismatch,
			fmt.Sprintf("version %s does not match expected version %s", version, v.opts.ExpectedVersion),
			"version: "+v.opts.ExpectedVersion)
	}
}

func (v *Validator) checkDerivedFrom(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	raw, ok := parsed["derived_from"]
	if !ok {
		return
	}
	line := fieldLine(lineMap, "derived_from", 0)

	ref, ok := raw.(string)
	if !ok || !slugPattern.MatchString(ref) {
		collector.AddError(doc.Path, line, "derived_from", findings.TypeInvalidDerivedFromFormat,
			fmt.Sprintf("derived_from must be a tenet id slug, got %s", describeValue(raw)), "")
		return
	}
	if !v.state.hasTenet(ref) {
		collector.AddError(doc.Path, line, "derived_from", findings.TypeNonexistentTenetReference,
			fmt.Sprintf("derived_from references unknown tenet '%s'", ref),
			"reference a tenet id that exists in this rule set")
	}
}

func (v *Validator) checkEnforcedBy(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	raw, ok := parsed["enforced_by"]
	if !ok {
		return
	}
	if validEnforcedBy(raw) {
		return
	}

	collector.AddError(doc.Path, fieldLine(lineMap, "enforced_by", 0), "enforced_by",
		findings.TypeInvalidEnforcedByFormat,
		"enforced_by must be a non-empty string or a list of non-empty strings",
		"name the enforcing tool or process, e.g. enforced_by: golangci-lint")
}

func validEnforcedBy(value any) bool {
	switch enforced := value.(type) {
	case string:
		return strings.TrimSpace(enforced) != ""
	case []any:
		if len(enforced) == 0 {
			return false
		}
		for _, item := range enforced {
			text, ok := item.(string)
			if !ok || strings.TrimSpace(text) == "" {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Validator) checkOptionalFields(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	raw, ok := parsed["applies_to"]
	if !ok {
		return
	}
	line := fieldLine(lineMap, "applies_to", 0)

	items, ok := raw.([]any)
	if !ok {
		collector.AddError(doc.Path, line, "applies_to", findings.TypeInvalidOptionalFieldFormat,
			"applies_to must be a list of slugs", "applies_to:\n  - go")
		return
	}
	for _, item := range items {
		text, ok := item.(string)
		if !ok || !slugPattern.MatchString(text) {
			collector.AddError(doc.Path, line, "applies_to", findings.TypeInvalidOptionalFieldFormat,
				fmt.Sprintf("applies_to entry %s is not a slug", describeValue(item)), "")
			return
		}
	}
}

func (v *Validator) checkUnknownFields(doc Document, kind DocKind, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector) {
	known := knownFields(kind)
	var unknown []string
	for key := range parsed {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)

	line := 0
	for _, key := range unknown {
		if keyLine, ok := lineMap[key]; ok && (line == 0 || keyLine < line) {
			line = keyLine
		}
	}

	collector.AddWarning(doc.Path, line, "", findings.TypeUnknownFields,
		fmt.Sprintf("unknown fields for a %s: %s", kind, strings.Join(unknown, ", ")),
		"remove the unrecognized fields or rename them to known ones")
}

func slugify(raw string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(raw), "-")
	return strings.Trim(slug, "-")
}
