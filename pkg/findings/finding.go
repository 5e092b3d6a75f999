// Package findings holds the validation finding data model: the Finding
// record, the ordered Collector, the report Formatter and the exit-code
// policies built on top of them.
package findings

// Severity distinguishes error findings from warning findings.
type Severity int

const (
	// SeverityError findings fail validation and drive exit codes.
	SeverityError Severity = iota
	// SeverityWarning findings render in reports but never affect the
	// simple-convention exit code.
	SeverityWarning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Finding is one structured validation outcome attributed to a document.
// Line 0 means document-level (no specific line). Field is empty when the
// finding is not tied to a single front matter key. Type is an extensible
// taxonomy tag; validators may introduce tags beyond the constants below.
type Finding struct {
	File       string
	Line       int
	Field      string
	Type       string
	Message    string
	Suggestion string
	Severity   Severity
}

// Taxonomy tags for the syntax class: the front matter could not be parsed
// into fields at all.
const (
	TypeYAMLSyntax       = "yaml_syntax"
	TypeEmptyFrontmatter = "empty_frontmatter"
	TypeNoFrontmatter    = "no_frontmatter"
)

// Taxonomy tags for the field class: the front matter parsed but a field is
// missing or malformed.
const (
	TypeMissingRequiredFields      = "missing_required_fields"
	TypeInvalidIDFormat            = "invalid_id_format"
	TypeInvalidDateFormat          = "invalid_date_format"
	TypeDuplicateID                = "duplicate_id"
	TypeInvalidDerivedFromFormat   = "invalid_derived_from_format"
	TypeNonexistentTenetReference  = "nonexistent_tenet_reference"
	TypeInvalidEnforcedByFormat    = "invalid_enforced_by_format"
	TypeMissingVersion             = "missing_version"
	TypeVersionMismatch            = "version_mismatch"
	TypeInvalidVersionFormat       = "invalid_version_format"
	TypeUnknownFields              = "unknown_fields"
	TypePotentialSecret            = "potential_secret"
	TypeInvalidOptionalFieldFormat = "invalid_optional_field_format"
)

// Taxonomy tags for the environment class: the document could not be reached.
const (
	TypeInvalidFilePath = "invalid_file_path"
)

// IsSyntaxClass reports whether tag marks front matter that never parsed.
// Unknown tags belong to the field class.
func IsSyntaxClass(tag string) bool {
	switch tag {
	case TypeYAMLSyntax, TypeEmptyFrontmatter, TypeNoFrontmatter:
		return true
	}
	return false
}
