// Package parser isolates and parses front-matter blocks from rule
// documents. Extraction never fails; parse problems come back as findings
// with best-effort line positions rather than errors.
package parser

import (
	"regexp"
	"strings"

	yaml "github.com/goccy/go-yaml"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/fmlint/fmlint/pkg/constants"
	"github.com/fmlint/fmlint/pkg/findings"
)

// FrontmatterForm identifies which front-matter convention a document uses.
type FrontmatterForm int

const (
	// FormNone means the document carries no front matter at all.
	FormNone FrontmatterForm = iota
	// FormLegacy is the historical bold-label header ("**Key**: value" lines).
	FormLegacy
	// FormYAML is a block delimited by "---" lines at the top of the document.
	FormYAML
)

// String returns the form name used in messages and logs.
func (f FrontmatterForm) String() string {
	switch f {
	case FormLegacy:
		return "legacy"
	case FormYAML:
		return "yaml"
	default:
		return "none"
	}
}

// Frontmatter holds the block isolated from a document by Extract.
type Frontmatter struct {
	Form     FrontmatterForm
	Raw      string   // block text between the delimiters, without the delimiters
	Lines    []string // Raw split into lines
	Offset   int      // 1-based document line of the first block line
	Body     string   // document content after the block
	Unclosed bool     // opening delimiter present but closing delimiter missing
}

// legacyLabelPattern matches one bold-label header line of the historical
// front-matter form, e.g. "**Derived From**: simplicity".
var legacyLabelPattern = regexp.MustCompile(`^\*\*[A-Za-z][A-Za-z0-9 _-]*\*\*:`)

// Extract isolates the front-matter block from a full document and detects
// its form. It never fails: a document without front matter comes back as
// FormNone with the entire content in Body, and an unclosed YAML block is
// flagged via Unclosed so the caller can report it.
func Extract(content string) Frontmatter {
	content = strings.TrimPrefix(content, "\uFEFF")
	lines := strings.Split(content, "\n")

	// Standard form: an opening "---" on the very first line.
	if strings.TrimSpace(lines[0]) == constants.FrontmatterDelimiter {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == constants.FrontmatterDelimiter {
				end = i
				break
			}
		}

		if end == -1 {
			return Frontmatter{
				Form:     FormYAML,
				Raw:      strings.Join(lines[1:], "\n"),
				Lines:    lines[1:],
				Offset:   2,
				Unclosed: true,
			}
		}

		blockLines := lines[1:end]
		return Frontmatter{
			Form:   FormYAML,
			Raw:    strings.Join(blockLines, "\n"),
			Lines:  blockLines,
			Offset: 2,
			Body:   strings.Join(lines[end+1:], "\n"),
		}
	}

	// Legacy form: consecutive bold-label lines at the top of the document.
	if legacyLabelPattern.MatchString(lines[0]) {
		end := 0
		for end < len(lines) && legacyLabelPattern.MatchString(lines[end]) {
			end++
		}

		headerLines := lines[:end]
		return Frontmatter{
			Form:   FormLegacy,
			Raw:    strings.Join(headerLines, "\n"),
			Lines:  headerLines,
			Offset: 1,
			Body:   strings.Join(lines[end:], "\n"),
		}
	}

	return Frontmatter{Form: FormNone, Body: content}
}

// LineMap records the 1-based document line where each top-level key's
// declaration begins. When a key appears more than once the map holds the
// last occurrence.
type LineMap map[string]int

// topLevelKeyPattern matches a top-level "key:" declaration at column zero.
// Indented keys belong to nested values and are not tracked.
var topLevelKeyPattern = regexp.MustCompile(`^("[^"]+"|'[^']+'|[A-Za-z0-9_.-]+):(?:\s|$)`)

// ParseWithLineMap parses an isolated front-matter block while recording the
// source line of every top-level key. startLine is the 1-based document line
// of the block's first line (Frontmatter.Offset). Parse failures never
// propagate as errors: the parsed structure is nil and the problem is
// described by the returned findings. The line map is built by scanning the
// raw text, so it is available even when parsing fails.
func ParseWithLineMap(block string, startLine int) (map[string]any, LineMap, []findings.Finding) {
	if startLine < 1 {
		startLine = 1
	}
	lineMap := buildLineMap(block, startLine)

	if strings.TrimSpace(block) == "" {
		return nil, lineMap, []findings.Finding{emptyBlockFinding()}
	}

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(block), &parsed); err != nil {
		line, _, message := ExtractYAMLError(err, startLine)
		if line == 0 {
			// The primary parser gave no position. Re-parse with the
			// fallback library, whose errors carry "yaml: line N" text.
			// When neither library locates the problem the finding stays
			// document-level.
			var alt map[string]any
			if v3err := yamlv3.Unmarshal([]byte(block), &alt); v3err != nil {
				if v3line, _, _ := ExtractYAMLError(v3err, startLine); v3line != 0 {
					line = v3line
				}
			}
		}
		return nil, lineMap, []findings.Finding{{
			Line:     line,
			Type:     findings.TypeYAMLSyntax,
			Message:  message,
			Severity: findings.SeverityError,
		}}
	}

	// A block of nothing but comments parses to nil without an error.
	if parsed == nil {
		return nil, lineMap, []findings.Finding{emptyBlockFinding()}
	}

	return parsed, lineMap, nil
}

func emptyBlockFinding() findings.Finding {
	return findings.Finding{
		Type:     findings.TypeEmptyFrontmatter,
		Message:  "front matter block is empty",
		Severity: findings.SeverityError,
	}
}

func buildLineMap(block string, startLine int) LineMap {
	lineMap := make(LineMap)
	for i, line := range strings.Split(block, "\n") {
		match := topLevelKeyPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key := strings.Trim(match[1], `"'`)
		lineMap[key] = startLine + i
	}
	return lineMap
}

// legacyLinePattern captures the label and value of one bold-label line.
var legacyLinePattern = regexp.MustCompile(`^\*\*([A-Za-z][A-Za-z0-9 _-]*)\*\*:\s*(.*)$`)

// LegacyFieldPairs parses the bold-label header lines of a FormLegacy block
// into ordered (field, value) pairs, normalizing labels to the snake_case
// names the YAML form uses ("Derived From" becomes "derived_from").
func LegacyFieldPairs(fm Frontmatter) [][2]string {
	var pairs [][2]string
	for _, line := range fm.Lines {
		match := legacyLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(match[1]))
		field = strings.ReplaceAll(field, " ", "_")
		pairs = append(pairs, [2]string{field, strings.TrimSpace(match[2])})
	}
	return pairs
}

// LegacyMigrationSuggestion renders the delimited YAML block a legacy
// header should be rewritten to, preserving the header's field order.
// Returns "" when the header carries no parseable fields.
func LegacyMigrationSuggestion(fm Frontmatter) string {
	pairs := LegacyFieldPairs(fm)
	if len(pairs) == 0 {
		return ""
	}

	node := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for _, pair := range pairs {
		var key, value yamlv3.Node
		key.SetString(pair[0])
		value.SetString(pair[1])
		node.Content = append(node.Content, &key, &value)
	}

	out, err := yamlv3.Marshal(node)
	if err != nil {
		return ""
	}
	return constants.FrontmatterDelimiter + "\n" + string(out) + constants.FrontmatterDelimiter
}
