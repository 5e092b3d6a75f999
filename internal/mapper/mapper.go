package mapper

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/fmlint/fmlint/pkg/findings"
)

// causePattern matches one rendered cause line of a schema validation
// error, e.g. "- at '/derived_from': does not match pattern ...". Nested
// causes are indented but share the shape.
var causePattern = regexp.MustCompile(`^- at '([^']*)':\s*(.*)$`)

// quotedNamePattern pulls single-quoted names out of cause messages such as
// "additional properties 'foo', 'bar' not allowed".
var quotedNamePattern = regexp.MustCompile(`'([^']+)'`)

// ParseViolations extracts the per-location causes from a schema validation
// error's rendered text. Returns nil when the error carries no recognizable
// cause lines.
func ParseViolations(err error) []Violation {
	if err == nil {
		return nil
	}

	var out []Violation
	for _, line := range strings.Split(err.Error(), "\n") {
		match := causePattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		message := strings.TrimSpace(match[2])
		if message == "" {
			continue
		}
		segments, perr := parsePointer(match[1])
		if perr != nil {
			segments = nil
		}
		out = append(out, Violation{Location: segments, Message: message})
	}
	return out
}

// ResolveFieldErrors maps every cause in a schema validation error onto a
// top-level field, a taxonomy tag, and a document line. block is the raw
// front-matter text the schema checked; startLine is the 1-based document
// line of the block's first line. Causes resolving to the same (field, tag)
// pair are collapsed to the first occurrence.
func ResolveFieldErrors(err error, block string, startLine int) []FieldError {
	violations := ParseViolations(err)
	if len(violations) == 0 {
		return nil
	}
	if startLine < 1 {
		startLine = 1
	}

	// Parse the block once for positions. On parse failure every resolved
	// error simply has no line.
	var root ast.Node
	if file, parseErr := parser.ParseBytes([]byte(block), parser.ParseComments); parseErr == nil && len(file.Docs) > 0 {
		root = file.Docs[0].Body
	}

	var out []FieldError
	seen := make(map[string]bool)
	for _, violation := range violations {
		fieldErr := resolveViolation(violation, root)
		if fieldErr.Line > 0 {
			fieldErr.Line += startLine - 1
		}
		key := fieldErr.Field + "\x00" + fieldErr.Tag
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fieldErr)
	}
	return out
}

// CleanMessage strips the "jsonschema validation failed" header and bare
// location prefixes from a schema error, leaving only the descriptions.
func CleanMessage(err error) string {
	var cleaned []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		line = strings.TrimPrefix(line, "- at '': ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	result := strings.Join(cleaned, "\n")
	if strings.TrimSpace(result) == "" {
		return "schema validation failed"
	}
	return result
}

func resolveViolation(violation Violation, root ast.Node) FieldError {
	lower := strings.ToLower(violation.Message)

	// Required-property causes attach to the parent object, so the field
	// names live in the message, not the location.
	if strings.Contains(lower, "missing propert") {
		fieldErr := FieldError{
			Tag:     findings.TypeMissingRequiredFields,
			Message: violation.Message,
		}
		if span, ok := insertionAnchor(root); ok {
			fieldErr.Line = span.Line
		}
		return fieldErr
	}

	if strings.Contains(lower, "additional propert") {
		fieldErr := FieldError{
			Tag:     findings.TypeUnknownFields,
			Message: violation.Message,
		}
		if names := quotedNames(violation.Message); len(names) > 0 {
			fieldErr.Field = names[0]
			if keyNode := findKeyInMapping(root, names[0]); keyNode != nil {
				if span, ok := nodePosition(keyNode); ok {
					fieldErr.Line = span.Line
				}
			}
		}
		return fieldErr
	}

	field := ""
	if len(violation.Location) > 0 {
		field = violation.Location[0]
	}
	fieldErr := FieldError{
		Field:   field,
		Tag:     tagForField(field),
		Message: violation.Message,
	}
	if node := traverseBySegments(root, violation.Location); node != nil {
		if span, ok := nodePosition(node); ok {
			fieldErr.Line = span.Line
		}
	}
	return fieldErr
}

// fieldTags maps a schema violation on a known field to the taxonomy tag the
// equivalent hand-written rule uses, so the two deduplicate.
var fieldTags = map[string]string{
	"id":            findings.TypeInvalidIDFormat,
	"last_modified": findings.TypeInvalidDateFormat,
	"version":       findings.TypeInvalidVersionFormat,
	"derived_from":  findings.TypeInvalidDerivedFromFormat,
	"enforced_by":   findings.TypeInvalidEnforcedByFormat,
}

func tagForField(field string) string {
	if tag, ok := fieldTags[field]; ok {
		return tag
	}
	return findings.TypeInvalidOptionalFieldFormat
}

func quotedNames(message string) []string {
	var names []string
	for _, match := range quotedNamePattern.FindAllStringSubmatch(message, -1) {
		names = append(names, match[1])
	}
	return names
}

// traverseBySegments walks the AST along instance-location segments and
// returns the node for the final segment, or nil when the path does not
// exist in the document.
func traverseBySegments(root ast.Node, segments []string) ast.Node {
	current := root
	for _, segment := range segments {
		if current == nil {
			return nil
		}

		if pairs := mappingPairs(current); pairs != nil {
			current = valueForKey(pairs, segment)
			continue
		}

		seq, ok := current.(*ast.SequenceNode)
		if !ok {
			return nil
		}
		idx, ok := parseIndex(segment)
		if !ok || idx >= len(seq.Values) {
			return nil
		}
		current = seq.Values[idx]
	}
	return current
}

// mappingPairs normalizes the two shapes goccy uses for mappings: a
// MappingNode for multi-pair maps and a bare MappingValueNode when the map
// holds a single pair.
func mappingPairs(node ast.Node) []*ast.MappingValueNode {
	switch n := node.(type) {
	case *ast.MappingNode:
		return n.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}
	default:
		return nil
	}
}

func valueForKey(pairs []*ast.MappingValueNode, key string) ast.Node {
	for _, pair := range pairs {
		if keyMatches(pair.Key, key) {
			return pair.Value
		}
	}
	return nil
}

// findKeyInMapping returns the key node for the named top-level key.
func findKeyInMapping(node ast.Node, key string) ast.Node {
	for _, pair := range mappingPairs(node) {
		if keyMatches(pair.Key, key) {
			return pair.Key
		}
	}
	return nil
}

func keyMatches(keyNode ast.MapKeyNode, segment string) bool {
	if key, ok := keyNode.(*ast.StringNode); ok {
		return key.Value == segment
	}
	if tok := keyNode.GetToken(); tok != nil {
		return tok.Value == segment
	}
	return false
}

// insertionAnchor points one line past the mapping's last pair, where a
// missing key would be inserted.
func insertionAnchor(root ast.Node) (Span, bool) {
	pairs := mappingPairs(root)
	if len(pairs) == 0 {
		return Span{}, false
	}
	last := pairs[len(pairs)-1]
	span, ok := nodePosition(last.Value)
	if !ok {
		return Span{}, false
	}
	return Span{Line: span.Line + 1, Column: span.Column}, true
}

func nodePosition(node ast.Node) (Span, bool) {
	if node == nil {
		return Span{}, false
	}
	tok := node.GetToken()
	if tok == nil || tok.Position == nil {
		return Span{}, false
	}
	return Span{Line: tok.Position.Line, Column: tok.Position.Column}, true
}

// parsePointer decodes an RFC 6901 pointer ("/applies_to/0") into segments,
// unescaping ~1 and ~0. "" and "/" decode to no segments.
func parsePointer(ptr string) ([]string, error) {
	if ptr == "" || ptr == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, errors.New("invalid json pointer: must start with '/'")
	}
	parts := strings.Split(ptr[1:], "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		parts[i] = part
	}
	return parts, nil
}

func parseIndex(segment string) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
