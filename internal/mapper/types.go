// Package mapper resolves JSON-Schema validation failures to positions in
// the YAML front matter they were checked against, so schema findings carry
// the same field and line precision as hand-written rules.
package mapper

// Span describes a location in the source YAML block.
type Span struct {
	Line   int // 1-based, relative to the block's first line
	Column int // 1-based
}

// Violation is one cause extracted from a schema validation error.
type Violation struct {
	Location []string // decoded instance location segments, empty for root
	Message  string
}

// FieldError is one schema violation resolved to a top-level front-matter
// field, a taxonomy tag, and a document line.
type FieldError struct {
	Field   string
	Line    int // 1-based document line; 0 when no position could be resolved
	Tag     string
	Message string
}
