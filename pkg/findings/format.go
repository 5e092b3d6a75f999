package findings

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fmlint/fmlint/pkg/console"
	"github.com/fmlint/fmlint/pkg/constants"
	"github.com/fmlint/fmlint/pkg/sanitizer"
)

// Formatter renders findings into one deterministic report string: findings
// grouped by file in lexicographic path order, insertion order within a
// file, context snippets from optionally supplied file contents, secret
// redaction before colorization, and a color decision made once per
// formatter instance.
type Formatter struct {
	colors       console.Colorizer
	redactor     *sanitizer.Redactor
	contextLines int
}

// NewFormatter creates a Formatter for the given destination. Color is
// decided here, once: the destination must be a terminal and NO_COLOR must
// not be set to a non-empty value.
func NewFormatter(out *os.File) *Formatter {
	return NewFormatterWithColor(console.ColorEnabled(out))
}

// NewFormatterWithColor creates a Formatter with an explicit color decision,
// bypassing terminal detection.
func NewFormatterWithColor(colorEnabled bool) *Formatter {
	return &Formatter{
		colors:       console.NewColorizer(colorEnabled),
		redactor:     sanitizer.NewRedactor(),
		contextLines: constants.DefaultContextLines,
	}
}

// Redactor exposes the formatter's value registry so validators can flag
// secret values as they find them.
func (f *Formatter) Redactor() *sanitizer.Redactor {
	return f.redactor
}

// SetContextLines overrides the number of source lines shown on each side of
// an erroring line. Negative values are ignored.
func (f *Formatter) SetContextLines(n int) {
	if n >= 0 {
		f.contextLines = n
	}
}

// Render produces the report for the given findings. fileContents maps file
// paths to raw text and is used only for context snippets; it may be nil.
// An empty finding set renders as the empty string with no header.
func (f *Formatter) Render(all []Finding, fileContents map[string]string) string {
	if len(all) == 0 {
		return ""
	}

	f.registerSecretValues(all, fileContents)

	groups := make(map[string][]Finding)
	var files []string
	for _, fd := range all {
		if _, ok := groups[fd.File]; !ok {
			files = append(files, fd.File)
		}
		groups[fd.File] = append(groups[fd.File], fd)
	}
	sort.Strings(files)

	var out strings.Builder
	out.WriteString(f.colors.Header(f.headerLine(all)))
	out.WriteString("\n")

	for _, file := range files {
		out.WriteString("\n")
		if file != "" {
			out.WriteString(console.ToRelativePath(file))
			out.WriteString(":\n")
		}

		var fileLines []string
		if content, ok := fileContents[file]; ok {
			fileLines = strings.Split(content, "\n")
		}

		for _, fd := range groups[file] {
			f.renderFinding(&out, fd, fileLines)
		}
	}

	return out.String()
}

// headerLine builds the count header. Error counts dominate: with any error
// present the header is the exact "n error(s) in m file(s)" form, extended
// with a warning clause when warnings coexist. A warnings-only set gets the
// warning form instead.
func (f *Formatter) headerLine(all []Finding) string {
	errs, warns := 0, 0
	errFiles := make(map[string]struct{})
	warnFiles := make(map[string]struct{})
	for _, fd := range all {
		if fd.Severity == SeverityError {
			errs++
			errFiles[fd.File] = struct{}{}
		} else {
			warns++
			warnFiles[fd.File] = struct{}{}
		}
	}

	if errs > 0 {
		header := fmt.Sprintf("%s in %s", pluralize(errs, "error"), pluralize(len(errFiles), "file"))
		if warns > 0 {
			header += ", " + pluralize(warns, "warning")
		}
		return header
	}
	return fmt.Sprintf("%s in %s", pluralize(warns, "warning"), pluralize(len(warnFiles), "file"))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (f *Formatter) renderFinding(out *strings.Builder, fd Finding, fileLines []string) {
	glyph := f.colors.Error("✗")
	if fd.Severity == SeverityWarning {
		glyph = f.colors.Warning("⚠")
	}

	var location []string
	if fd.Line > 0 {
		location = append(location, fmt.Sprintf("line %d", fd.Line))
	}
	if fd.Field != "" {
		location = append(location, fmt.Sprintf("field '%s'", fd.Field))
	}

	out.WriteString("  ")
	out.WriteString(glyph)
	out.WriteString(" ")
	if len(location) > 0 {
		out.WriteString(strings.Join(location, ", "))
		out.WriteString(": ")
	}
	out.WriteString(f.redactor.Redact(fd.Message))
	out.WriteString("\n")

	f.renderContext(out, fd, fileLines)
	f.renderSuggestion(out, fd)
}

// renderContext emits the numbered source window around the erroring line.
// Missing content, a document-level finding or an out-of-range line all
// suppress the section silently.
func (f *Formatter) renderContext(out *strings.Builder, fd Finding, fileLines []string) {
	if len(fileLines) == 0 || fd.Line < 1 || fd.Line > len(fileLines) {
		return
	}

	startLine := max(1, fd.Line-f.contextLines)
	endLine := min(len(fileLines), fd.Line+f.contextLines)
	gutterWidth := len(fmt.Sprintf("%d", endLine))

	out.WriteString("    context:\n")
	for i := startLine; i <= endLine; i++ {
		// Redact before truncation so a cut can only shorten the marker,
		// never re-expose value text.
		text := f.redactor.Redact(fileLines[i-1])
		text = console.Truncate(text, constants.MaxContextLineWidth)

		marker := "  "
		if i == fd.Line {
			marker = f.colors.Highlight("> ")
		}

		out.WriteString("    ")
		out.WriteString(marker)
		out.WriteString(fmt.Sprintf("%*d | ", gutterWidth, i))
		out.WriteString(text)
		out.WriteString("\n")
	}
}

func (f *Formatter) renderSuggestion(out *strings.Builder, fd Finding) {
	suggestion := f.redactor.Redact(fd.Suggestion)
	if strings.TrimSpace(suggestion) == "" {
		return
	}

	const label = "    suggestion: "
	lines := strings.Split(suggestion, "\n")
	out.WriteString(label)
	out.WriteString(lines[0])
	out.WriteString("\n")

	indent := strings.Repeat(" ", len(label))
	for _, line := range lines[1:] {
		out.WriteString(indent)
		out.WriteString(line)
		out.WriteString("\n")
	}
}

// registerSecretValues derives the values of secret-named fields from their
// source lines so rendering cannot leak a value no validator registered.
func (f *Formatter) registerSecretValues(all []Finding, fileContents map[string]string) {
	for _, fd := range all {
		if fd.Field == "" || !sanitizer.IsSecretFieldName(fd.Field) {
			continue
		}
		content, ok := fileContents[fd.File]
		if !ok || fd.Line < 1 {
			continue
		}
		lines := strings.Split(content, "\n")
		if fd.Line > len(lines) {
			continue
		}
		value := scalarValue(lines[fd.Line-1])
		// Very short derived values would redact unrelated text all over
		// the report.
		if len(value) >= 4 {
			f.redactor.AddValue(value)
		}
	}
}

// scalarValue extracts the value part of a "key: value" source line,
// dropping surrounding quotes.
func scalarValue(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	return strings.TrimSpace(value)
}
