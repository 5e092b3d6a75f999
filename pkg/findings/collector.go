package findings

// Collector is an ordered, append-only store of findings. It is mutated by
// the single logical thread driving a file's validators; independent
// collectors for independent files may run on separate goroutines and be
// merged afterwards.
type Collector struct {
	findings []Finding
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// AddError appends an error-severity finding. Line 0 means document-level;
// field and suggestion may be empty.
func (c *Collector) AddError(file string, line int, field, typ, message, suggestion string) {
	c.findings = append(c.findings, Finding{
		File:       file,
		Line:       line,
		Field:      field,
		Type:       typ,
		Message:    message,
		Suggestion: suggestion,
		Severity:   SeverityError,
	})
}

// AddWarning appends a warning-severity finding with the same shape.
func (c *Collector) AddWarning(file string, line int, field, typ, message, suggestion string) {
	c.findings = append(c.findings, Finding{
		File:       file,
		Line:       line,
		Field:      field,
		Type:       typ,
		Message:    message,
		Suggestion: suggestion,
		Severity:   SeverityWarning,
	})
}

// Add appends a prebuilt finding, preserving its severity.
func (c *Collector) Add(f Finding) {
	c.findings = append(c.findings, f)
}

// HasErrors reports whether at least one error-severity finding exists.
// Warnings never count.
func (c *Collector) HasErrors() bool {
	for _, f := range c.findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-severity findings.
func (c *Collector) ErrorCount() int {
	n := 0
	for _, f := range c.findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity findings.
func (c *Collector) WarningCount() int {
	n := 0
	for _, f := range c.findings {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Errors returns the error-severity findings in insertion order. The slice
// is a copy; the collector's own sequence is never reordered or deduplicated.
func (c *Collector) Errors() []Finding {
	return c.filter(SeverityError)
}

// Warnings returns the warning-severity findings in insertion order.
func (c *Collector) Warnings() []Finding {
	return c.filter(SeverityWarning)
}

func (c *Collector) filter(severity Severity) []Finding {
	out := make([]Finding, 0, len(c.findings))
	for _, f := range c.findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// All returns every finding in insertion order, errors and warnings
// interleaved exactly as they were added.
func (c *Collector) All() []Finding {
	out := make([]Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Merge appends every finding of other, preserving its insertion order.
// Batch validation joins per-file collectors this way.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.findings = append(c.findings, other.findings...)
}
