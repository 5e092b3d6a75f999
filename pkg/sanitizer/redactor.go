package sanitizer

import (
	"sort"
	"strings"
	"sync"

	"github.com/fmlint/fmlint/pkg/constants"
)

// Redactor replaces registered secret values with a fixed marker in any text
// passed through it. Values are registered as validators flag them; the
// formatter runs every message, suggestion and snippet line through Redact
// before colorization. One Redactor may be shared by the parallel per-file
// validators, so the registry is locked.
type Redactor struct {
	mu     sync.Mutex
	values []string
	seen   map[string]struct{}
}

// NewRedactor creates an empty Redactor.
func NewRedactor() *Redactor {
	return &Redactor{
		seen: make(map[string]struct{}),
	}
}

// AddValue registers a secret value for redaction. Multi-line values are also
// registered line by line so a partial leak of a single line is still caught.
// Blank values are ignored.
func (r *Redactor) AddValue(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addOne(value)

	if strings.Contains(value, "\n") {
		for _, line := range strings.Split(value, "\n") {
			r.addOne(line)
		}
	}
}

func (r *Redactor) addOne(value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return
	}
	if _, ok := r.seen[trimmed]; ok {
		return
	}
	r.seen[trimmed] = struct{}{}
	r.values = append(r.values, trimmed)

	// Longest values replace first so a shorter registered value can never
	// split a longer one into an unredacted remainder.
	sort.SliceStable(r.values, func(i, j int) bool {
		return len(r.values[i]) > len(r.values[j])
	})
}

// HasValues reports whether anything has been registered.
func (r *Redactor) HasValues() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values) > 0
}

// Redact replaces every verbatim occurrence of each registered value in s
// with the redaction marker.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, value := range r.values {
		s = strings.ReplaceAll(s, value, constants.RedactionMarker)
	}
	return s
}
