package rules

import (
	"fmt"
	"sort"

	"github.com/fmlint/fmlint/pkg/findings"
	"github.com/fmlint/fmlint/pkg/parser"
	"github.com/fmlint/fmlint/pkg/sanitizer"
)

// checkSecrets flags fields whose name or value looks like a credential.
// Every suspect value is registered on the redactor before the finding is
// recorded so later rendering never echoes it. The finding message names the
// field only; a value that cannot be registered (a non-string leaf) still
// produces the finding.
func (v *Validator) checkSecrets(doc Document, parsed map[string]any, lineMap parser.LineMap, collector *findings.Collector, redactor *sanitizer.Redactor) {
	if redactor == nil {
		redactor = sanitizer.NewRedactor()
	}
	for _, key := range sortedKeys(parsed) {
		line := fieldLine(lineMap, key, 0)
		leaves := stringLeaves(parsed[key])

		if sanitizer.IsSecretFieldName(key) {
			for _, leaf := range leaves {
				redactor.AddValue(leaf)
			}
			collector.AddError(doc.Path, line, key, findings.TypePotentialSecret,
				fmt.Sprintf("field '%s' looks like a credential", key),
				"move secrets out of rule documents; reference them by name instead")
			continue
		}

		for _, leaf := range leaves {
			if sanitizer.LooksLikeSecretValue(leaf) {
				redactor.AddValue(leaf)
				collector.AddError(doc.Path, line, key, findings.TypePotentialSecret,
					fmt.Sprintf("value of field '%s' matches a credential pattern", key),
					"move secrets out of rule documents; reference them by name instead")
				break
			}
		}
	}
}

// stringLeaves collects every string reachable under a decoded YAML value.
func stringLeaves(value any) []string {
	switch leaf := value.(type) {
	case string:
		return []string{leaf}
	case []any:
		var out []string
		for _, item := range leaf {
			out = append(out, stringLeaves(item)...)
		}
		return out
	case map[string]any:
		var out []string
		for _, key := range sortedKeys(leaf) {
			out = append(out, stringLeaves(leaf[key])...)
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
