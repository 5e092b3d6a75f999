package findings

import "github.com/fmlint/fmlint/pkg/constants"

// ExitCodeConvention selects how findings map to a process exit code.
type ExitCodeConvention int

const (
	// ConventionSimple returns 0 when no error-severity findings exist,
	// 1 otherwise.
	ConventionSimple ExitCodeConvention = iota

	// ConventionGranular distinguishes syntax-class failures (exit 2) from
	// field-class failures (exit 3). Syntax takes priority when both exist.
	ConventionGranular
)

// ExitCode maps findings to a process exit code under the given convention.
// Both conventions depend only on finding content, never on insertion order,
// and warnings never influence the result.
func ExitCode(convention ExitCodeConvention, all []Finding) int {
	if convention == ConventionGranular {
		return granularExitCode(all)
	}
	return simpleExitCode(all)
}

func simpleExitCode(all []Finding) int {
	for _, f := range all {
		if f.Severity == SeverityError {
			return constants.ExitFailure
		}
	}
	return constants.ExitOK
}

func granularExitCode(all []Finding) int {
	hasField := false
	for _, f := range all {
		if f.Severity != SeverityError {
			continue
		}
		if IsSyntaxClass(f.Type) {
			return constants.ExitSyntaxError
		}
		hasField = true
	}
	if hasField {
		return constants.ExitFieldError
	}
	return constants.ExitOK
}
