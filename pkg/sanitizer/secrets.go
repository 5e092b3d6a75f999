package sanitizer

import (
	"regexp"
	"strings"
)

// secretNamePatterns are the case-insensitive substrings that mark a field
// name as secret-bearing. Matching is a pure function of the name; the
// field's value type never matters.
var secretNamePatterns = []string{
	"password",
	"token",
	"secret",
	"apikey",
	"api_key",
	"api key",
	"credential",
	"bearer",
	"oauth",
	"jwt",
}

// IsSecretFieldName reports whether a field name looks like it holds a
// credential. Separators are collapsed so "api-key", "api_key" and "apiKey"
// all match.
func IsSecretFieldName(name string) bool {
	lower := strings.ToLower(name)
	collapsed := strings.NewReplacer("-", "", "_", "", " ", "").Replace(lower)

	for _, pattern := range secretNamePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return strings.Contains(collapsed, "apikey")
}

// secretValuePatterns match well-known credential shapes inside field values.
var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),                      // Google API key
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                            // AWS access key id
	regexp.MustCompile(`xox[baprs]-[0-9A-Za-z\-]{10,}`),               // Slack token
	regexp.MustCompile(`gh[pousr]_[0-9A-Za-z]{36,}`),                  // GitHub token
	regexp.MustCompile(`eyJ[A-Za-z0-9_\-]{10,}\.[A-Za-z0-9_\-]{10,}`), // JWT
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),          // PEM private key
}

// LooksLikeSecretValue reports whether value contains a known credential shape.
func LooksLikeSecretValue(value string) bool {
	for _, pattern := range secretValuePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
