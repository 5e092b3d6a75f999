package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// positionPrefixPattern matches the "[line:column] message" prefix that
// position-aware YAML errors start with. Only the first line of the error
// is consulted; the source excerpt that follows is dropped.
var positionPrefixPattern = regexp.MustCompile(`^\[(\d+):(\d+)\] ?(.*)`)

// ExtractYAMLError extracts line and column information from a YAML parse
// error and translates the block-relative line to a document line.
// frontmatterStartLine is the 1-based document line of the block's first
// line. Returns line 0 when the error carries no position; the message is
// the original error text in that case.
func ExtractYAMLError(err error, frontmatterStartLine int) (line int, column int, message string) {
	errStr := err.Error()
	if frontmatterStartLine < 1 {
		frontmatterStartLine = 1
	}

	// "[X:Y] message" format (position-annotated parsers).
	if match := positionPrefixPattern.FindStringSubmatch(errStr); match != nil {
		fmt.Sscanf(match[1], "%d", &line)
		fmt.Sscanf(match[2], "%d", &column)
		message = strings.TrimSpace(match[3])
		if message == "" {
			message = "invalid YAML syntax"
		}
		line = frontmatterStartLine + line - 1
		return
	}

	// "yaml: line X: message" format (standard textual format).
	if strings.Contains(errStr, "yaml: line ") {
		parts := strings.SplitN(errStr, "yaml: line ", 2)
		lineInfo := parts[1]
		colonIndex := strings.Index(lineInfo, ":")
		if colonIndex > 0 {
			lineStr := lineInfo[:colonIndex]
			if _, parseErr := fmt.Sscanf(lineStr, "%d", &line); parseErr == nil {
				message = strings.TrimSpace(lineInfo[colonIndex+1:])
				line = frontmatterStartLine + line - 1
				column = 1
				return
			}
			line = 0
		}
	}

	// "yaml: unmarshal errors:" multi-line format; take the first line
	// number mentioned.
	if strings.Contains(errStr, "yaml: unmarshal errors:") && strings.Contains(errStr, "line ") {
		for _, errorLine := range strings.Split(errStr, "\n") {
			errorLine = strings.TrimSpace(errorLine)
			if !strings.HasPrefix(errorLine, "line ") {
				continue
			}
			rest := strings.TrimPrefix(errorLine, "line ")
			colonIndex := strings.Index(rest, ":")
			if colonIndex <= 0 {
				continue
			}
			if _, parseErr := fmt.Sscanf(rest[:colonIndex], "%d", &line); parseErr == nil {
				message = strings.TrimSpace(rest[colonIndex+1:])
				line = frontmatterStartLine + line - 1
				column = 1
				return
			}
			line = 0
		}
	}

	return 0, 0, errStr
}
