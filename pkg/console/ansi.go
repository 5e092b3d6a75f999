package console

import "strings"

// StripANSI removes all ANSI escape sequences from a string.
// It handles CSI sequences (\x1b[...), OSC sequences (\x1b]...\x07 or
// \x1b]...\x1b\\), and simple two-character escapes.
func StripANSI(s string) string {
	if s == "" {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if s[i] != '\x1b' {
			result.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			// ESC at end of string, skip it
			i++
			continue
		}
		switch s[i+1] {
		case '[':
			// CSI sequence: parameters 0x20-0x3F, final character 0x40-0x7E
			i += 2
			for i < len(s) {
				if isFinalCSIChar(s[i]) {
					i++
					break
				} else if isCSIParameterChar(s[i]) {
					i++
				} else {
					break
				}
			}
		case ']':
			// OSC sequence, terminated by BEL or ESC-backslash
			i += 2
			for i < len(s) {
				if s[i] == '\x07' {
					i++
					break
				} else if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
					i += 2
					break
				}
				i++
			}
		default:
			// Two-character escapes like \x1b7, \x1b8, \x1bD
			if s[i+1] >= '0' && s[i+1] <= '~' {
				i += 2
			} else {
				i++
			}
		}
	}

	return result.String()
}

// isFinalCSIChar checks if a character is a valid CSI final character
func isFinalCSIChar(b byte) bool {
	return b >= 0x40 && b <= 0x7E
}

// isCSIParameterChar checks if a character is a valid CSI parameter or intermediate character
func isCSIParameterChar(b byte) bool {
	return (b >= 0x20 && b <= 0x2F) || (b >= 0x30 && b <= 0x3F)
}
