package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters and caps the result at
// maxLen runes. Values end up in log lines and audit metadata, so a raw
// newline or escape sequence must never survive.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)

	if maxLen <= 0 {
		return cleaned
	}
	n := 0
	for i := range cleaned {
		if n == maxLen {
			return cleaned[:i]
		}
		n++
	}
	return cleaned
}

// SanitizeToken keeps only characters that are safe in correlation ids:
// ASCII letters, digits and "-_.:". Anything else yields "".
func SanitizeToken(input string, maxLen int) string {
	v := SanitizeString(input, maxLen)
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return ""
		}
	}
	return v
}
