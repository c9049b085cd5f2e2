package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxPathLength caps URL paths in logs
const MaxPathLength = 500

// SanitizePath makes a request path safe to log. Paths are caller-controlled
// so control characters are stripped, invalid UTF-8 is dropped and overlong
// paths are truncated.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}

	if !utf8.ValidString(path) {
		path = strings.ToValidUTF8(path, "")
	}

	var builder strings.Builder
	builder.Grow(len(path))
	for _, r := range path {
		if unicode.IsPrint(r) || r == ' ' {
			builder.WriteRune(r)
		}
	}
	path = builder.String()

	if len(path) > MaxPathLength {
		path = path[:MaxPathLength] + "..."
	}

	return path
}
