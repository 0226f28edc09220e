package schema

import (
	"strings"
	"time"
	"unicode"
)

// ShortSHALength is the length of abbreviated commit hashes.
const ShortSHALength = 7

// ShortSHA returns the abbreviated form of a commit hash.
func ShortSHA(sha string) string {
	if len(sha) <= ShortSHALength {
		return sha
	}
	return sha[:ShortSHALength]
}

// FirstLine returns the first line of a commit message truncated to limit runes.
func FirstLine(message string, limit int) string {
	line, _, _ := strings.Cut(message, "\n")
	line = strings.TrimRight(line, "\r")
	return TruncateRunes(line, limit)
}

// TruncateRunes cuts s to at most limit runes. A non-positive limit disables truncation.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	rr := []rune(s)
	if len(rr) <= limit {
		return s
	}
	return string(rr[:limit])
}

// FormatTimestamp renders t in the canonical UTC event format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// AbbreviateName formats "Samuel Huang" to "Samuel H" for narrow table columns.
// Single-word names and bot accounts are returned unchanged.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "[bot]") {
		return strings.Join(strings.Fields(trimmed), " ")
	}
	trimmed = strings.Trim(trimmed, "()\"'`")

	var parts []string
	for _, p := range strings.Fields(trimmed) {
		p = strings.TrimFunc(p, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\'' && r != '.'
		})
		p = strings.TrimSuffix(p, ".")
		if p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return trimmed
	case 1:
		return parts[0]
	default:
		last := []rune(parts[len(parts)-1])
		return parts[0] + " " + string(last[0])
	}
}
