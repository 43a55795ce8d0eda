package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeText strips characters the persistence layer rejects: null bytes,
// C0/C1 controls other than newline, tab, and carriage return, the Unicode
// replacement character, and private-use-area characters. The remainder is
// NFC-normalized, space/tab runs collapse to one space, and the result is
// trimmed. Idempotent.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if shouldStrip(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := norm.NFC.String(b.String())
	out = spaceTabRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

var spaceTabRun = regexp.MustCompile(`[ \t]+`)

func shouldStrip(r rune) bool {
	switch {
	case r == '\n' || r == '\t' || r == '\r':
		return false
	case r < 0x20: // C0 controls and NUL
		return true
	case r == 0x7F: // DEL
		return true
	case r >= 0x80 && r <= 0x9F: // C1 controls
		return true
	case r == '�':
		return true
	case r >= 0xE000 && r <= 0xF8FF: // BMP private use area
		return true
	case r >= 0xF0000 && r <= 0xFFFFD: // plane 15 private use
		return true
	case r >= 0x100000 && r <= 0x10FFFD: // plane 16 private use
		return true
	}
	return false
}

// SanitizeJSON sanitizes every string in a decoded JSON value, recursing
// through objects and arrays. Non-string leaves pass through untouched.
func SanitizeJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return SanitizeText(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[SanitizeText(k)] = SanitizeJSON(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = SanitizeJSON(item)
		}
		return out
	default:
		return v
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename replaces every character outside [a-zA-Z0-9._-] with an
// underscore. Lossy for non-ASCII names on purpose; the original filename
// survives in object metadata.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}
