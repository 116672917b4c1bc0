package goldmark

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips ANSI escape sequences and control characters from text
// received from the server so it cannot drive the terminal. Tabs and
// newlines are kept and CRLF becomes LF; other bytes <= 0x1F are dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return r <= 0x1F && r != '\t' && r != '\n' || r == 0x7F
}

// maxPendingEscape bounds how much text CutPartialEscape holds back for an
// unterminated string sequence.
const maxPendingEscape = 4096

// CutPartialEscape splits s before a trailing escape sequence that is not
// yet complete, so streamed text can be sanitized chunk by chunk. tail is
// empty when s ends outside an escape sequence.
func CutPartialEscape(s string) (head, tail string) {
	i := strings.LastIndexByte(s, '\x1b')
	if i < 0 || len(s)-i > maxPendingEscape || escapeComplete(s[i:]) {
		return s, ""
	}
	return s[:i], s[i:]
}

// escapeComplete reports whether seq, which starts with ESC and holds no
// other ESC, is a finished sequence.
func escapeComplete(seq string) bool {
	if len(seq) < 2 {
		return false
	}
	switch seq[1] {
	case '[':
		// Parameter and intermediate bytes run until the final byte.
		for _, c := range []byte(seq[2:]) {
			if c < 0x20 || c > 0x3F {
				return true
			}
		}
		return false
	case ']', 'P', '_', '^', 'X':
		// String sequences end with BEL or ESC \, whose ESC would be the
		// last one in s.
		return strings.IndexByte(seq[2:], '\a') >= 0
	default:
		return true
	}
}
