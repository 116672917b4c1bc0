// Package goldmark renders transcript records to ANSI-styled terminal
// output using goldmark for parsing, lipgloss for styling and chroma for
// syntax highlighting of code blocks.
package goldmark

import (
	"strings"

	"github.com/fwojciec/drawgen"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Escape sequences and control characters in source are removed first.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow; fenced blocks with a language are
// syntax highlighted.
//
// Source that is a bare diagram document, i.e. starts with an XML tag and
// contains no code fence, is rendered as an XML code block.
func Render(source string, width int, theme drawgen.Theme) string {
	source = Sanitize(source)
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	if IsXML(source) {
		source = "```xml\n" + strings.TrimSpace(source) + "\n```"
	}
	return newRenderer(theme).render([]byte(source), width)
}

// IsXML reports whether s looks like a bare XML document rather than
// markdown prose.
func IsXML(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "<") && !strings.Contains(t, "```")
}
