package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/drawgen"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Chroma formatter and style for code blocks. terminal16 keeps the output
// inside the terminal's own palette like the rest of the theme.
const (
	highlightFormatter = "terminal16"
	highlightStyle     = "monokai"
	resetSGR           = "\x1b[0m"
)

var parser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough)).Parser()

type termRenderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	accent    lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme drawgen.Theme) *termRenderer {
	return &termRenderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		accent:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *termRenderer) render(source []byte, width int) string {
	doc := parser.Parse(text.NewReader(source))
	var buf bytes.Buffer
	r.blocks(doc, source, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *termRenderer) blocks(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, source, width, buf)
		if c.NextSibling() != nil && c.Kind() != ast.KindHTMLBlock {
			buf.WriteString("\n")
		}
	}
}

func (r *termRenderer) block(node ast.Node, source []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrap(buf, r.inlines(n, source), width)

	case *ast.Heading:
		r.wrap(buf, r.accent.Render(r.inlines(n, source)), width)

	case *ast.FencedCodeBlock:
		lang := string(n.Language(source))
		if lang != "" {
			buf.WriteString(r.muted.Render(lang) + "\n")
		}
		r.code(buf, r.highlight(linesOf(n, source), lang))

	case *ast.CodeBlock:
		r.code(buf, splitLines(linesOf(n, source)))

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.blocks(n, source, width-2, &inner)
		bar := r.muted.Render("┃") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.List:
		r.list(n, source, width, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, 40))) + "\n")

	case *ast.HTMLBlock:
		buf.WriteString(linesOf(n, source))

	default:
		r.blocks(node, source, width, buf)
	}
}

// wrap writes s word-wrapped to width.
func (r *termRenderer) wrap(buf *bytes.Buffer, s string, width int) {
	buf.WriteString(trimLines(lipgloss.NewStyle().Width(width).Render(s)))
	buf.WriteString("\n")
}

// code writes a code block behind a gutter, one source line per output line.
func (r *termRenderer) code(buf *bytes.Buffer, lines []string) {
	gutter := r.muted.Render("│") + " "
	for _, line := range lines {
		buf.WriteString(gutter + line + "\n")
	}
}

// highlight colors code for lang and returns it split into lines. Without a
// language, or when highlighting fails, the lines come back unstyled.
func (r *termRenderer) highlight(code, lang string) []string {
	lines := splitLines(code)
	if lang == "" {
		return lines
	}
	var out strings.Builder
	if err := quick.Highlight(&out, code, lang, highlightFormatter, highlightStyle); err != nil {
		return lines
	}
	hl := strings.Split(out.String(), "\n")
	if len(hl) < len(lines) {
		return lines
	}
	// The formatter may leave escapes after the final newline.
	hl = hl[:len(lines)]
	hl[len(hl)-1] += resetSGR
	return hl
}

func splitLines(code string) []string {
	return strings.Split(strings.TrimRight(code, "\n"), "\n")
}

// trimLines drops the padding lipgloss adds to fill a line to its width.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

func linesOf(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

func (r *termRenderer) list(node *ast.List, source []byte, width int, buf *bytes.Buffer, depth int) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "• "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}

		var content bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content.WriteString(r.inlines(in, source))
			case *ast.List:
				if content.Len() > 0 {
					r.item(buf, indent, marker, content.String(), width)
					content.Reset()
				}
				r.list(in, source, width, buf, depth+1)
				marker = strings.Repeat(" ", lipgloss.Width(marker))
			default:
				r.block(ic, source, width, &content)
			}
		}
		if content.Len() > 0 {
			r.item(buf, indent, marker, content.String(), width)
		}
	}
}

// item writes one list item; continuation lines align with the text after
// the marker.
func (r *termRenderer) item(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	w := max(width-lipgloss.Width(prefix), 10)
	pad := strings.Repeat(" ", lipgloss.Width(prefix))
	for i, line := range strings.Split(trimLines(lipgloss.NewStyle().Width(w).Render(content)), "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(pad + line + "\n")
		}
	}
}

// inlines renders the styled inline children of node.
func (r *termRenderer) inlines(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(c, source, &buf)
	}
	return buf.String()
}

func (r *termRenderer) inline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			buf.WriteByte('\n')
		case n.SoftLineBreak():
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.inlines(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *extast.Strikethrough:
		buf.WriteString(r.strike.Render(r.inlines(n, source)))

	case *ast.CodeSpan:
		buf.WriteString(r.bold.Render(r.inlines(n, source)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.inlines(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.inlines(n, source)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(c, source, buf)
		}
	}
}
