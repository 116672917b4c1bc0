package bubbletea

import (
	"fmt"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/goldmark"
	"github.com/rivo/uniseg"
)

var _ RecordBlock = (*AIBlock)(nil)

// AIBlock renders an AI record: the welcome text, or the content streamed by
// a generation call followed by its outcome.
//
// Finalized paragraphs (separated by a blank line) are rendered once per
// width and cached; only the trailing text is re-rendered as content grows.
type AIBlock struct {
	record drawgen.Record
	theme  drawgen.Theme
	styles Styles

	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAIBlock creates an AIBlock for r.
func NewAIBlock(r drawgen.Record, theme drawgen.Theme, styles Styles) *AIBlock {
	b := &AIBlock{
		theme:            theme,
		styles:           styles,
		finalizedByWidth: make(map[int]string),
	}
	b.SetRecord(r)
	return b
}

func (b *AIBlock) SetRecord(r drawgen.Record) {
	b.record = r
	b.promoteFinalized()
}

func (b *AIBlock) View(width int) string {
	var parts []string
	if body := b.body(width); body != "" {
		parts = append(parts, body)
	}
	if footer := b.footer(width); footer != "" {
		parts = append(parts, footer)
	}
	return strings.Join(parts, "\n")
}

func (b *AIBlock) footer(width int) string {
	r := b.record
	switch {
	case r.Error:
		return NewErrorBlock(r.Status, b.styles).View(width)
	case r.Completed:
		return b.styles.Success.Render("✓ diagram ready")
	case r.InFlight():
		n := uniseg.GraphemeClusterCount(r.Content)
		return b.styles.Muted.Render(fmt.Sprintf("streaming · %d chars", n))
	}
	return ""
}

func (b *AIBlock) body(width int) string {
	raw := b.record.Content
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if goldmark.IsXML(raw) {
		// Diagram documents are rendered whole; they have no paragraph
		// boundaries to cache on.
		return goldmark.Render(raw, width, b.theme)
	}

	finalized := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalized
	}
	rendered := goldmark.Render(trailing, width, b.theme)
	if finalized == "" {
		return rendered
	}
	return strings.TrimRight(finalized, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promoteFinalized moves the finalized prefix to the last blank line that is
// not inside an open code fence.
func (b *AIBlock) promoteFinalized() {
	raw := b.record.Content
	if !strings.HasPrefix(raw, b.finalizedRaw) {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	if goldmark.IsXML(raw) {
		return
	}
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AIBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AIBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.record.Content
	}
	return strings.TrimPrefix(b.record.Content, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" in s. Triple backticks
// inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
