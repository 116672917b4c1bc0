package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrorBlock renders the failure status of a record.
type ErrorBlock struct {
	message string
	styles  Styles
}

// NewErrorBlock creates an ErrorBlock for a record status such as
// "❌ generation cancelled".
func NewErrorBlock(status string, styles Styles) *ErrorBlock {
	return &ErrorBlock{message: status, styles: styles}
}

func (b *ErrorBlock) View(width int) string {
	msg := strings.TrimSpace(b.message)
	if msg == "" {
		msg = "generation failed"
	}
	return lipgloss.NewStyle().Width(width).Render(b.styles.Error.Render(msg))
}
