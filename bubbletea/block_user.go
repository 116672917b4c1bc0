package bubbletea

import "github.com/fwojciec/drawgen"

var _ RecordBlock = (*UserBlock)(nil)

// UserBlock renders a prompt the user sent on a full-width background.
type UserBlock struct {
	text   string
	styles Styles
}

// NewUserBlock creates a UserBlock.
func NewUserBlock(r drawgen.Record, styles Styles) *UserBlock {
	return &UserBlock{text: r.Content, styles: styles}
}

func (b *UserBlock) SetRecord(r drawgen.Record) { b.text = r.Content }

func (b *UserBlock) View(width int) string {
	return b.styles.UserBg.Width(width).Render(b.text)
}
