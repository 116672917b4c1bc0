package bubbletea

import "github.com/fwojciec/drawgen"

// RecordBlock renders one transcript record. View takes a width so the root
// model controls layout and blocks are testable in isolation.
type RecordBlock interface {
	// SetRecord replaces the rendered record with a newer snapshot of the
	// same transcript entry.
	SetRecord(r drawgen.Record)
	View(width int) string
}

// NewRecordBlock returns the block type for r's role.
func NewRecordBlock(r drawgen.Record, theme drawgen.Theme, styles Styles) RecordBlock {
	if r.Role == drawgen.RoleUser {
		return NewUserBlock(r, styles)
	}
	return NewAIBlock(r, theme, styles)
}

// header labels a block with its author.
func header(r drawgen.Record, styles Styles) string {
	if r.Role == drawgen.RoleUser {
		return styles.UserMsg.Render("you")
	}
	return styles.AIMsg.Render("drawgen")
}
