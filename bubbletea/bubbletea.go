// Package bubbletea provides a Bubble Tea TUI for generating diagrams.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/drawgen"
)

// Generator runs one generation call at a time. *drawgen.Generator
// implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...drawgen.GenerateOption) (bool, error)
	Cancel() bool
}

// Exporter asks the connected editor to export the current diagram.
// *editor.Bridge implements it.
type Exporter interface {
	Export(format string) error
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	defer m.Close()
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// SessionChangedMsg reports that the Session the model renders was mutated.
type SessionChangedMsg struct {
	Change drawgen.Change
}

// GenerationDoneMsg signals that a generation call returned.
type GenerationDoneMsg struct {
	Completed bool
	Err       error
}
