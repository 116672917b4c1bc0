package bubbletea_test

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/drawgen"
	bt "github.com/fwojciec/drawgen/bubbletea"
	"github.com/fwojciec/drawgen/mock"
	"github.com/stretchr/testify/require"
)

// fakeGenerator is a bt.Generator double. GenerateFn defaults to a call
// that completes immediately.
type fakeGenerator struct {
	GenerateFn func(ctx context.Context, prompt string, opts ...drawgen.GenerateOption) (bool, error)

	mu        sync.Mutex
	cancelled int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, opts ...drawgen.GenerateOption) (bool, error) {
	if g.GenerateFn == nil {
		return true, nil
	}
	return g.GenerateFn(ctx, prompt, opts...)
}

func (g *fakeGenerator) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled++
	return true
}

type fakeExporter struct {
	ExportFn func(format string) error
}

func (e *fakeExporter) Export(format string) error { return e.ExportFn(format) }

func (g *fakeGenerator) Cancelled() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancelled
}

// newSession returns a Session holding the welcome record.
func newSession() *drawgen.Session {
	s := drawgen.NewSession()
	s.AddWelcome()
	return s
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, gen bt.Generator, session *drawgen.Session, opts ...bt.Option) bt.Model {
	t.Helper()
	return initModelWithSize(t, gen, session, 80, 24, opts...)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, gen bt.Generator, session *drawgen.Session, width, height int, opts ...bt.Option) bt.Model {
	t.Helper()
	m := bt.New(gen, session, drawgen.DefaultTheme(), opts...)
	t.Cleanup(m.Close)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText sends s to the model one rune at a time.
func typeText(t *testing.T, m bt.Model, s string) bt.Model {
	t.Helper()
	for _, r := range s {
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// submit types s, presses Enter and returns the model and its command.
func submit(t *testing.T, m bt.Model, s string) (bt.Model, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, s)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// collect runs cmd, expanding batches, and returns the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// doneMsg runs cmd and returns the GenerationDoneMsg it produced.
func doneMsg(t *testing.T, cmd tea.Cmd) bt.GenerationDoneMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(bt.GenerationDoneMsg); ok {
			return done
		}
	}
	require.FailNow(t, "command produced no GenerationDoneMsg")
	return bt.GenerationDoneMsg{}
}

// recordingTransport returns a transport that answers every request with
// events and sends the request on the returned channel.
func recordingTransport(events ...drawgen.Event) (*mock.Transport, <-chan drawgen.Request) {
	reqs := make(chan drawgen.Request, 8)
	return &mock.Transport{
		OpenFn: func(_ context.Context, req drawgen.Request) (drawgen.Stream, error) {
			reqs <- req
			return mock.Events(nil, events...), nil
		},
	}, reqs
}
