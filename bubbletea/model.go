package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/drawgen"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Input commands. Anything else typed into the input is sent as a prompt.
const (
	cmdRetry     = "/retry"
	cmdClear     = "/clear"
	cmdTemplate  = "/template"
	cmdTemplates = "/templates"
	cmdExport    = "/export"
	cmdRemove    = "/remove"
)

// defaultExportFormat is what /export asks for without an argument.
const defaultExportFormat = "png"


// Model is the Bubble Tea model for the drawgen TUI. It renders the
// transcript held by a Session and re-renders whenever the Session changes.
type Model struct {
	// Input is the prompt input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while a generation call runs.
	Spinner spinner.Model

	gen     Generator
	session *drawgen.Session
	theme   drawgen.Theme
	styles  Styles

	templates []drawgen.Template
	template  *drawgen.Template
	exporter  Exporter

	blocks      []RecordBlock
	changes     <-chan drawgen.Change
	unsubscribe func()

	running bool
	err     error
	notice  string
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithTemplates sets the templates /template can select from.
func WithTemplates(ts []drawgen.Template) Option {
	return func(m *Model) { m.templates = ts }
}

// WithTemplate preselects the template whose system prompt is sent with
// every generation call.
func WithTemplate(t drawgen.Template) Option {
	return func(m *Model) { m.template = &t }
}

// WithExporter enables /export through e.
func WithExporter(e Exporter) Option {
	return func(m *Model) { m.exporter = e }
}

// New creates a Model that runs prompts through gen and renders session.
// Call Close when the model is no longer used.
func New(gen Generator, session *drawgen.Session, theme drawgen.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a diagram..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	styles := NewStyles(theme)
	sp.Style = styles.Accent

	changes, unsubscribe := session.Subscribe()
	m := Model{
		Input:       ti,
		Spinner:     sp,
		gen:         gen,
		session:     session,
		theme:       theme,
		styles:      styles,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Close stops listening for Session changes.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Running returns whether a generation call is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last generation call, if any.
func (m Model) Err() error { return m.err }

// Template returns the selected template, if any.
func (m Model) Template() (drawgen.Template, bool) {
	if m.template == nil {
		return drawgen.Template{}, false
	}
	return *m.template, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForChange(m.changes))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionChangedMsg:
		m = m.syncBlocks()
		return m, listenForChange(m.changes)

	case GenerationDoneMsg:
		m.running = false
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m = m.syncBlocks()
		return m, m.Input.Focus()

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	// Leave room for the prompt and the cursor.
	m.Input.Width = max(msg.Width-lipgloss.Width(m.Input.Prompt)-1, 1)
	return m.syncBlocks()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.gen.Cancel()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		if strings.HasPrefix(text, "/") {
			return m.runCommand(text)
		}
		return m.generate(text, false)
	}

	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		// Character keys go to the input only; 'j'/'k' would scroll.
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Scrolling stays available while streaming.
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	m.notice = ""

	switch name {
	case cmdRetry:
		prompt := m.session.LastPrompt()
		if prompt == "" {
			m.notice = "nothing to retry"
			return m, nil
		}
		return m.generate(prompt, true)

	case cmdClear:
		m.err = nil
		m.session.Clear()
		m.session.AddWelcome()
		return m, nil

	case cmdTemplate:
		if arg == "" {
			m.template = nil
			m.notice = "template cleared"
			return m, nil
		}
		for _, t := range m.templates {
			if t.Name == arg {
				m.template = &t
				m.notice = "template " + t.Name
				return m, nil
			}
		}
		m.notice = fmt.Sprintf("unknown template %q", arg)
		return m, nil

	case cmdTemplates:
		if len(m.templates) == 0 {
			m.notice = "no templates"
			return m, nil
		}
		names := make([]string, len(m.templates))
		for i, t := range m.templates {
			names[i] = t.Name
		}
		m.notice = "templates: " + strings.Join(names, ", ")
		return m, nil

	case cmdExport:
		if m.exporter == nil {
			m.notice = "no editor bridge, start with --editor-addr"
			return m, nil
		}
		format := arg
		if format == "" {
			format = defaultExportFormat
		}
		if err := m.exporter.Export(format); err != nil {
			m.notice = "export failed: " + err.Error()
			return m, nil
		}
		m.notice = "exporting " + format
		return m, nil

	case cmdRemove:
		return m.removeRecord(arg)
	}

	m.notice = fmt.Sprintf("unknown command %s", name)
	return m, nil
}

// removeRecord drops a transcript record by its 1-based position; without
// an argument the last record goes.
func (m Model) removeRecord(arg string) (tea.Model, tea.Cmd) {
	n := len(m.session.Records())
	pos := n
	if arg != "" {
		p, err := strconv.Atoi(arg)
		if err != nil {
			m.notice = fmt.Sprintf("invalid record number %q", arg)
			return m, nil
		}
		pos = p
	}
	if pos < 1 || pos > n {
		m.notice = "no such record"
		return m, nil
	}
	m.session.RemoveRecord(pos - 1)
	m.notice = fmt.Sprintf("removed record %d", pos)
	return m, nil
}

func (m Model) generate(prompt string, regenerate bool) (tea.Model, tea.Cmd) {
	m.err = nil
	m.notice = ""
	m.running = true
	m.Input.Blur()

	var opts []drawgen.GenerateOption
	if m.template != nil && m.template.SystemPrompt != "" {
		opts = append(opts, drawgen.WithSystemPrompt(m.template.SystemPrompt))
	}
	if regenerate {
		opts = append(opts, drawgen.WithRegenerate())
	}
	gen := m.gen
	run := func() tea.Msg {
		ok, err := gen.Generate(context.Background(), prompt, opts...)
		return GenerationDoneMsg{Completed: ok, Err: err}
	}
	return m, tea.Batch(run, m.Spinner.Tick)
}

// syncBlocks brings the rendered blocks up to date with the Session's
// transcript and re-renders the viewport.
func (m Model) syncBlocks() Model {
	records := m.session.Records()
	if len(records) < len(m.blocks) {
		m.blocks = nil
	}
	blocks := make([]RecordBlock, len(records))
	for i, r := range records {
		if i < len(m.blocks) && sameKind(m.blocks[i], r) {
			m.blocks[i].SetRecord(r)
			blocks[i] = m.blocks[i]
			continue
		}
		blocks[i] = NewRecordBlock(r, m.theme, m.styles)
	}
	m.blocks = blocks
	if m.ready {
		m.Viewport.SetContent(m.renderContent(records))
		m.Viewport.GotoBottom()
	}
	return m
}

func sameKind(b RecordBlock, r drawgen.Record) bool {
	_, user := b.(*UserBlock)
	return user == (r.Role == drawgen.RoleUser)
}

func (m Model) renderContent(records []drawgen.Record) string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(header(records[i], m.styles))
		b.WriteString("\n")
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.err != nil {
		return m.styles.Error.Render(truncate("Error: "+m.err.Error(), width))
	}
	if m.running {
		label := m.session.Status().Label
		if api := m.session.LastAPI(); api != "" {
			label += " via " + api
		}
		return m.Spinner.View() + " " + m.styles.Muted.Render(truncate(label+" · Ctrl+C to cancel", width-2))
	}

	parts := []string{m.session.Status().Label}
	if m.template != nil {
		parts = append(parts, "template "+m.template.Name)
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	parts = append(parts, "Enter to send, /retry, /clear, /export, Ctrl+C to quit")
	return m.styles.Muted.Render(truncate(strings.Join(parts, " · "), width))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// listenForChange waits for the next Session change. It returns nil once
// the subscription is closed.
func listenForChange(ch <-chan drawgen.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return SessionChangedMsg{Change: c}
	}
}
