package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fwojciec/drawgen"
	bt "github.com/fwojciec/drawgen/bubbletea"
	"github.com/fwojciec/drawgen/fs"
	"github.com/fwojciec/drawgen/goldmark"
	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate PROMPT",
		Short: "Generate one diagram and stream the response to stdout",
		Long: `Generate sends PROMPT to the backend, writes the streamed text to stdout and
saves the finished diagram under the output directory. The path of the saved
file is printed to stderr. The command fails when the server does not
complete the diagram.

Examples:
  drawgen generate "a user login flow"
  drawgen generate --template aws "three tier web application" > answer.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runGenerate,
	}
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	var opts []drawgen.GenerateOption
	tmpl, ok, err := a.selectedTemplate()
	if err != nil {
		return err
	}
	if ok && tmpl.SystemPrompt != "" {
		opts = append(opts, drawgen.WithSystemPrompt(tmpl.SystemPrompt))
	}

	session := drawgen.NewSession()
	store := fs.NewArtifactStore(a.cfg.OutputDir)
	gen := drawgen.NewGenerator(a.client(), session,
		drawgen.WithLogger(a.logger),
		drawgen.WithArtifactLoader(store),
	)

	p := &contentPrinter{w: a.env.stdout, session: session, sanitize: a.env.isTerminal()}
	changes, unsubscribe := session.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range changes {
			p.flush()
		}
	}()

	completed, genErr := gen.Generate(cmd.Context(), prompt, opts...)
	unsubscribe()
	wg.Wait()
	p.flush()
	p.finish()

	styles := bt.NewStyles(drawgen.DefaultTheme())
	if !completed {
		msg := failureMessage(genErr)
		if a.env.isTerminal() {
			msg = styles.Error.Render(msg)
		}
		fmt.Fprintln(a.env.stderr, msg)
		return genErr
	}

	msg := "saved " + store.LastPath()
	if a.env.isTerminal() {
		msg = styles.Success.Render("✓ " + msg)
	}
	fmt.Fprintln(a.env.stderr, msg)
	return nil
}

func failureMessage(err error) string {
	var gerr *drawgen.GenerationError
	if errors.As(err, &gerr) {
		return "generation failed: " + gerr.Message
	}
	return "generation failed"
}

// contentPrinter copies the streamed content of the session's in-flight
// record to w as it grows. With sanitize set, escape sequences are removed
// before writing and an escape sequence still arriving is held back until
// it is complete.
type contentPrinter struct {
	w        io.Writer
	session  *drawgen.Session
	sanitize bool

	mu      sync.Mutex
	index   int
	printed int
	wrote   bool
	last    byte
	started bool
}

func (p *contentPrinter) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write(false)
}

// finish writes anything held back and ends the output with a newline.
func (p *contentPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write(true)
	if p.wrote && p.last != '\n' {
		io.WriteString(p.w, "\n")
	}
}

func (p *contentPrinter) write(final bool) {
	if !p.started {
		p.index = lastStreamIndex(p.session.Records())
		if p.index < 0 {
			return
		}
		p.started = true
	}
	r, ok := p.session.Record(p.index)
	if !ok || len(r.Content) <= p.printed {
		return
	}
	delta := r.Content[p.printed:]
	if p.sanitize {
		var tail string
		if !final {
			delta, tail = goldmark.CutPartialEscape(delta)
		}
		p.printed = len(r.Content) - len(tail)
		delta = goldmark.Sanitize(delta)
	} else {
		p.printed = len(r.Content)
	}
	if delta == "" {
		return
	}
	io.WriteString(p.w, delta)
	p.wrote = true
	p.last = delta[len(delta)-1]
}

func lastStreamIndex(records []drawgen.Record) int {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Stream {
			return i
		}
	}
	return -1
}
