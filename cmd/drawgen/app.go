package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/backend"
	bt "github.com/fwojciec/drawgen/bubbletea"
	"github.com/fwojciec/drawgen/config"
	"github.com/fwojciec/drawgen/editor"
	"github.com/fwojciec/drawgen/fs"
	"github.com/spf13/cobra"
)

// environment is everything the commands take from the process.
type environment struct {
	home       string
	getenv     func(string) string
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
}

// app holds the flags and the state built from them before a command runs.
type app struct {
	env environment

	configPath string
	baseURL    string
	template   string
	editorAddr string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

func newRootCmd(env environment) *cobra.Command {
	a := &app{env: env}
	root := &cobra.Command{
		Use:   "drawgen",
		Short: "Generate draw.io diagrams from natural-language prompts",
		Long: `drawgen sends a description of a diagram to a drawgen backend, streams the
generated text back and saves the finished diagram as a .drawio file.

Without a subcommand it starts an interactive terminal UI. Type a prompt and
press Enter; /retry resends the last prompt, /clear starts over, /template NAME
selects a system-prompt template, /export FORMAT saves the diagram open in the
browser editor, /remove N drops a transcript record and Ctrl+C cancels a
running generation.`,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE:               a.runTUI,
	}
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.drawgen/config.yaml)")
	flags.StringVar(&a.baseURL, "base-url", "", "backend URL")
	flags.StringVar(&a.template, "template", "", "system-prompt template name")
	flags.StringVar(&a.editorAddr, "editor-addr", "", "listen address of the browser editor bridge, e.g. localhost:8090")

	root.AddCommand(a.generateCmd())
	root.AddCommand(a.configsCmd())
	root.AddCommand(a.templatesCmd())
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path, required := a.configPath, a.configPath != ""
	if !required {
		path = config.DefaultPath(a.env.home)
	}
	cfg, err := config.Load(a.env.home, path, required, a.env.getenv)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(a.baseURL, "/")
	}
	if a.template != "" {
		cfg.Template = a.template
	}
	if a.editorAddr != "" {
		cfg.EditorAddr = a.editorAddr
	}
	a.cfg = cfg

	// The TUI owns the terminal; its logs go to the file only.
	stderr := a.env.stderr
	if cmd == cmd.Root() {
		stderr = io.Discard
	}
	a.logger, a.closeLog = config.SetupLogger(stderr, cfg.LogFile, cfg.Level())
	a.logger.Debug("configuration loaded", "path", path, "base_url", cfg.BaseURL)
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func (a *app) client() *backend.Client {
	return backend.New(
		backend.WithBaseURL(a.cfg.BaseURL),
		backend.WithLogger(a.logger),
	)
}

func (a *app) templateStore() *fs.TemplateStore {
	return fs.NewTemplateStore(a.cfg.TemplateDir)
}

// selectedTemplate returns the configured template, if one is set.
func (a *app) selectedTemplate() (drawgen.Template, bool, error) {
	if a.cfg.Template == "" {
		return drawgen.Template{}, false, nil
	}
	t, err := a.templateStore().Get(a.cfg.Template)
	if err != nil {
		return drawgen.Template{}, false, err
	}
	return t, true, nil
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	templates, err := a.templateStore().List()
	if err != nil {
		return err
	}
	opts := []bt.Option{bt.WithTemplates(templates)}
	tmpl, ok, err := a.selectedTemplate()
	if err != nil {
		return err
	}
	if ok {
		opts = append(opts, bt.WithTemplate(tmpl))
	}

	session := drawgen.NewSession()
	session.AddWelcome()

	store := fs.NewArtifactStore(a.cfg.OutputDir)
	loaders := drawgen.ArtifactLoaders{store}
	if a.cfg.EditorAddr != "" {
		bridge := editor.New(editor.WithLogger(a.logger))
		ln, err := net.Listen("tcp", a.cfg.EditorAddr)
		if err != nil {
			return fmt.Errorf("editor bridge: %w", err)
		}
		go func() {
			if err := bridge.Serve(ctx, ln); err != nil {
				a.logger.Error("editor bridge stopped", "error", err)
			}
		}()
		go saveExports(ctx, bridge.Exports(), store, session, a.logger)
		loaders = append(loaders, bridge)
		opts = append(opts, bt.WithExporter(bridge))
		url := "http://" + ln.Addr().String()
		a.logger.Info("editor bridge listening", "url", url)
		session.AddRecord(drawgen.RoleAI, "Open "+url+" to edit generated diagrams in draw.io.")
	}

	gen := drawgen.NewGenerator(a.client(), session,
		drawgen.WithLogger(a.logger),
		drawgen.WithArtifactLoader(loaders),
	)
	return bt.Run(ctx, bt.New(gen, session, drawgen.DefaultTheme(), opts...))
}

// saveExports writes exports finished by the editor into store and notes
// each one in the transcript. It returns when ctx is done or exports is
// closed.
func saveExports(ctx context.Context, exports <-chan editor.Export, store *fs.ArtifactStore, session *drawgen.Session, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-exports:
			if !ok {
				return
			}
			path, err := store.SaveExport(e.Format, e.Data)
			if err != nil {
				logger.Error("save export", "format", e.Format, "error", err)
				session.AddRecord(drawgen.RoleAI, "Export failed: "+err.Error())
				continue
			}
			logger.Info("export saved", "format", e.Format, "path", path)
			session.AddRecord(drawgen.RoleAI, "Saved "+e.Format+" export to "+path)
		}
	}
}
