// Command drawgen generates draw.io diagrams from natural-language prompts
// through a drawgen backend.
//
// Usage:
//
//	drawgen [flags]                  interactive TUI
//	drawgen generate PROMPT [flags]  stream one diagram to stdout
//	drawgen configs list|get|create|update|delete|enable|disable
//	drawgen templates                list system-prompt templates
//
// Flags:
//
//	--config string       Config file (default ~/.drawgen/config.yaml)
//	--base-url string     Backend URL (overrides config and DRAWGEN_BASE_URL)
//	--template string     System-prompt template name
//	--editor-addr string  Listen address of the browser editor bridge
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Env vars are read here and passed as values.
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	env := environment{
		home:   home,
		getenv: os.Getenv,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
	}

	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "drawgen: %v\n", err)
		os.Exit(1)
	}
}
