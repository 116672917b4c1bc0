package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List system-prompt templates",
		Long: `Templates are markdown files under the template directory. Optional YAML
front matter sets the name and description; the rest of the file is the
system prompt sent with each generation call.`,
		Args: cobra.NoArgs,
		RunE: a.runTemplates,
	}
}

func (a *app) runTemplates(cmd *cobra.Command, _ []string) error {
	templates, err := a.templateStore().List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(templates) == 0 {
		fmt.Fprintf(out, "No templates in %s\n", a.cfg.TemplateDir)
		return nil
	}
	for _, t := range templates {
		marker := " "
		if t.Name == a.cfg.Template {
			marker = "*"
		}
		if t.Description != "" {
			fmt.Fprintf(out, "%s %s - %s\n", marker, t.Name, t.Description)
		} else {
			fmt.Fprintf(out, "%s %s\n", marker, t.Name)
		}
	}
	return nil
}
