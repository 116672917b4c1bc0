package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/backend"
	"github.com/spf13/cobra"
)

// configFlags are the editable fields of a provider configuration.
type configFlags struct {
	name     string
	apiBase  string
	apiKey   string
	model    string
	enabled  bool
	priority int
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.apiBase, "api-base", "", "provider API base URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "provider API key")
	cmd.Flags().StringVar(&f.model, "model", "", "model ID")
	cmd.Flags().BoolVar(&f.enabled, "enabled", false, "enable the configuration")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "lower is tried first")
}

func (f *configFlags) config() drawgen.ProviderConfig {
	return drawgen.ProviderConfig{
		Name:     f.name,
		BaseURL:  f.apiBase,
		APIKey:   f.apiKey,
		Model:    f.model,
		Enabled:  f.enabled,
		Priority: f.priority,
	}
}

// update returns a ConfigUpdate holding only the flags set on cmd.
func (f *configFlags) update(cmd *cobra.Command) drawgen.ConfigUpdate {
	var upd drawgen.ConfigUpdate
	changed := cmd.Flags().Changed
	if changed("name") {
		upd.Name = &f.name
	}
	if changed("api-base") {
		upd.BaseURL = &f.apiBase
	}
	if changed("api-key") {
		upd.APIKey = &f.apiKey
	}
	if changed("model") {
		upd.Model = &f.model
	}
	if changed("enabled") {
		upd.Enabled = &f.enabled
	}
	if changed("priority") {
		upd.Priority = &f.priority
	}
	return upd
}

func (a *app) configsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage the backend's AI provider configurations",
		Long: `Configs manages the provider configurations the backend tries in priority
order. System configurations are owned by the server; only their enabled flag
can change.

Examples:
  drawgen configs list
  drawgen configs create --name claude --api-base https://api.anthropic.com --api-key sk-... --model claude-sonnet
  drawgen configs update 3 --priority 1
  drawgen configs enable 3`,
	}

	var createFlags, updateFlags configFlags

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.configService().Create(cmd.Context(), createFlags.config())
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
	createFlags.register(create)
	_ = create.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.configService().Update(cmd.Context(), args[0], updateFlags.update(cmd))
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
	updateFlags.register(update)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List configurations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfgs, err := a.configService().List(cmd.Context())
				if err != nil {
					return err
				}
				return printConfigs(cmd.OutOrStdout(), cfgs)
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.configService().Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printConfig(cmd.OutOrStdout(), cfg)
			},
		},
		create,
		update,
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a configuration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.configService().Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
		a.toggleCmd("enable ID", "Enable a configuration and disable all others", true),
		a.toggleCmd("disable ID", "Disable a configuration", false),
	)
	return cmd
}

func (a *app) toggleCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := drawgen.EnableExclusive(cmd.Context(), a.configService(), args[0], enabled)
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func (a *app) configService() *backend.ConfigService {
	return backend.NewConfigService(a.client())
}

func printConfigs(w io.Writer, cfgs []drawgen.ProviderConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODEL\tPRIORITY\tENABLED\tSYSTEM")
	for _, c := range cfgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, c.Name, c.Model, c.Priority, yesNo(c.Enabled), yesNo(c.IsSystem))
	}
	return tw.Flush()
}

func printConfig(w io.Writer, c drawgen.ProviderConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range [][2]string{
		{"id", c.ID},
		{"name", c.Name},
		{"base url", c.BaseURL},
		{"api key", maskKey(c.APIKey)},
		{"model", c.Model},
		{"priority", strconv.Itoa(c.Priority)},
		{"enabled", yesNo(c.Enabled)},
		{"system", yesNo(c.IsSystem)},
	} {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

// maskKey keeps the first four characters of a key.
func maskKey(k string) string {
	if len(k) <= 4 {
		return k
	}
	return k[:4] + "****"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
