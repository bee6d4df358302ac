package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"netcanvas/internal/config"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the netcanvas config file",
	}
	cmd.AddCommand(configInitCmd(a), configShowCmd(a))
	return cmd
}

func configInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default settings",
		Long: `Write a config file with default settings. The format follows the
extension: .toml writes TOML, anything else YAML.

  netcanvas config init                      # ~/.config/netcanvas/config.yaml
  netcanvas config init ./netcanvas.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check %s: %w", path, err)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %s wrote %s\n", statusIcon(true), Brand.Sprint(path))
			fmt.Fprintln(out, Subtle.Sprint(cfg.Summary()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

func configShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			source := a.loadedFrom
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(out, "  %s %s\n", Subtle.Sprint("source:"), Brand.Sprint(source))
			fmt.Fprintln(out, a.cfg.Summary())
			return nil
		},
	}
}
