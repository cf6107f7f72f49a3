package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jview/internal/config"
	"github.com/oakwood-commons/jview/internal/query"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print jview version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(runSettings.ConfigFile)
		if err != nil {
			return err
		}
		return printVersion(cmd.OutOrStdout(), cfg.App.About)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ResolvePath(runSettings.ConfigFile))
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in configuration, a starting point for a config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := config.ResolvePath(runSettings.ConfigFile)
		if path == "" {
			path = "(built-in defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ResolvePath(runSettings.ConfigFile))
		if err != nil {
			return err
		}
		return printThemes(cmd.OutOrStdout(), cfg)
	},
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List functions available in --expression",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ev, err := query.New()
		if err != nil {
			return err
		}
		for _, line := range ev.Functions() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
				return err
			}
		}
		return nil
	},
}

func printVersion(w io.Writer, about config.AboutConfig) error {
	lines, err := about.RenderDetails()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		lines = []string{about.Name + " " + about.Version}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func printThemes(w io.Writer, cfg config.File) error {
	def := cfg.UI.Theme.Default
	if def == "" {
		def = "default"
	}
	if _, err := fmt.Fprintf(w, "Available themes (default: %s):\n", def); err != nil {
		return err
	}
	for _, name := range cfg.ThemeNames() {
		if _, err := fmt.Fprintf(w, " - %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
