// Package cmd is the jview command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jview/internal/config"
	"github.com/oakwood-commons/jview/pkg/logger"
	"github.com/oakwood-commons/jview/pkg/settings"
)

var (
	runSettings = settings.NewCliParams()
	debug       bool

	rootCtx = context.Background()
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "View JSON in the terminal",
	Long: `jview renders a JSON document with indentation and colors and lets you
scroll through it. The document comes from the file argument, or from stdin
when it is piped ("-" forces stdin).

Keys: j/k scroll one line, q or ctrl+c quits. More bindings can be added under
ui.keys in the config file.`,
	Example: "  jview data.json\n" +
		"  curl -s https://api.example.com/items | jview\n" +
		"  jview data.json -e '_.items.filter(x, x.active)'\n" +
		"  jview data.json -m scrollback --theme warm",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(runSettings.ConfigFile)
		if err != nil {
			return err
		}
		applyConfigDefaults(cmd, runSettings, cfg)

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		ctx := settings.IntoContext(rootCtx, runSettings)
		return runView(ctx, cfg, path, hostIO{
			In:  os.Stdin,
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
	},
}

// setupLogging builds the logger for --debug and --log-file and attaches it
// to rootCtx.
func setupLogging(cmd *cobra.Command) error {
	var level int8
	if debug {
		level = -1
		runSettings.MinLogLevel = -1
	}
	if runSettings.LogFile != "" && logFile == nil {
		f, err := os.OpenFile(runSettings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		logger.SetOutput(f)
	}
	lgr := logger.Get(level)
	lgr = logger.WithValues(lgr, "command", cmd.Name())
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	rootCtx = logger.WithLogger(parent, lgr)
	return nil
}

// applyConfigDefaults fills run options the user did not pass as flags from
// the config file.
func applyConfigDefaults(cmd *cobra.Command, run *settings.Run, cfg config.File) {
	flags := cmd.Flags()
	if !flags.Changed("mode") && cfg.UI.Render.Mode != "" {
		run.Mode = cfg.UI.Render.Mode
	}
	if !flags.Changed("max-depth") {
		run.MaxDepth = cfg.MaxDepth(settings.DefaultMaxDepth)
	}
	if !flags.Changed("theme") {
		run.Theme = cfg.UI.Theme.Default
	}
}

func init() { //nolint:gochecknoinits
	flags := rootCmd.Flags()
	flags.VarP(newModeValue(&runSettings.Mode), "mode", "m", "display mode: "+strings.Join(config.Modes, "|")+" (plain when stdout is not a terminal)")
	flags.StringVarP(&runSettings.Expression, "expression", "e", "", "CEL expression using '_' as root, e.g. '_.items[0]' or '_.items.filter(x, x.active)'")
	flags.BoolVar(&runSettings.NoColor, "no-color", false, "disable color output")
	flags.StringVar(&runSettings.Theme, "theme", "", "theme name (default from config; see 'jview themes')")
	flags.IntVar(&runSettings.MaxDepth, "max-depth", settings.DefaultMaxDepth, "maximum nesting depth to render (0 = unlimited)")

	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&runSettings.ConfigFile, "config-file", "", "path to a YAML config file")
	pflags.BoolVar(&debug, "debug", false, "log at debug level")
	pflags.StringVar(&runSettings.LogFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.Version = settings.VersionInformation.BuildVersion
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(versionCmd, configCmd, themesCmd, functionsCmd)
	configCmd.AddCommand(configDefaultCmd, configPathCmd)
}

// Execute runs the command tree. SIGTERM and interrupts cancel the running
// view.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if logFile != nil {
		logger.Sync()
		_ = logFile.Close()
		logFile = nil
	}
	return err
}
