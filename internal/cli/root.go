package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rankedlist/internal/config"
	"rankedlist/internal/format"
	"rankedlist/internal/logging"
)

type App struct {
	ConfigPath string
	Results    string
	PrettyJSON bool
	Format     string

	cfg       *config.Config
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "rankedlist",
		Short:        "Free-text ranked-list trials in the terminal or the browser",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run one trial in this terminal
  rankedlist --config trial.yaml

  # Shortcut for: rankedlist run --config trial.yaml
  rankedlist trial.yaml

  # Serve trials to browsers
  rankedlist web --config trial.yaml --addr :3334

  # Show what has been recorded
  rankedlist results list --limit 5
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => one trial in the terminal.
			if len(args) == 0 {
				return runTrial(cmd, app, runOptions{altScreen: true})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			return app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("RANKEDLIST_CONFIG", ""), "Path to the trial config (yaml)")
	cmd.PersistentFlags().StringVar(&app.Results, "results", "", "Results file (overrides results.path)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("RANKEDLIST_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newWebTUICmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newResultsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig reads and validates the config once per invocation.
func loadConfig(app *App) (config.Config, error) {
	if app.cfg != nil {
		return *app.cfg, nil
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if p := strings.TrimSpace(app.Results); p != "" {
		cfg.Results.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, invalidConfigError{path: app.ConfigPath, err: err}
	}
	app.cfg = &cfg
	return cfg, nil
}

// newLogger builds the command's logger. w may be nil for commands that own
// the terminal; they log to the configured file only.
func newLogger(app *App, cfg config.Config, w io.Writer) *slog.Logger {
	logger, closer := logging.New(cfg.Logging, w)
	app.logCloser = closer
	return logger
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	f, err := format.Parse(app.Format)
	if err != nil {
		return writeErr(cmd, err)
	}
	return format.Write(cmd.OutOrStdout(), v, f, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
