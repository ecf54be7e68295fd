package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rankedlist/internal/results"
	"rankedlist/internal/tui"
)

type runOptions struct {
	altScreen bool
}

func newRunCmd(app *App) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one trial in this terminal",
		Long: strings.TrimSpace(`
Run one ranked-list trial in the terminal and record the response.

The response is written to stdout (see --format) once the trial ends, either
because the participant continued or because trial_duration ran out.
`),
		Example: strings.TrimSpace(`
rankedlist run --config trial.yaml
rankedlist run --config trial.yaml --format yaml --results out.jsonl
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrial(cmd, app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.altScreen, "alt-screen", true, "Use the terminal's alternate screen")
	return cmd
}

func runTrial(cmd *cobra.Command, app *App, opts runOptions) error {
	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	// The TUI owns the terminal; logs only go to logging.file.
	logger := newLogger(app, cfg, nil)

	sink, err := results.Open(cmd.Context(), cfg.Results)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer sink.Close()

	// The trial draws on stderr; stdout is kept for the response document.
	resp, err := tui.Run(cmd.Context(), cfg.Trial, tui.Options{
		Logger:    logger,
		Input:     cmd.InOrStdin(),
		Output:    cmd.ErrOrStderr(),
		AltScreen: opts.altScreen,
	})
	if errors.Is(err, tui.ErrAborted) {
		return writeErr(cmd, trialAbortedError{})
	}
	if err != nil {
		return writeErr(cmd, err)
	}

	if err := sink.Record(cmd.Context(), resp); err != nil {
		logger.Error("record response", "trial_id", resp.TrialID, "err", err)
		return writeErr(cmd, fmt.Errorf("record response: %w", err))
	}
	logger.Info("response recorded", "trial_id", resp.TrialID, "items", len(resp.Response), "timed_out", resp.TimedOut)

	return writeOut(cmd, app, map[string]any{
		"data": resp,
		"meta": map[string]any{
			"backend":    cfg.Results.Backend,
			"path":       cfg.Results.Path,
			"recordedAt": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
}
