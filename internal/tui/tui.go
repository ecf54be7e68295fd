// Package tui runs a ranked-list trial in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"rankedlist/internal/model"
	"rankedlist/internal/trial"
)

// ErrAborted is returned when the participant quits before the trial ends.
var ErrAborted = errors.New("tui: trial aborted")

type Options struct {
	Logger    *slog.Logger
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Run shows one trial and blocks until it finishes, the participant quits
// or ctx is done.
func Run(ctx context.Context, cfg model.TrialConfig, opts Options) (model.TrialResponse, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	host := &termHost{}
	ctrl, err := trial.Start(host, cfg, trial.WithLogger(logger))
	if err != nil {
		return model.TrialResponse{}, err
	}

	pOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if opts.Input != nil {
		pOpts = append(pOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		pOpts = append(pOpts, tea.WithOutput(opts.Output))
		lipgloss.SetColorProfile(termenv.NewOutput(opts.Output).EnvColorProfile())
	}
	if opts.AltScreen {
		pOpts = append(pOpts, tea.WithAltScreen())
	}

	m := newModel(ctrl, host, time.Now)
	if _, err := tea.NewProgram(m, pOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return model.TrialResponse{}, ctx.Err()
		}
		return model.TrialResponse{}, err
	}
	if resp, ok := ctrl.Response(); ok {
		return resp, nil
	}
	return model.TrialResponse{}, ErrAborted
}
