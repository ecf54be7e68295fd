package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rankedlist/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create trial configs",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigCheckCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config (file over defaults, plus env overrides)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
}

func newConfigCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := loadConfig(app)
			var invalid invalidConfigError
			if errors.As(err, &invalid) {
				_ = writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"valid":    false,
						"path":     app.ConfigPath,
						"problems": problems(invalid.err),
					},
				})
				return invalid
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"valid": true, "path": app.ConfigPath},
			})
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file holding every default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			if !force {
				if _, err := os.Stat(path); err == nil {
					return writeErr(cmd, fmt.Errorf("%s already exists (use --force to overwrite)", path))
				}
			}
			b, err := config.Default().Marshal()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": path},
				"_hints": []string{"rankedlist --config " + path},
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// problems flattens an errors.Join tree into one message per problem.
func problems(err error) []string {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range j.Unwrap() {
			out = append(out, problems(e)...)
		}
		return out
	}
	if w := errors.Unwrap(err); w != nil {
		if _, ok := w.(interface{ Unwrap() []error }); ok {
			prefix := strings.TrimSuffix(err.Error(), w.Error())
			var out []string
			for _, p := range problems(w) {
				out = append(out, prefix+p)
			}
			return out
		}
	}
	return []string{err.Error()}
}
