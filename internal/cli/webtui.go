package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rankedlist/internal/webtui"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal trial in your browser (PTY + WebSocket, experimental)",
		Long: strings.TrimSpace(`
Run the terminal trial over the web via a server-side PTY and a browser
terminal emulator.

Notes:
- Experimental (no auth).
- Each browser tab starts its own ` + "`rankedlist run`" + ` subprocess, which
  records its response like a local run.
`),
		Example: strings.TrimSpace(`
rankedlist webtui --config trial.yaml --addr 127.0.0.1:3335
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			logger := newLogger(app, cfg, cmd.ErrOrStderr())

			configPath := strings.TrimSpace(app.ConfigPath)
			if configPath != "" {
				if abs, err := filepath.Abs(configPath); err == nil {
					configPath = abs
				}
			}

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:       strings.TrimSpace(addr),
				ConfigPath: configPath,
				Logger:     logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := srv.Addr()
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      listenAddr,
					"config":    configPath,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"open http://" + listenAddr,
				},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "rankedlist webtui running at http://%s\n", listenAddr)

			hs := &http.Server{Addr: listenAddr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(ctx)
			}()
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Bind address (host:port or :port)")
	return cmd
}
