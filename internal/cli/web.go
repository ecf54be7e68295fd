package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rankedlist/internal/results"
	"rankedlist/internal/web"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve trials to browsers (server-rendered HTML + datastar)",
		Long: strings.TrimSpace(`
Serve ranked-list trials over HTTP. Every visit to / starts a new trial;
responses are recorded to the configured results backend.
`),
		Example: strings.TrimSpace(`
# Serve on localhost using web.addr from the config
rankedlist web --config trial.yaml

# Serve on all interfaces
rankedlist web --config trial.yaml --addr :3334
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			logger := newLogger(app, cfg, cmd.ErrOrStderr())

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = strings.TrimSpace(cfg.Web.Addr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}
			ttl, err := cfg.SessionTTL()
			if err != nil {
				return writeErr(cmd, err)
			}

			sink, err := results.Open(cmd.Context(), cfg.Results)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sink.Close()

			srv, err := web.NewServer(web.ServerConfig{
				Addr:       listenAddr,
				Trial:      cfg.Trial,
				Sink:       sink,
				SessionTTL: ttl,
				Logger:     logger,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"results":   cfg.Results.Backend,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			logger.Info("web server listening", "url", url, "results", cfg.Results.Backend)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			return srv.Serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default web.addr)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the trial in your default browser")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return errors.New("no display")
		}
		return exec.Command("xdg-open", path).Run()
	}
}
