// Package logging builds the slog logger shared by every rankedlist command.
package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"rankedlist/internal/config"
)

// New returns a JSON logger writing to w and, when cfg.File is set, to a
// rotating log file. The returned closer releases the file; it is never nil.
func New(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,  // megabytes
			MaxAge:     cfg.MaxAgeDays, // days
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		closer = lj
		if w == nil {
			w = lj
		} else {
			w = io.MultiWriter(w, lj)
		}
	}
	if w == nil {
		w = io.Discard
	}
	opts := &slog.HandlerOptions{
		Level: LevelFromString(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
					src.File = filepath.Base(src.File)
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closer
}

func LevelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
