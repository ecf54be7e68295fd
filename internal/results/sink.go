// Package results records finished trial responses for the hosts.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rankedlist/internal/config"
	"rankedlist/internal/model"
)

var ErrClosed = errors.New("results: sink closed")

// Record is one stored response.
type Record struct {
	Seq        int64               `json:"seq"`
	RecordedAt time.Time           `json:"recorded_at"`
	Response   model.TrialResponse `json:"response"`
}

// Sink stores responses. Implementations are safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, resp model.TrialResponse) error
	// List returns the newest records first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open returns the sink selected by cfg.
func Open(ctx context.Context, cfg config.ResultsConfig) (Sink, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendJSONL:
		return OpenJSONL(cfg.Path)
	case config.BackendNone, "":
		return Discard{}, nil
	default:
		return nil, fmt.Errorf("results: unknown backend %q", cfg.Backend)
	}
}

// Discard drops every response.
type Discard struct{}

func (Discard) Record(context.Context, model.TrialResponse) error { return nil }
func (Discard) List(context.Context, int) ([]Record, error)       { return []Record{}, nil }
func (Discard) Close() error                                      { return nil }
