// Package web serves ranked-list trials to a browser. The page is rendered
// on the server and kept live with datastar: every participant action is a
// POST answered with a patch of the whole #trial subtree.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rankedlist/internal/model"
	"rankedlist/internal/results"
	"rankedlist/internal/trial"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr  string
	Trial model.TrialConfig
	Sink  results.Sink
	// SessionTTL is how long finished sessions stay readable; 0 keeps them.
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if err := cfg.Trial.Validate(); err != nil {
		return nil, fmt.Errorf("web: trial config: %w", err)
	}
	if cfg.Sink == nil {
		cfg.Sink = results.Discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	tmpl, err := template.New("base").ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: map[string]*session{},
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleStatic("static/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /static/app.js", s.handleStatic("static/app.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("GET /{$}", s.handleNewTrial)
	mux.HandleFunc("GET /trials/{id}", s.handleTrial)
	mux.HandleFunc("GET /trials/{id}/events", s.handleTrialEvents)
	mux.HandleFunc("GET /trials/{id}/response", s.handleTrialResponse)
	mux.HandleFunc("POST /trials/{id}/add/open", s.action(actOpenAdd))
	mux.HandleFunc("POST /trials/{id}/add/cancel", s.action(actCancelAdd))
	mux.HandleFunc("POST /trials/{id}/items", s.action(actAdd))
	mux.HandleFunc("POST /trials/{id}/items/{index}/delete", s.action(actDelete))
	mux.HandleFunc("POST /trials/{id}/items/{index}/slider", s.action(actSlider))
	mux.HandleFunc("POST /trials/{id}/items/{index}/scale", s.action(actScale))
	mux.HandleFunc("POST /trials/{id}/drag/{event}", s.action(actDrag))
	mux.HandleFunc("POST /trials/{id}/submit", s.action(actSubmit))
	return withLogging(s.logger, mux)
}

// Serve runs the HTTP server on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go s.sweepLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()
	if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newSession() (*session, error) {
	sess := &session{
		id:      uuid.NewString(),
		srv:     s,
		hub:     newResourceHub(),
		created: s.now(),
	}
	ctrl, err := trial.Start(sess, s.cfg.Trial, trial.WithID(sess.id), trial.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	sess.ctrl = ctrl

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[strings.TrimSpace(id)]
	return sess, ok
}

func (s *Server) sweepLoop(ctx context.Context) {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep drops sessions that finished more than SessionTTL ago. It returns
// how many were removed.
func (s *Server) sweep() int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.SessionTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if at, ok := sess.finishedAt(); ok && at.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("sessions swept", "removed", n, "remaining", len(s.sessions))
	}
	return n
}
