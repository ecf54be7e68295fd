package web

import (
	"context"
	"sync"
	"time"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
	"rankedlist/internal/trial"
)

// session is one trial served to one browser. It is also the trial's host:
// the display, the timer and the finish callback.
type session struct {
	id      string
	srv     *Server
	hub     *resourceHub
	created time.Time

	ctrl *trial.Controller

	mu        sync.Mutex
	finished  time.Time
	recordErr error
}

var _ trial.Host = (*session)(nil)

func (s *session) Display() trial.Display { return s }

// Show and Clear run with the controller lock held; they only poke the hub.
func (s *session) Show(render.View) { s.hub.broadcast() }

func (s *session) Clear() { s.hub.broadcast() }

func (s *session) SetTimeout(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (s *session) FinishTrial(resp model.TrialResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.cfg.Sink.Record(ctx, resp)

	s.mu.Lock()
	s.finished = s.srv.now()
	s.recordErr = err
	s.mu.Unlock()

	log := s.srv.logger.With("trial_id", resp.TrialID)
	if err != nil {
		log.Error("record response", "err", err)
	} else {
		log.Info("response recorded", "items", len(resp.Response), "timed_out", resp.TimedOut, "rt_ms", resp.RT)
	}
	s.hub.broadcast()
}

func (s *session) finishedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished, !s.finished.IsZero()
}

func (s *session) saveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordErr
}

func (s *session) base() string { return "/trials/" + s.id }
