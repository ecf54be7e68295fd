package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
	"rankedlist/internal/trial"
)

const trialSelector = "#trial"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil || len(b) == 0 {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func (s *Server) handleNewTrial(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sess.base(), http.StatusSeeOther)
}

type pageVM struct {
	ID        string
	Fragment  template.HTML
	EventsURL string
}

func (s *Server) handleTrial(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	frag, _, err := s.renderTrial(sess)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	err = s.tmpl.ExecuteTemplate(&buf, "page", pageVM{
		ID:        sess.id,
		Fragment:  template.HTML(frag),
		EventsURL: sess.base() + "/events",
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.Copy(w, &buf)
}

// handleTrialEvents keeps #trial in sync with the controller. Changes that
// do not come from this browser's own POSTs, the timeout in particular,
// reach the page this way.
func (s *Server) handleTrialEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	sse := datastar.NewSSE(w, r)

	ch, cancel := sess.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	s.patchTrial(sse, sess)
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			s.patchTrial(sse, sess)
		}
	}
}

func (s *Server) handleTrialResponse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	resp, done := sess.ctrl.Response()
	if !done {
		http.Error(w, "trial not finished", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// actionFunc applies one participant action. Rejections the participant can
// correct are returned too; the re-rendered view already shows them.
type actionFunc func(c *trial.Controller, r *http.Request, sig signals) error

type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(r.PathValue("id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		// The body has to be read before the SSE response starts.
		sig, err := readSignals(r)
		if err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		err = fn(sess.ctrl, r, sig)
		var bad badRequestError
		if errors.As(err, &bad) {
			http.Error(w, bad.msg, http.StatusBadRequest)
			return
		}
		if err != nil && !errors.Is(err, trial.ErrTrialFinished) {
			s.logger.Debug("action rejected", "trial_id", sess.id, "path", r.URL.Path, "err", err)
		}
		s.patchTrial(datastar.NewSSE(w, r), sess)
	}
}

func (s *Server) patchTrial(sse *datastar.ServerSentEventGenerator, sess *session) {
	html, sigs, err := s.renderTrial(sess)
	if err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector(trialSelector), datastar.WithMode(datastar.ElementPatchModeOuter))
	if sigs != nil {
		_ = sse.MarshalAndPatchSignals(sigs)
	}
}

type doneVM struct {
	Response   model.TrialResponse
	NewURL     string
	SaveFailed bool
}

// renderTrial returns the #trial fragment and the signals that go with it.
func (s *Server) renderTrial(sess *session) (string, map[string]any, error) {
	if resp, done := sess.ctrl.Response(); done {
		var buf bytes.Buffer
		if err := s.tmpl.ExecuteTemplate(&buf, "done", doneVM{Response: resp, NewURL: "/", SaveFailed: sess.saveErr() != nil}); err != nil {
			return "", nil, err
		}
		return buf.String(), nil, nil
	}
	v := sess.ctrl.View()
	html, err := render.HTML(v, sess.base())
	if err != nil {
		return "", nil, err
	}
	return html, render.Signals(v), nil
}

func actOpenAdd(c *trial.Controller, _ *http.Request, _ signals) error { return c.OpenAdd() }

func actCancelAdd(c *trial.Controller, _ *http.Request, _ signals) error { return c.CancelAdd() }

func actAdd(c *trial.Controller, _ *http.Request, sig signals) error {
	return c.Add(sig.str("draft"), sig.live(c))
}

func actDelete(c *trial.Controller, r *http.Request, sig signals) error {
	i, err := pathIndex(r)
	if err != nil {
		return err
	}
	return c.Delete(i, sig.live(c))
}

func actSlider(c *trial.Controller, r *http.Request, sig signals) error {
	i, err := pathIndex(r)
	if err != nil {
		return err
	}
	v, ok := sig.int(render.SliderSignal(i))
	if !ok {
		return badRequest("missing %s", render.SliderSignal(i))
	}
	return c.SetSlider(i, v)
}

func actScale(c *trial.Controller, r *http.Request, sig signals) error {
	i, err := pathIndex(r)
	if err != nil {
		return err
	}
	v, ok := sig.int(render.ScaleSignal(i))
	if !ok {
		return badRequest("missing %s", render.ScaleSignal(i))
	}
	return c.SetScale(i, v)
}

func actDrag(c *trial.Controller, r *http.Request, sig signals) error {
	event := strings.TrimSpace(r.PathValue("event"))
	if event == "end" {
		return c.DragEnd()
	}
	row, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("row")))
	if err != nil {
		return badRequest("invalid row")
	}
	switch event {
	case "start":
		return c.DragStart(row)
	case "enter":
		return c.DragEnter(row)
	case "leave":
		return c.DragLeave(row)
	case "drop":
		return c.Drop(row, sig.live(c))
	default:
		return badRequest("unknown drag event %q", event)
	}
}

func actSubmit(c *trial.Controller, _ *http.Request, sig signals) error {
	return c.Submit(sig.live(c))
}

func pathIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(r.PathValue("index")))
	if err != nil {
		return 0, badRequest("invalid item index")
	}
	return i, nil
}

// signals is the datastar signal object a browser POSTs with each action.
type signals map[string]any

func readSignals(r *http.Request) (signals, error) {
	sig := signals{}
	if r.Body == nil {
		return sig, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return sig, nil
}

func (sig signals) str(key string) string {
	v, _ := sig[key].(string)
	return v
}

func (sig signals) int(key string) (int, bool) {
	switch v := sig[key].(type) {
	case float64:
		return int(math.Round(v)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// live collects the per-row slider and scale signals. A column is left out
// when any of its rows is missing, so the store keeps its own values.
func (sig signals) live(c *trial.Controller) *trial.Live {
	n := len(c.Snapshot().Labels)
	if n == 0 {
		return nil
	}
	var live trial.Live
	live.Sliders = sig.column(n, render.SliderSignal)
	if c.Config().ScalesRequired() {
		live.Scales = sig.column(n, render.ScaleSignal)
	}
	if live.Sliders == nil && live.Scales == nil {
		return nil
	}
	return &live
}

func (sig signals) column(n int, key func(int) string) []int {
	out := make([]int, n)
	for i := range out {
		v, ok := sig.int(key(i))
		if !ok {
			return nil
		}
		out[i] = v
	}
	return out
}
