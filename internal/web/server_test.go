package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"rankedlist/internal/model"
	"rankedlist/internal/results"
)

type memSink struct {
	mu   sync.Mutex
	recs []model.TrialResponse
	fail error
}

func (m *memSink) Record(_ context.Context, r model.TrialResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.recs = append(m.recs, r)
	return nil
}

func (m *memSink) List(context.Context, int) ([]results.Record, error) { return nil, nil }
func (m *memSink) Close() error                                        { return nil }

func (m *memSink) all() []model.TrialResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TrialResponse{}, m.recs...)
}

func newTestServer(t *testing.T, cfg model.TrialConfig) (*Server, *memSink) {
	t.Helper()
	sink := &memSink{}
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Trial: cfg, Sink: sink})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, sink
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(h, http.MethodGet, "/", "")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("GET /: expected 303, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/trials/") {
		t.Fatalf("unexpected redirect %q", loc)
	}
	return loc
}

func mustContain(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Fatalf("expected %q in:\n%s", w, body)
		}
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, model.DefaultTrialConfig())
	rec := do(srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}

func TestTrialFlow_AddScaleSubmit(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.ScaleQuestions = true
	cfg.ScaleLabels = []string{"No", "Maybe", "Yes"}
	srv, sink := newTestServer(t, cfg)
	h := srv.Handler()
	base := startSession(t, h)

	page := do(h, http.MethodGet, base, "")
	if page.Code != http.StatusOK {
		t.Fatalf("page: %d", page.Code)
	}
	mustContain(t, page.Body.String(), `id="trial"`, `data-init=`, base+"/events", "Continue")

	rec := do(h, http.MethodPost, base+"/add/open", "")
	mustContain(t, rec.Body.String(), "datastar-patch-elements", "add-input", "add-confirm")

	rec = do(h, http.MethodPost, base+"/items", `{"draft":"ab"}`)
	mustContain(t, rec.Body.String(), cfg.ShortItemError)

	rec = do(h, http.MethodPost, base+"/items", `{"draft":"apple"}`)
	mustContain(t, rec.Body.String(), "APPLE", "datastar-patch-signals")

	do(h, http.MethodPost, base+"/add/open", "")
	do(h, http.MethodPost, base+"/items", `{"draft":"pear","slider0":4,"scale0":"-1"}`)

	rec = do(h, http.MethodPost, base+"/submit", `{"slider0":4,"slider1":10,"scale0":"2","scale1":"-1"}`)
	mustContain(t, rec.Body.String(), cfg.BlankScaleError)
	if n := len(sink.all()); n != 0 {
		t.Fatalf("nothing should be recorded yet, got %d", n)
	}
	if rec := do(h, http.MethodGet, base+"/response", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("response before finish: expected 404, got %d", rec.Code)
	}

	rec = do(h, http.MethodPost, base+"/items/1/scale", `{"scale1":"0"}`)
	if strings.Contains(rec.Body.String(), cfg.BlankScaleError) {
		t.Fatalf("error should clear after a scale change")
	}

	rec = do(h, http.MethodPost, base+"/submit", `{"slider0":4,"slider1":10,"scale0":"2","scale1":"0"}`)
	mustContain(t, rec.Body.String(), "Thank you", "2 items")

	got := sink.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 recorded response, got %d", len(got))
	}
	resp := got[0]
	if strings.Join(resp.Response, ",") != "APPLE,PEAR" || resp.SliderValues[0] != 4 || resp.ScaleValues[0] != 2 || resp.ScaleValues[1] != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = do(h, http.MethodGet, base+"/response", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("response: %d", rec.Code)
	}
	var decoded model.TrialResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.TrialID != strings.TrimPrefix(base, "/trials/") {
		t.Fatalf("trial id %q does not match session %q", decoded.TrialID, base)
	}

	rec = do(h, http.MethodPost, base+"/add/open", "")
	mustContain(t, rec.Body.String(), "Start another trial")
}

func TestSubmit_ReportsSaveFailure(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.StartEmpty = false
	cfg.StartingList = []string{"kiwi"}
	srv, sink := newTestServer(t, cfg)
	sink.fail = errors.New("disk full")
	h := srv.Handler()
	base := startSession(t, h)

	rec := do(h, http.MethodPost, base+"/submit", `{"slider0":50}`)
	mustContain(t, rec.Body.String(), "Thank you", "could not be saved")
	if strings.Contains(rec.Body.String(), "was recorded") {
		t.Fatalf("a failed save must not claim the list was recorded")
	}
}

func TestTrialFlow_DragReorder(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.StartEmpty = false
	cfg.StartingList = []string{"aaa", "bbb", "ccc"}
	srv, sink := newTestServer(t, cfg)
	h := srv.Handler()
	base := startSession(t, h)

	rec := do(h, http.MethodPost, base+"/drag/start?row=0", "")
	mustContain(t, rec.Body.String(), "item current")
	do(h, http.MethodPost, base+"/drag/enter?row=2", "")
	do(h, http.MethodPost, base+"/drag/drop?row=2", `{"slider0":1,"slider1":2,"slider2":3}`)
	do(h, http.MethodPost, base+"/submit", "")

	got := sink.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 response, got %d", len(got))
	}
	if strings.Join(got[0].Response, ",") != "BBB,CCC,AAA" {
		t.Fatalf("unexpected order %v", got[0].Response)
	}
	if got[0].SliderValues[2] != 1 {
		t.Fatalf("slider should follow its item, got %v", got[0].SliderValues)
	}
}

func TestActions_BadRequests(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.StartEmpty = false
	cfg.StartingList = []string{"aaa"}
	srv, _ := newTestServer(t, cfg)
	h := srv.Handler()
	base := startSession(t, h)

	tests := []struct {
		name, path, body string
		code             int
	}{
		{"unknown trial", "/trials/nope/submit", "", http.StatusNotFound},
		{"bad index", base + "/items/x/delete", "", http.StatusBadRequest},
		{"bad json", base + "/items", "{", http.StatusBadRequest},
		{"missing slider", base + "/items/0/slider", `{}`, http.StatusBadRequest},
		{"bad drag event", base + "/drag/fling?row=0", "", http.StatusBadRequest},
		{"bad drag row", base + "/drag/start?row=", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(h, http.MethodPost, tt.path, tt.body)
		if rec.Code != tt.code {
			t.Fatalf("%s: expected %d, got %d (%s)", tt.name, tt.code, rec.Code, rec.Body.String())
		}
	}
}

func TestTimeout_RecordsPartialResponse(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.TrialDuration = 30
	srv, sink := newTestServer(t, cfg)
	h := srv.Handler()
	base := startSession(t, h)

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timeout never finished the trial")
		}
		time.Sleep(5 * time.Millisecond)
	}
	resp := sink.all()[0]
	if !resp.TimedOut || len(resp.Response) != 0 {
		t.Fatalf("expected an empty timed-out response, got %+v", resp)
	}
	page := do(h, http.MethodGet, base, "")
	mustContain(t, page.Body.String(), "Time is up.")
}

func TestEvents_StreamsCurrentTrial(t *testing.T) {
	srv, _ := newTestServer(t, model.DefaultTrialConfig())
	h := srv.Handler()
	base := startSession(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, base+"/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rec, req)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	mustContain(t, rec.Body.String(), "datastar-patch-elements", `id="trial"`)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestSweep_DropsFinishedSessions(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.StartEmpty = false
	cfg.StartingList = []string{"aaa"}
	srv, _ := newTestServer(t, cfg)
	srv.cfg.SessionTTL = time.Minute
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }
	h := srv.Handler()

	finished := startSession(t, h)
	open := startSession(t, h)
	do(h, http.MethodPost, finished+"/submit", "")

	if n := srv.sweep(); n != 0 {
		t.Fatalf("nothing is old enough yet, swept %d", n)
	}
	now = now.Add(2 * time.Minute)
	if n := srv.sweep(); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if rec := do(h, http.MethodGet, finished, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("swept session should be gone, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, open, ""); rec.Code != http.StatusOK {
		t.Fatalf("running session must stay, got %d", rec.Code)
	}
}
