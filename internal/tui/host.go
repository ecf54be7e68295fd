package tui

import (
	"time"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
	"rankedlist/internal/trial"
)

// termHost hosts the trial inside the Bubble Tea program. Every call reaches
// it from Update (or before the program starts), so it needs no locking. The
// timeout is not a goroutine: Init schedules it as a tea.Tick and Update
// fires it, which keeps the controller on the program's goroutine.
type termHost struct {
	view   render.View
	shown  bool
	timer  *pendingTimer
	seq    int
	result *model.TrialResponse
}

type pendingTimer struct {
	id       int
	d        time.Duration
	fn       func()
	canceled bool
}

var _ trial.Host = (*termHost)(nil)

func (h *termHost) Display() trial.Display { return h }

func (h *termHost) Show(v render.View) {
	h.view = v
	h.shown = true
}

func (h *termHost) Clear() {
	h.view = render.View{}
	h.shown = false
}

func (h *termHost) SetTimeout(d time.Duration, fn func()) func() {
	h.seq++
	t := &pendingTimer{id: h.seq, d: d, fn: fn}
	h.timer = t
	return func() { t.canceled = true }
}

func (h *termHost) FinishTrial(resp model.TrialResponse) {
	h.result = &resp
}

// fire runs the timer with the given id unless it was canceled or replaced.
func (h *termHost) fire(id int) bool {
	t := h.timer
	if t == nil || t.id != id || t.canceled {
		return false
	}
	t.canceled = true
	t.fn()
	return true
}
