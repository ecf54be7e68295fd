package trial

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
)

// State is the lifecycle phase of a trial.
type State int

const (
	StateInitializing State = iota
	StateAwaitingInput
	StateValidating
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateValidating:
		return "validating"
	case StateFinalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller runs one trial. Every participant action goes through one of
// its methods; calls are serialized, and each structural change re-renders
// the whole list into the host display.
type Controller struct {
	mu sync.Mutex

	id      string
	cfg     model.TrialConfig
	host    Host
	display Display
	store   *Store
	drag    Drag
	state   State

	addOpen bool
	draft   string
	addMsg  string

	errMsg   string
	errCause error

	submitEnabled bool
	// pending is the last accepted submission when the response does not
	// end the trial. It only drives the accepted mark; the timeout reads
	// the store.
	pending *model.TrialResponse

	started       time.Time
	now           func() time.Time
	cancelTimeout func()
	view          render.View
	response      model.TrialResponse

	logger *slog.Logger
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// Start validates cfg, mounts the trial into the host display and arms the
// trial timeout.
func Start(host Host, cfg model.TrialConfig, opts ...Option) (*Controller, error) {
	if host == nil {
		return nil, errors.New("trial: nil host")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trial: invalid config: %w", err)
	}
	c := &Controller{
		cfg:     cfg,
		host:    host,
		display: host.Display(),
		store:   NewStore(cfg),
		now:     time.Now,
		state:   StateInitializing,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	c.logger = c.logger.With("trial_id", c.id)
	c.drag.End()

	if !cfg.StartEmpty {
		if err := c.store.Preload(cfg.StartingList, cfg.StartingSliders, cfg.StartingScales); err != nil {
			return nil, err
		}
	}
	c.submitEnabled = !cfg.StartEmpty || c.store.Len() > 0

	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = c.now()
	c.state = StateAwaitingInput
	c.renderLocked()
	if cfg.TrialDuration > 0 {
		d := time.Duration(cfg.TrialDuration) * time.Millisecond
		c.cancelTimeout = host.SetTimeout(d, func() { _ = c.Timeout() })
	}
	c.logger.Info("trial started", "items", c.store.Len(), "duration_ms", cfg.TrialDuration)
	return c, nil
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Config() model.TrialConfig { return c.cfg }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns the most recently rendered view.
func (c *Controller) View() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot()
}

// Response returns the final response once the trial has finished.
func (c *Controller) Response() (model.TrialResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.response, c.state == StateFinalizing
}

// Elapsed is the time since the trial started.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.started)
}

func (c *Controller) OpenAdd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	if c.store.Full() {
		return fmt.Errorf("%w: max %d", ErrItemLimit, c.cfg.MaxItems)
	}
	c.addOpen = true
	c.renderLocked()
	return nil
}

func (c *Controller) CancelAdd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	c.addOpen = false
	c.draft = ""
	c.addMsg = ""
	c.renderLocked()
	return nil
}

// SetDraft records the text typed so far. It does not re-render.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	c.draft = text
	return nil
}

// Add validates text and appends it. live, when non-nil, carries the slider
// and scale values currently shown so edits made since the last render are
// kept. A rejected add leaves the box open with the reason shown.
func (c *Controller) Add(text string, live *Live) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	if !c.addOpen {
		return ErrAddClosed
	}
	if err := c.syncLocked(live); err != nil {
		return err
	}
	label, err := c.store.Add(text)
	if err != nil {
		c.draft = text
		c.addMsg = c.addMessage(err)
		c.renderLocked()
		c.logger.Debug("add rejected", "text", text, "err", err)
		return err
	}
	c.addOpen = false
	c.draft = ""
	c.addMsg = ""
	c.submitEnabled = true
	if errors.Is(c.errCause, ErrTooFewItems) && c.store.Len() >= c.cfg.ItemMinimum {
		c.clearErrorLocked()
	}
	c.renderLocked()
	c.logger.Debug("item added", "label", label, "items", c.store.Len())
	return nil
}

func (c *Controller) addMessage(err error) string {
	switch {
	case errors.Is(err, ErrLabelTooShort):
		return c.cfg.ShortItemError
	case errors.Is(err, ErrDuplicateLabel):
		return c.cfg.DuplicateItemError
	case errors.Is(err, ErrItemLimit):
		return c.cfg.ItemLimitError
	}
	return err.Error()
}

// Delete removes row i together with its slider and scale values.
func (c *Controller) Delete(i int, live *Live) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	if err := c.syncLocked(live); err != nil {
		return err
	}
	label := c.store.Label(i)
	if err := c.store.RemoveAt(i); err != nil {
		return err
	}
	c.drag.End()
	c.renderLocked()
	c.logger.Debug("item deleted", "label", label, "items", c.store.Len())
	return nil
}

func (c *Controller) SetSlider(i, v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	if err := c.store.SetSlider(i, v); err != nil {
		return err
	}
	c.renderLocked()
	return nil
}

// SetScale selects option v for row i. Any scale change clears a standing
// blank-scale error.
func (c *Controller) SetScale(i, v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	if err := c.store.SetScale(i, v); err != nil {
		return err
	}
	if errors.Is(c.errCause, ErrBlankScale) {
		c.clearErrorLocked()
	}
	c.renderLocked()
	return nil
}

func (c *Controller) DragStart(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dragAllowedLocked(); err != nil {
		return err
	}
	if i < 0 || i >= c.store.Len() {
		return indexError(i, c.store.Len())
	}
	c.drag.Start(i)
	c.renderLocked()
	return nil
}

func (c *Controller) DragEnter(i int) error {
	return c.hover(i, c.drag.Enter)
}

func (c *Controller) DragLeave(i int) error {
	return c.hover(i, c.drag.Leave)
}

func (c *Controller) hover(i int, fn func(int)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dragAllowedLocked(); err != nil {
		return err
	}
	if c.drag.Phase() == DragIdle {
		return ErrNotDragging
	}
	if i < 0 || i >= c.store.Len() {
		return indexError(i, c.store.Len())
	}
	fn(i)
	c.renderLocked()
	return nil
}

// Drop ends the drag over row target and moves the dragged row, with its
// slider and scale values, so that it ends up at index target.
func (c *Controller) Drop(target int, live *Live) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dragAllowedLocked(); err != nil {
		return err
	}
	if c.drag.Phase() == DragIdle {
		return ErrNotDragging
	}
	if target < 0 || target >= c.store.Len() {
		c.drag.End()
		c.renderLocked()
		return indexError(target, c.store.Len())
	}
	if err := c.syncLocked(live); err != nil {
		c.drag.End()
		c.renderLocked()
		return err
	}
	from, to, ok := c.drag.Drop(target)
	if ok {
		if err := c.store.Move(from, to); err != nil {
			c.renderLocked()
			return err
		}
		c.logger.Debug("item moved", "from", from, "to", to)
	}
	c.renderLocked()
	return nil
}

// DragEnd abandons the drag without moving anything.
func (c *Controller) DragEnd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.activeLocked(); err != nil {
		return err
	}
	c.drag.End()
	c.renderLocked()
	return nil
}

func (c *Controller) dragAllowedLocked() error {
	if err := c.activeLocked(); err != nil {
		return err
	}
	if !c.cfg.DraggableList {
		return ErrDragDisabled
	}
	return nil
}

// Submit validates the list and, when it passes, finishes the trial. With
// response_ends_trial off the accepted response is held until the timeout.
func (c *Controller) Submit(live *Live) error {
	c.mu.Lock()
	resp, done, err := c.submitLocked(live)
	c.mu.Unlock()
	if done {
		c.host.FinishTrial(resp)
	}
	return err
}

func (c *Controller) submitLocked(live *Live) (model.TrialResponse, bool, error) {
	if err := c.activeLocked(); err != nil {
		return model.TrialResponse{}, false, err
	}
	if !c.submitEnabled {
		return model.TrialResponse{}, false, ErrSubmitDisabled
	}
	c.state = StateValidating
	defer func() {
		if c.state == StateValidating {
			c.state = StateAwaitingInput
		}
	}()
	if err := c.syncLocked(live); err != nil {
		return model.TrialResponse{}, false, err
	}
	c.drag.End()
	if n := c.store.Len(); n < c.cfg.ItemMinimum {
		err := fmt.Errorf("%w: have %d, need %d", ErrTooFewItems, n, c.cfg.ItemMinimum)
		c.setErrorLocked(c.cfg.ItemMinimumMessage(), err)
		c.renderLocked()
		return model.TrialResponse{}, false, err
	}
	if c.cfg.ScalesRequired() {
		if row := c.store.FirstBlankScale(); row >= 0 {
			err := BlankScaleError{Row: row, Label: c.store.Label(row)}
			c.setErrorLocked(c.cfg.BlankScaleError, err)
			c.renderLocked()
			return model.TrialResponse{}, false, err
		}
	}
	c.clearErrorLocked()
	resp := c.responseLocked(false)
	if !c.cfg.ResponseEndsTrial {
		c.pending = &resp
		c.renderLocked()
		c.logger.Info("response accepted", "items", len(resp.Response), "rt_ms", resp.RT)
		return model.TrialResponse{}, false, nil
	}
	c.finalizeLocked(resp)
	return resp, true, nil
}

// Timeout forces the trial to finish with whatever the store holds, even
// when an earlier submit was accepted. An open add box and its draft are
// discarded.
func (c *Controller) Timeout() error {
	c.mu.Lock()
	if err := c.activeLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	// Edits made after an accepted submit still count: the store is what
	// the participant left behind.
	resp := c.responseLocked(true)
	c.finalizeLocked(resp)
	c.mu.Unlock()
	c.host.FinishTrial(resp)
	return nil
}

// Pending reports the accepted response waiting for the timeout, if any.
func (c *Controller) Pending() (model.TrialResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return model.TrialResponse{}, false
	}
	return *c.pending, true
}

func (c *Controller) finalizeLocked(resp model.TrialResponse) {
	c.state = StateFinalizing
	if c.cancelTimeout != nil {
		c.cancelTimeout()
		c.cancelTimeout = nil
	}
	c.addOpen = false
	c.draft = ""
	c.drag.End()
	c.response = resp
	c.view = render.View{}
	c.display.Clear()
	c.logger.Info("trial finished", "timed_out", resp.TimedOut, "items", len(resp.Response), "rt_ms", resp.RT)
}

func (c *Controller) responseLocked(timedOut bool) model.TrialResponse {
	end := c.now()
	snap := c.store.Snapshot()
	resp := model.TrialResponse{
		TrialID:      c.id,
		RT:           end.Sub(c.started).Milliseconds(),
		TimedOut:     timedOut,
		Started:      c.started,
		Ended:        end,
		Response:     snap.Labels,
		SliderValues: snap.Sliders,
		ScaleValues:  snap.Scales,
	}
	if !c.cfg.StartEmpty {
		resp.StartingList = append([]string{}, c.cfg.StartingList...)
		resp.StartingSliders = append([]int{}, c.cfg.StartingSliders...)
		resp.StartingScales = append([]int{}, c.cfg.StartingScales...)
	}
	return resp
}

func (c *Controller) activeLocked() error {
	if c.state == StateFinalizing {
		return ErrTrialFinished
	}
	return nil
}

// syncLocked pulls live slider and scale values into the store.
func (c *Controller) syncLocked(live *Live) error {
	if live == nil {
		return nil
	}
	before := c.store.Snapshot().Scales
	if err := c.store.Sync(*live); err != nil {
		return err
	}
	if errors.Is(c.errCause, ErrBlankScale) && !slices.Equal(before, c.store.scales) {
		c.clearErrorLocked()
	}
	return nil
}

func (c *Controller) setErrorLocked(msg string, cause error) {
	c.errMsg = msg
	c.errCause = cause
}

func (c *Controller) clearErrorLocked() {
	c.errMsg = ""
	c.errCause = nil
}

func (c *Controller) renderLocked() {
	snap := c.store.Snapshot()
	marks := render.NoDrag
	if c.drag.Phase() != DragIdle {
		marks = render.DragMarks{Source: c.drag.Source(), Over: c.drag.Over()}
	}
	c.view = render.Build(render.Input{
		Accepted:      c.pending != nil,
		Config:        c.cfg,
		Labels:        snap.Labels,
		Sliders:       snap.Sliders,
		Scales:        snap.Scales,
		AddOpen:       c.addOpen,
		Draft:         c.draft,
		AddMessage:    c.addMsg,
		Error:         c.errMsg,
		SubmitEnabled: c.submitEnabled,
		Drag:          marks,
	})
	c.display.Show(c.view)
}
