package trial

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"rankedlist/internal/model"
)

// Store is the ordered item list with its positionally aligned slider and
// scale values. Every mutation keeps the three slices the same length.
type Store struct {
	cfg     model.TrialConfig
	labels  []string
	sliders []int
	scales  []int
}

// Snapshot is a copy of the store contents.
type Snapshot struct {
	Labels  []string
	Sliders []int
	Scales  []int
}

// Live carries slider and scale values read back from the rendered view.
type Live struct {
	Sliders []int
	Scales  []int
}

func NewStore(cfg model.TrialConfig) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) Len() int { return len(s.labels) }

// Contains reports whether label is already listed, ignoring case.
func (s *Store) Contains(label string) bool {
	label = strings.TrimSpace(label)
	for _, l := range s.labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Full reports whether the item cap is reached.
func (s *Store) Full() bool {
	return s.cfg.ItemLimit && len(s.labels) >= s.cfg.MaxItems
}

// Check validates a candidate label without adding it.
func (s *Store) Check(label string) (string, error) {
	label = model.NormalizeLabel(label)
	if utf8.RuneCountInString(label) < model.MinLabelLen {
		return "", fmt.Errorf("%w: %q", ErrLabelTooShort, label)
	}
	if s.Contains(label) {
		return "", fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	if s.Full() {
		return "", fmt.Errorf("%w: max %d", ErrItemLimit, s.cfg.MaxItems)
	}
	return label, nil
}

// Add appends label with the default slider value and an unset scale.
// It returns the normalized label.
func (s *Store) Add(label string) (string, error) {
	label, err := s.Check(label)
	if err != nil {
		return "", err
	}
	s.push(label, s.cfg.DefaultSlider(), model.ScaleUnset)
	return label, nil
}

func (s *Store) push(label string, slider, scale int) {
	s.labels = append(s.labels, label)
	s.sliders = append(s.sliders, slider)
	s.scales = append(s.scales, scale)
}

// Preload fills an empty store from the configured starting list. Missing
// slider or scale values fall back to the defaults.
func (s *Store) Preload(labels []string, sliders, scales []int) error {
	if s.Len() != 0 {
		return fmt.Errorf("trial: preload into non-empty store (%d rows)", s.Len())
	}
	for i, raw := range labels {
		label, err := s.Check(raw)
		if err != nil {
			return fmt.Errorf("starting_list[%d]: %w", i, err)
		}
		slider := s.cfg.DefaultSlider()
		if i < len(sliders) {
			slider = s.cfg.ClampSlider(sliders[i])
		}
		scale := model.ScaleUnset
		if i < len(scales) && s.validScale(scales[i]) {
			scale = scales[i]
		}
		s.push(label, slider, scale)
	}
	return nil
}

// RemoveAt drops the row at i; later rows shift down by one.
func (s *Store) RemoveAt(i int) error {
	if i < 0 || i >= s.Len() {
		return indexError(i, s.Len())
	}
	s.labels = append(s.labels[:i], s.labels[i+1:]...)
	s.sliders = append(s.sliders[:i], s.sliders[i+1:]...)
	s.scales = append(s.scales[:i], s.scales[i+1:]...)
	return nil
}

// Move relocates the row at from so that it ends up at index to. The label,
// slider and scale of the row move together.
func (s *Store) Move(from, to int) error {
	n := s.Len()
	if from < 0 || from >= n {
		return indexError(from, n)
	}
	if to < 0 || to >= n {
		return indexError(to, n)
	}
	if from == to {
		return nil
	}
	moveElem(s.labels, from, to)
	moveElem(s.sliders, from, to)
	moveElem(s.scales, from, to)
	return nil
}

func moveElem[T any](xs []T, from, to int) {
	v := xs[from]
	if from < to {
		copy(xs[from:to], xs[from+1:to+1])
	} else {
		copy(xs[to+1:from+1], xs[to:from])
	}
	xs[to] = v
}

// SetSlider stores v for row i after snapping it to the slider grid.
func (s *Store) SetSlider(i, v int) error {
	if i < 0 || i >= s.Len() {
		return indexError(i, s.Len())
	}
	s.sliders[i] = s.cfg.ClampSlider(v)
	return nil
}

// SetScale stores the scale option for row i; model.ScaleUnset clears it.
func (s *Store) SetScale(i, v int) error {
	if i < 0 || i >= s.Len() {
		return indexError(i, s.Len())
	}
	if !s.validScale(v) {
		return fmt.Errorf("%w: %d", ErrScaleOutOfRange, v)
	}
	s.scales[i] = v
	return nil
}

func (s *Store) validScale(v int) bool {
	return v == model.ScaleUnset || (v >= 0 && v < len(s.cfg.ScaleLabels))
}

// Sync overwrites slider and scale values with the ones read back from the
// live view. A view with a different row count is stale and rejected.
// Either slice may be nil to leave that column alone.
func (s *Store) Sync(live Live) error {
	n := s.Len()
	if live.Sliders != nil && len(live.Sliders) != n {
		return fmt.Errorf("%w: %d sliders for %d rows", ErrStaleView, len(live.Sliders), n)
	}
	if live.Scales != nil && len(live.Scales) != n {
		return fmt.Errorf("%w: %d scales for %d rows", ErrStaleView, len(live.Scales), n)
	}
	for i, v := range live.Scales {
		if !s.validScale(v) {
			return fmt.Errorf("%w: row %d value %d", ErrScaleOutOfRange, i, v)
		}
	}
	for i, v := range live.Sliders {
		s.sliders[i] = s.cfg.ClampSlider(v)
	}
	copy(s.scales, live.Scales)
	return nil
}

// FirstBlankScale returns the first row without a scale selection, or -1.
func (s *Store) FirstBlankScale() int {
	for i, v := range s.scales {
		if v == model.ScaleUnset {
			return i
		}
	}
	return -1
}

func (s *Store) Label(i int) string {
	if i < 0 || i >= s.Len() {
		return ""
	}
	return s.labels[i]
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Labels:  append([]string{}, s.labels...),
		Sliders: append([]int{}, s.sliders...),
		Scales:  append([]int{}, s.scales...),
	}
}
