package trial

import (
	"errors"
	"fmt"
)

var (
	ErrLabelTooShort   = errors.New("trial: item label too short")
	ErrDuplicateLabel  = errors.New("trial: item already in list")
	ErrItemLimit       = errors.New("trial: item limit reached")
	ErrIndexOutOfRange = errors.New("trial: row index out of range")
	ErrScaleOutOfRange = errors.New("trial: scale option out of range")
	ErrStaleView       = errors.New("trial: live values do not match the list")
	ErrDragDisabled    = errors.New("trial: list is not draggable")
	ErrNotDragging     = errors.New("trial: no drag in progress")
	ErrAddClosed       = errors.New("trial: add box is not open")
	ErrTrialFinished   = errors.New("trial: already finished")
	ErrTooFewItems     = errors.New("trial: not enough items")
	ErrBlankScale      = errors.New("trial: scale option missing")
	ErrSubmitDisabled  = errors.New("trial: submit is disabled until an item is added")
)

// BlankScaleError reports the first row that lacks a scale selection at submit.
type BlankScaleError struct {
	Row   int
	Label string
}

func (e BlankScaleError) Error() string {
	return fmt.Sprintf("trial: row %d (%s) has no scale selection", e.Row, e.Label)
}

func (e BlankScaleError) Unwrap() error { return ErrBlankScale }

func indexError(i, n int) error {
	return fmt.Errorf("%w: %d (rows=%d)", ErrIndexOutOfRange, i, n)
}
