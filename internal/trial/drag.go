package trial

// DragPhase is the state of the drag-reorder interaction.
type DragPhase int

const (
	DragIdle DragPhase = iota
	// DragDragging: a row is picked up; every other row is a drop target.
	DragDragging
	// DragHover: as DragDragging, with the pointer over a row.
	DragHover
)

func (p DragPhase) String() string {
	switch p {
	case DragDragging:
		return "dragging"
	case DragHover:
		return "hover"
	default:
		return "idle"
	}
}

// Drag tracks one drag gesture over the rendered rows. It never touches the
// store; Drop reports the move for the caller to apply.
type Drag struct {
	phase  DragPhase
	source int
	over   int
}

func (d *Drag) Phase() DragPhase { return d.phase }

// Source is the picked-up row, or -1 when idle.
func (d *Drag) Source() int {
	if d.phase == DragIdle {
		return -1
	}
	return d.source
}

// Over is the row under the pointer, or -1.
func (d *Drag) Over() int {
	if d.phase != DragHover {
		return -1
	}
	return d.over
}

func (d *Drag) Start(row int) {
	d.phase = DragDragging
	d.source = row
	d.over = -1
}

// Enter marks row as hovered. The source row can be hovered too.
func (d *Drag) Enter(row int) {
	if d.phase == DragIdle {
		return
	}
	d.phase = DragHover
	d.over = row
}

// Leave clears the hover mark if row is the hovered row.
func (d *Drag) Leave(row int) {
	if d.phase != DragHover || d.over != row {
		return
	}
	d.phase = DragDragging
	d.over = -1
}

// Drop ends the gesture over target. When target differs from the source it
// returns the store move: a row dragged downwards lands right after target,
// a row dragged upwards lands right before it. Both end at index target.
func (d *Drag) Drop(target int) (from, to int, ok bool) {
	if d.phase == DragIdle {
		return 0, 0, false
	}
	from = d.source
	d.End()
	if target == from {
		return 0, 0, false
	}
	return from, target, true
}

// End clears every drag and hover mark.
func (d *Drag) End() {
	d.phase = DragIdle
	d.source = -1
	d.over = -1
}

// Hint reports whether row should be marked as a valid drop target.
func (d *Drag) Hint(row int) bool {
	return d.phase != DragIdle && row != d.source
}

func (d *Drag) Current(row int) bool {
	return d.phase != DragIdle && row == d.source
}

func (d *Drag) Active(row int) bool {
	return d.phase == DragHover && row == d.over
}
