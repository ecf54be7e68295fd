package trial

import "testing"

func TestDrag_PhasesAndMarks(t *testing.T) {
	var d Drag
	d.End()
	if d.Phase() != DragIdle || d.Source() != -1 || d.Over() != -1 {
		t.Fatalf("expected idle drag, got phase=%v source=%d over=%d", d.Phase(), d.Source(), d.Over())
	}
	d.Enter(1)
	if d.Phase() != DragIdle {
		t.Fatalf("enter without a drag must be ignored, got %v", d.Phase())
	}

	d.Start(0)
	if d.Phase() != DragDragging {
		t.Fatalf("expected dragging, got %v", d.Phase())
	}
	if !d.Current(0) || d.Hint(0) {
		t.Fatalf("source row should be current and not a drop hint")
	}
	if !d.Hint(1) || !d.Hint(2) {
		t.Fatalf("every other row should be a drop hint")
	}

	d.Enter(2)
	if d.Phase() != DragHover || !d.Active(2) || d.Active(1) {
		t.Fatalf("expected row 2 active, got phase=%v over=%d", d.Phase(), d.Over())
	}
	d.Leave(1)
	if !d.Active(2) {
		t.Fatalf("leaving a different row must keep row 2 active")
	}
	d.Leave(2)
	if d.Phase() != DragDragging || d.Over() != -1 {
		t.Fatalf("expected hover cleared, got phase=%v over=%d", d.Phase(), d.Over())
	}
}

func TestDragDrop_ReportsMove(t *testing.T) {
	tests := []struct {
		name   string
		source int
		target int
		ok     bool
	}{
		{name: "down", source: 0, target: 2, ok: true},
		{name: "up", source: 3, target: 1, ok: true},
		{name: "self", source: 1, target: 1, ok: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d Drag
			d.Start(tt.source)
			d.Enter(tt.target)
			from, to, ok := d.Drop(tt.target)
			if ok != tt.ok {
				t.Fatalf("ok: got %v want %v", ok, tt.ok)
			}
			if ok && (from != tt.source || to != tt.target) {
				t.Fatalf("move: got %d->%d want %d->%d", from, to, tt.source, tt.target)
			}
			if d.Phase() != DragIdle || d.Hint(0) || d.Active(tt.target) {
				t.Fatalf("drop must clear every mark")
			}
		})
	}

	var idle Drag
	if _, _, ok := idle.Drop(0); ok {
		t.Fatalf("drop without a drag must not move")
	}
}
