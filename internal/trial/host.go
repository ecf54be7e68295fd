package trial

import (
	"time"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
)

// Display is the region a trial draws into. Show always receives a complete
// view that replaces whatever was shown before.
type Display interface {
	Show(render.View)
	Clear()
}

// Host is the experiment runner a trial is mounted in.
type Host interface {
	Display() Display
	// SetTimeout arranges for fn to run once after d. The returned func
	// cancels it; calling it after fn ran is harmless.
	SetTimeout(d time.Duration, fn func()) (cancel func())
	// FinishTrial receives the response exactly once, when the trial ends.
	FinishTrial(model.TrialResponse)
}
