// Package render turns trial state into a view tree. Build is pure: the same
// input always yields an equal View, and a View is always rebuilt whole.
package render

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"rankedlist/internal/model"
)

var (
	promptPolicy = bluemonday.UGCPolicy()
	textPolicy   = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()
)

// SanitizePrompt turns the configured prompt into HTML that is safe to embed.
// Markdown prompts are converted first; raw HTML inside them is dropped.
func SanitizePrompt(cfg model.TrialConfig) string {
	src := cfg.Prompt
	if cfg.MarkdownPrompt() {
		src = markdownHTML(src)
	}
	return strings.TrimSpace(promptPolicy.Sanitize(src))
}

// PlainText strips all markup, for hosts that cannot show HTML.
func PlainText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// Input is everything the renderer looks at.
type Input struct {
	Config  model.TrialConfig
	Labels  []string
	Sliders []int
	Scales  []int

	AddOpen    bool
	Draft      string
	AddMessage string

	// Error is the standing submit error, if any.
	Error         string
	SubmitEnabled bool
	// Accepted is set once a submission was taken while the trial runs on.
	Accepted bool

	Drag DragMarks
}

// DragMarks describes the drag gesture in row indices; -1 means none.
type DragMarks struct {
	Source int
	Over   int
}

// NoDrag is the DragMarks value of an idle list.
var NoDrag = DragMarks{Source: -1, Over: -1}

type View struct {
	// Prompt is sanitized HTML.
	Prompt   string
	Accepted bool
	Rows     []Row
	Add      AddBox
	Submit   Submit
	Error    string
}

type Row struct {
	Index int
	Label string

	Scale  *Scale
	Slider Slider

	Draggable bool
	Current   bool
	Hint      bool
	Active    bool
}

type Scale struct {
	Prompt  string
	Options []ScaleOption
	// Selected is the checked option, or model.ScaleUnset.
	Selected int
}

type ScaleOption struct {
	Value    int
	Label    string
	Checked  bool
	WidthPct float64
}

type Slider struct {
	Min, Max, Step int
	Value          int
	Prompt         string
	WidthPx        int
	Ticks          []Tick
}

// Tick is a slider label placed at an equidistant offset along the track.
type Tick struct {
	Label    string
	LeftPct  float64
	WidthPct float64
}

type AddBox struct {
	Open        bool
	Placeholder string
	Draft       string
	Message     string
	// Disabled is set once the item cap is reached.
	Disabled bool
}

type Submit struct {
	Label    string
	Disabled bool
}

// Build renders the full list for in.
func Build(in Input) View {
	cfg := in.Config
	v := View{
		Prompt:   SanitizePrompt(cfg),
		Accepted: in.Accepted,
		Rows:     make([]Row, 0, len(in.Labels)),
		Add: AddBox{
			Open:        in.AddOpen,
			Placeholder: cfg.AddButtonPrompt,
			Draft:       in.Draft,
			Message:     in.AddMessage,
			Disabled:    cfg.ItemLimit && len(in.Labels) >= cfg.MaxItems,
		},
		Submit: Submit{Label: cfg.ButtonLabel, Disabled: !in.SubmitEnabled},
		Error:  in.Error,
	}
	ticks := sliderTicks(cfg.SliderLabels)
	for i, label := range in.Labels {
		row := Row{
			Index:     i,
			Label:     label,
			Draggable: cfg.DraggableList,
			Slider: Slider{
				Min:     cfg.Min,
				Max:     cfg.Max,
				Step:    cfg.Step,
				Value:   valueAt(in.Sliders, i, cfg.DefaultSlider()),
				Prompt:  cfg.SliderPrompt,
				WidthPx: cfg.SliderWidthPx(),
				Ticks:   ticks,
			},
		}
		if cfg.ScalesRequired() {
			row.Scale = buildScale(cfg, valueAt(in.Scales, i, model.ScaleUnset))
		}
		if cfg.DraggableList && in.Drag.Source >= 0 {
			row.Current = i == in.Drag.Source
			row.Hint = !row.Current
			row.Active = i == in.Drag.Over
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func valueAt(xs []int, i, def int) int {
	if i < len(xs) {
		return xs[i]
	}
	return def
}

func buildScale(cfg model.TrialConfig, selected int) *Scale {
	n := len(cfg.ScaleLabels)
	sc := &Scale{Prompt: cfg.ScalePrompt, Selected: selected, Options: make([]ScaleOption, 0, n)}
	w := 100 / float64(n)
	for j, l := range cfg.ScaleLabels {
		sc.Options = append(sc.Options, ScaleOption{Value: j, Label: l, Checked: j == selected, WidthPct: w})
	}
	if selected < 0 || selected >= n {
		sc.Selected = model.ScaleUnset
	}
	return sc
}

// sliderTicks spreads labels evenly along the track; each label is centred
// on its position.
func sliderTicks(labels []string) []Tick {
	switch len(labels) {
	case 0:
		return nil
	case 1:
		return []Tick{{Label: labels[0], LeftPct: 0, WidthPct: 100}}
	}
	w := 100 / float64(len(labels)-1)
	ticks := make([]Tick, 0, len(labels))
	for j, l := range labels {
		ticks = append(ticks, Tick{Label: l, LeftPct: float64(j)*w - w/2, WidthPct: w})
	}
	return ticks
}
