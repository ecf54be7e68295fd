package render

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"rankedlist/internal/model"
)

func sampleInput() Input {
	cfg := model.DefaultTrialConfig()
	cfg.Prompt = `<p>Rank <b>fruit</b></p><script>alert(1)</script>`
	cfg.ScaleQuestions = true
	cfg.ScaleLabels = []string{"No", "Maybe", "Yes"}
	cfg.SliderLabels = []string{"low", "mid", "high"}
	return Input{
		Config:        cfg,
		Labels:        []string{"APPLE", "PEAR"},
		Sliders:       []int{3, 7},
		Scales:        []int{2, model.ScaleUnset},
		SubmitEnabled: true,
		Drag:          NoDrag,
	}
}

func TestBuild_Idempotent(t *testing.T) {
	in := sampleInput()
	a, b := Build(in), Build(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Build is not idempotent:\n%+v\n%+v", a, b)
	}
	ha, err := HTML(a, "/trials/x")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	hb, _ := HTML(b, "/trials/x")
	if ha != hb {
		t.Fatalf("HTML is not idempotent")
	}
}

func TestBuild_RowsCarryValues(t *testing.T) {
	v := Build(sampleInput())
	if len(v.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(v.Rows))
	}
	r0, r1 := v.Rows[0], v.Rows[1]
	if r0.Label != "APPLE" || r0.Slider.Value != 3 || r1.Slider.Value != 7 {
		t.Fatalf("unexpected rows: %+v", v.Rows)
	}
	if r0.Scale == nil || !r0.Scale.Options[2].Checked || r0.Scale.Options[0].Checked {
		t.Fatalf("row 0 should have option 2 checked: %+v", r0.Scale)
	}
	for _, o := range r1.Scale.Options {
		if o.Checked {
			t.Fatalf("row 1 has no selection, got %+v", o)
		}
	}
	if r1.Scale.Selected != model.ScaleUnset {
		t.Fatalf("expected unset selection, got %d", r1.Scale.Selected)
	}
	if r0.Slider.WidthPx != 100 {
		t.Fatalf("slider width should fall back to canvas_size[1], got %d", r0.Slider.WidthPx)
	}
}

func TestBuild_NoScaleWithoutScaleQuestions(t *testing.T) {
	in := sampleInput()
	in.Config.ScaleQuestions = false
	for _, r := range Build(in).Rows {
		if r.Scale != nil {
			t.Fatalf("row %d should have no scale", r.Index)
		}
	}
}

func TestBuild_MissingValuesFallBackToDefaults(t *testing.T) {
	in := sampleInput()
	in.Sliders = nil
	in.Scales = nil
	v := Build(in)
	if got := v.Rows[1].Slider.Value; got != in.Config.DefaultSlider() {
		t.Fatalf("expected default slider, got %d", got)
	}
	if got := v.Rows[1].Scale.Selected; got != model.ScaleUnset {
		t.Fatalf("expected unset scale, got %d", got)
	}
}

func TestSliderTicks_EvenSpacing(t *testing.T) {
	ticks := sliderTicks([]string{"a", "b", "c"})
	want := []float64{-25, 25, 75}
	for i, tk := range ticks {
		if math.Abs(tk.LeftPct-want[i]) > 1e-9 || tk.WidthPct != 50 {
			t.Fatalf("tick %d: got left=%v width=%v", i, tk.LeftPct, tk.WidthPct)
		}
	}
	if len(sliderTicks(nil)) != 0 {
		t.Fatalf("no labels, no ticks")
	}
	if one := sliderTicks([]string{"only"}); len(one) != 1 || one[0].WidthPct != 100 {
		t.Fatalf("single tick: %+v", one)
	}
}

func TestBuild_DragMarks(t *testing.T) {
	in := sampleInput()
	in.Labels = []string{"AAA", "BBB", "CCC"}
	in.Drag = DragMarks{Source: 1, Over: 2}
	v := Build(in)
	if !v.Rows[1].Current || v.Rows[1].Hint {
		t.Fatalf("source row marks: %+v", v.Rows[1])
	}
	if !v.Rows[0].Hint || !v.Rows[2].Hint || !v.Rows[2].Active || v.Rows[0].Active {
		t.Fatalf("target marks: %+v", v.Rows)
	}

	in.Config.DraggableList = false
	for _, r := range Build(in).Rows {
		if r.Draggable || r.Current || r.Hint || r.Active {
			t.Fatalf("non-draggable list must carry no marks: %+v", r)
		}
	}
}

func TestBuild_AddBoxDisabledAtLimit(t *testing.T) {
	in := sampleInput()
	in.Config.ItemLimit = true
	in.Config.MaxItems = 2
	if !Build(in).Add.Disabled {
		t.Fatalf("add should be disabled at the item limit")
	}
}

func TestHTML_SanitizesAndBinds(t *testing.T) {
	out, err := HTML(Build(sampleInput()), "/trials/t1")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("prompt script was not stripped:\n%s", out)
	}
	for _, want := range []string{
		`id="trial"`,
		`<b>fruit</b>`,
		`data-bind="slider0"`,
		`data-bind="scale1"`,
		`APPLE`,
		`Continue`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHTML_DragHoverIgnoresChildEvents(t *testing.T) {
	out, err := HTML(Build(sampleInput()), "/trials/t1")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, ev := range []string{"dragenter", "dragleave"} {
		want := `data-on:` + ev + `="!evt.currentTarget.contains(evt.relatedTarget) &&`
		if strings.Count(out, want) != 2 {
			t.Fatalf("expected a guarded %s on both rows in:\n%s", ev, out)
		}
	}
}

func TestHTML_AddBoxConfirmsByClick(t *testing.T) {
	in := sampleInput()
	out, err := HTML(Build(in), "/trials/t1")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(out, "add-confirm") {
		t.Fatalf("closed add box should not show a confirm button:\n%s", out)
	}

	in.AddOpen = true
	in.Draft = "kiwi"
	out, err = HTML(Build(in), "/trials/t1")
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{`class="add-input"`, `class="add-confirm"`, `items')`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSignals_MirrorRows(t *testing.T) {
	sig := Signals(Build(sampleInput()))
	if sig["slider0"] != 3 || sig["slider1"] != 7 {
		t.Fatalf("slider signals: %v", sig)
	}
	if sig["scale0"] != "2" || sig["scale1"] != "-1" {
		t.Fatalf("scale signals: %v", sig)
	}
	if sig["draft"] != "" {
		t.Fatalf("draft signal: %v", sig["draft"])
	}
}

func TestSanitizePrompt_Markdown(t *testing.T) {
	cfg := model.DefaultTrialConfig()
	cfg.PromptFormat = model.PromptMarkdown
	cfg.Prompt = "List **three** fruits :apple:\n\n<script>x()</script>"
	out := SanitizePrompt(cfg)
	if !strings.Contains(out, "<strong>three</strong>") {
		t.Fatalf("markdown not converted: %q", out)
	}
	if strings.Contains(out, "<script") {
		t.Fatalf("raw html leaked: %q", out)
	}
}
