package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ScaleUnset marks an item whose scale question has not been answered yet.
const ScaleUnset = -1

const (
	PromptHTML     = "html"
	PromptMarkdown = "markdown"
)

// MinLabelLen is the shortest accepted item label (after trimming).
const MinLabelLen = 3

// TrialConfig is the parameter set of one ranked-list trial. It is immutable
// for the lifetime of the trial.
type TrialConfig struct {
	// Prompt is shown above the list; HTML unless PromptFormat is "markdown".
	Prompt       string `json:"prompt,omitempty" yaml:"prompt"`
	PromptFormat string `json:"prompt_format,omitempty" yaml:"prompt_format"`
	// TrialDuration is the trial time limit in milliseconds; <= 0 means unlimited.
	TrialDuration     int    `json:"trial_duration,omitempty" yaml:"trial_duration"`
	ResponseEndsTrial bool   `json:"response_ends_trial" yaml:"response_ends_trial"`
	ButtonLabel       string `json:"button_label" yaml:"button_label"`

	StartEmpty      bool     `json:"start_empty" yaml:"start_empty"`
	StartingList    []string `json:"starting_list,omitempty" yaml:"starting_list"`
	StartingSliders []int    `json:"starting_sliders,omitempty" yaml:"starting_sliders"`
	StartingScales  []int    `json:"starting_scales,omitempty" yaml:"starting_scales"`

	ItemLimit   bool `json:"item_limit" yaml:"item_limit"`
	ItemMinimum int  `json:"item_minimum" yaml:"item_minimum"`
	MaxItems    int  `json:"max_items" yaml:"max_items"`

	Min          int      `json:"min" yaml:"min"`
	Max          int      `json:"max" yaml:"max"`
	SliderStart  int      `json:"slider_start" yaml:"slider_start"`
	Step         int      `json:"step" yaml:"step"`
	SliderPrompt string   `json:"slider_prompt,omitempty" yaml:"slider_prompt"`
	SliderWidth  int      `json:"slider_width,omitempty" yaml:"slider_width"` // px; 0 = canvas_size[1]
	CanvasSize   []int    `json:"canvas_size" yaml:"canvas_size"`
	SliderLabels []string `json:"slider_labels,omitempty" yaml:"slider_labels"`

	ScaleQuestions bool     `json:"scale_questions" yaml:"scale_questions"`
	ScaleLabels    []string `json:"scale_labels,omitempty" yaml:"scale_labels"`

	AddButtonPrompt string `json:"add_button_prompt" yaml:"add_button_prompt"`
	ScalePrompt     string `json:"scale_prompt,omitempty" yaml:"scale_prompt"`
	BlankScaleError string `json:"blank_scale_error" yaml:"blank_scale_error"`
	DraggableList   bool   `json:"draggable_list" yaml:"draggable_list"`

	// Messages shown when an add or a submit is rejected.
	ItemMinimumError   string `json:"item_minimum_error" yaml:"item_minimum_error"`
	DuplicateItemError string `json:"duplicate_item_error" yaml:"duplicate_item_error"`
	ShortItemError     string `json:"short_item_error" yaml:"short_item_error"`
	ItemLimitError     string `json:"item_limit_error" yaml:"item_limit_error"`
}

// DefaultTrialConfig returns the parameter defaults of the ranked-list trial.
func DefaultTrialConfig() TrialConfig {
	return TrialConfig{
		ResponseEndsTrial:  true,
		ButtonLabel:        "Continue",
		StartEmpty:         true,
		ItemMinimum:        1,
		MaxItems:           5,
		Min:                0,
		Max:                10,
		SliderStart:        50,
		Step:               1,
		CanvasSize:         []int{500, 100},
		AddButtonPrompt:    "Enter the name of the element that you want to add",
		BlankScaleError:    "A scale option has not been provided!",
		DraggableList:      true,
		ItemMinimumError:   "Please add at least %d item(s) before continuing.",
		DuplicateItemError: "That item is already in the list.",
		ShortItemError:     "Items need at least 3 characters.",
		ItemLimitError:     "No more items can be added.",
	}
}

// ScalesRequired reports whether every item needs a scale selection.
func (c TrialConfig) ScalesRequired() bool {
	return c.ScaleQuestions && len(c.ScaleLabels) > 0
}

// ClampSlider snaps v onto the step grid starting at Min and clamps it to [Min, Max].
func (c TrialConfig) ClampSlider(v int) int {
	if c.Step > 1 {
		q := math.Round(float64(v-c.Min) / float64(c.Step))
		v = c.Min + int(q)*c.Step
	}
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// DefaultSlider is the slider value given to a freshly added item.
func (c TrialConfig) DefaultSlider() int { return c.ClampSlider(c.SliderStart) }

// SliderWidthPx is the rendered slider width; it falls back to the canvas width.
func (c TrialConfig) SliderWidthPx() int {
	if c.SliderWidth > 0 {
		return c.SliderWidth
	}
	if len(c.CanvasSize) == 2 {
		return c.CanvasSize[1]
	}
	return 0
}

// MarkdownPrompt reports whether Prompt is markdown source.
func (c TrialConfig) MarkdownPrompt() bool { return c.PromptFormat == PromptMarkdown }

// ItemMinimumMessage formats ItemMinimumError with the configured minimum.
func (c TrialConfig) ItemMinimumMessage() string {
	if strings.Contains(c.ItemMinimumError, "%d") {
		return fmt.Sprintf(c.ItemMinimumError, c.ItemMinimum)
	}
	return c.ItemMinimumError
}

// Validate checks the configuration for values no trial can run with.
func (c TrialConfig) Validate() error {
	var errs []error
	if c.Min >= c.Max {
		errs = append(errs, fmt.Errorf("min (%d) must be below max (%d)", c.Min, c.Max))
	}
	if c.Step <= 0 {
		errs = append(errs, fmt.Errorf("step must be positive, got %d", c.Step))
	}
	if c.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("max_items must be at least 1, got %d", c.MaxItems))
	}
	if c.ItemMinimum < 0 {
		errs = append(errs, fmt.Errorf("item_minimum must not be negative, got %d", c.ItemMinimum))
	}
	if c.ItemLimit && c.ItemMinimum > c.MaxItems {
		errs = append(errs, fmt.Errorf("item_minimum (%d) exceeds max_items (%d)", c.ItemMinimum, c.MaxItems))
	}
	if len(c.CanvasSize) != 2 {
		errs = append(errs, fmt.Errorf("canvas_size needs 2 values, got %d", len(c.CanvasSize)))
	}
	if c.SliderWidth < 0 {
		errs = append(errs, fmt.Errorf("slider_width must not be negative, got %d", c.SliderWidth))
	}
	if !c.ResponseEndsTrial && c.TrialDuration <= 0 {
		errs = append(errs, errors.New("response_ends_trial=false needs a trial_duration"))
	}
	switch c.PromptFormat {
	case "", PromptHTML, PromptMarkdown:
	default:
		errs = append(errs, fmt.Errorf("prompt_format must be html or markdown, got %q", c.PromptFormat))
	}
	if c.ScaleQuestions && len(c.ScaleLabels) == 0 {
		errs = append(errs, errors.New("scale_questions needs scale_labels"))
	}
	if !c.StartEmpty {
		errs = append(errs, c.validateStartingList()...)
	}
	return errors.Join(errs...)
}

func (c TrialConfig) validateStartingList() []error {
	var errs []error
	seen := map[string]bool{}
	for i, raw := range c.StartingList {
		label := NormalizeLabel(raw)
		if len([]rune(label)) < MinLabelLen {
			errs = append(errs, fmt.Errorf("starting_list[%d] %q is shorter than %d characters", i, raw, MinLabelLen))
			continue
		}
		if seen[label] {
			errs = append(errs, fmt.Errorf("starting_list[%d] %q is a duplicate", i, raw))
		}
		seen[label] = true
	}
	if c.ItemLimit && len(c.StartingList) > c.MaxItems {
		errs = append(errs, fmt.Errorf("starting_list has %d items, max_items is %d", len(c.StartingList), c.MaxItems))
	}
	if len(c.StartingSliders) > len(c.StartingList) {
		errs = append(errs, fmt.Errorf("starting_sliders has %d values for %d items", len(c.StartingSliders), len(c.StartingList)))
	}
	if len(c.StartingScales) > len(c.StartingList) {
		errs = append(errs, fmt.Errorf("starting_scales has %d values for %d items", len(c.StartingScales), len(c.StartingList)))
	}
	for i, s := range c.StartingScales {
		if s != ScaleUnset && (s < 0 || s >= len(c.ScaleLabels)) {
			errs = append(errs, fmt.Errorf("starting_scales[%d] = %d is not a scale option", i, s))
		}
	}
	return errs
}

// NormalizeLabel trims and uppercases an item label.
func NormalizeLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// TrialResponse is the record handed to the host when a trial ends.
type TrialResponse struct {
	TrialID string `json:"trial_id"`
	// RT is the elapsed trial time in milliseconds.
	RT       int64     `json:"rt"`
	TimedOut bool      `json:"timed_out"`
	Started  time.Time `json:"started_at"`
	Ended    time.Time `json:"ended_at"`

	Response     []string `json:"response"`
	SliderValues []int    `json:"slider_values"`
	ScaleValues  []int    `json:"scale_values"`

	StartingList    []string `json:"starting_list,omitempty"`
	StartingSliders []int    `json:"starting_sliders,omitempty"`
	StartingScales  []int    `json:"starting_scales,omitempty"`
}
