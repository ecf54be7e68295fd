package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"rankedlist/internal/render"
)

const sliderBarWidth = 31

func (m appModel) View() string {
	if m.done {
		return ""
	}
	top, rows, bottom := m.sections()
	parts := append([]string{top}, rows...)
	parts = append(parts, bottom)
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// sections splits the screen so rowAt can find rows by line.
func (m appModel) sections() (top string, rows []string, bottom string) {
	v := m.host.view
	w := m.contentWidth()

	head := []string{m.styles.title.Render("Ranked list")}
	if !m.deadline.IsZero() {
		left := humanize.RelTime(m.now(), m.deadline, "left", "over")
		head = append(head, m.styles.muted.Render(" · "+left))
	}
	topParts := []string{lipgloss.JoinHorizontal(lipgloss.Top, head...)}
	if m.prompt != "" {
		topParts = append(topParts, m.prompt)
	}
	topParts = append(topParts, "")
	top = strings.Join(topParts, "\n")

	for _, r := range v.Rows {
		rows = append(rows, m.renderRow(r, w))
	}

	var b []string
	b = append(b, "")
	b = append(b, m.renderAdd(v.Add))
	if v.Error != "" {
		b = append(b, m.styles.err.Render(v.Error))
	}
	if m.status != "" {
		b = append(b, m.styles.message.Render(m.status))
	}
	if v.Accepted {
		b = append(b, m.styles.ok.Render("Response recorded. The trial ends when time is up."))
	}
	if v.Submit.Disabled {
		b = append(b, m.styles.disabled.Render(v.Submit.Label))
	} else {
		b = append(b, m.styles.button.Render(v.Submit.Label))
	}
	b = append(b, "", m.help.View(m.keys))
	bottom = strings.Join(b, "\n")
	return top, rows, bottom
}

// rowAt maps a screen line to the row drawn there, or -1.
func (m appModel) rowAt(y int) int {
	top, rows, _ := m.sections()
	line := lipgloss.Height(top)
	if y < line {
		return -1
	}
	for i, r := range rows {
		h := lipgloss.Height(r)
		if y < line+h {
			return i
		}
		line += h
	}
	return -1
}

func (m appModel) renderRow(r render.Row, width int) string {
	st := m.styles
	label := st.label.Render(ansi.Truncate(r.Label, width-8, "…"))
	marker := fmt.Sprintf("%d.", r.Index+1)
	switch {
	case r.Current:
		label = st.source.Render(ansi.Truncate(r.Label, width-8, "…") + " (moving)")
	case r.Active:
		marker = st.target.Render("▶")
	case r.Hint:
		marker = st.muted.Render("┆")
	}
	lines := []string{marker + " " + label}

	if r.Scale != nil {
		if r.Scale.Prompt != "" {
			lines = append(lines, st.muted.Render(r.Scale.Prompt))
		}
		lines = append(lines, m.renderScale(r.Scale))
	}
	if r.Slider.Prompt != "" {
		lines = append(lines, st.muted.Render(r.Slider.Prompt))
	}
	lines = append(lines, m.renderSlider(r.Slider))
	if len(r.Slider.Ticks) > 0 {
		lines = append(lines, st.muted.Render(tickLine(r.Slider)))
	}
	lines = append(lines, "")

	body := strings.Join(lines, "\n")
	if r.Index == m.cursor {
		return st.cursor.Width(width).Render(body)
	}
	return st.row.Render(body)
}

func (m appModel) renderScale(s *render.Scale) string {
	opts := make([]string, 0, len(s.Options))
	for i, o := range s.Options {
		txt := fmt.Sprintf("%d ○ %s", i+1, o.Label)
		if o.Checked {
			txt = m.styles.selected.Render(fmt.Sprintf("%d ● %s", i+1, o.Label))
		}
		opts = append(opts, txt)
	}
	return strings.Join(opts, "   ")
}

func (m appModel) renderSlider(s render.Slider) string {
	pos := 0
	if s.Max > s.Min {
		pos = int(math.Round(float64(s.Value-s.Min) / float64(s.Max-s.Min) * float64(sliderBarWidth-1)))
	}
	bar := strings.Repeat("─", pos) + m.styles.knob.Render("●") + strings.Repeat("─", sliderBarWidth-1-pos)
	return fmt.Sprintf("%d ├%s┤ %d   %s", s.Min, bar, s.Max, m.styles.knob.Render(fmt.Sprint(s.Value)))
}

// tickLine lays slider labels out under the bar, each centred on its tick.
// Labels that would overlap the previous one are dropped.
func tickLine(s render.Slider) string {
	// The bar starts after "<min> ├".
	offset := len(fmt.Sprint(s.Min)) + 2
	var b strings.Builder
	col := 0
	for _, t := range s.Ticks {
		center := offset + int(math.Round((t.LeftPct+t.WidthPct/2)/100*float64(sliderBarWidth-1)))
		lw := ansi.StringWidth(t.Label)
		start := max(center-lw/2, 0)
		if start < col {
			continue
		}
		b.WriteString(strings.Repeat(" ", start-col))
		b.WriteString(t.Label)
		col = start + lw + 1
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

func (m appModel) renderAdd(a render.AddBox) string {
	if a.Open {
		box := m.styles.input.Render(m.input.View())
		if a.Message != "" {
			box += "\n" + m.styles.message.Render(a.Message)
		}
		return box
	}
	if a.Disabled {
		return m.styles.muted.Render("+ " + a.Placeholder + " (list is full)")
	}
	return m.styles.muted.Render("+ " + a.Placeholder + "  [a]")
}
