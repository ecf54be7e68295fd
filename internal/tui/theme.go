package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colors adapt to light and dark terminals; faint text is only used on dark
// backgrounds where it stays legible.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorError      lipgloss.TerminalColor = ac("160", "203")
	colorOK         lipgloss.TerminalColor = ac("28", "114")
)

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	row      lipgloss.Style
	cursor   lipgloss.Style
	source   lipgloss.Style
	target   lipgloss.Style
	label    lipgloss.Style
	selected lipgloss.Style
	knob     lipgloss.Style
	input    lipgloss.Style
	message  lipgloss.Style
	err      lipgloss.Style
	ok       lipgloss.Style
	button   lipgloss.Style
	disabled lipgloss.Style
}

func defaultStyles() styles {
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	if lipgloss.HasDarkBackground() {
		muted = muted.Faint(true)
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		muted:    muted,
		row:      lipgloss.NewStyle().PaddingLeft(2),
		cursor:   lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(colorAccent).Background(colorSelectedBg),
		source:   lipgloss.NewStyle().Italic(true).Foreground(colorMuted),
		target:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		label:    lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		knob:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		input:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
		message:  lipgloss.NewStyle().Foreground(colorError),
		err:      lipgloss.NewStyle().Foreground(colorError).Bold(true),
		ok:       lipgloss.NewStyle().Foreground(colorOK),
		button:   lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 2),
		disabled: lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2),
	}
}

// plainProfile reports whether the current profile renders no colors at
// all, as in tests and dumb terminals.
func plainProfile() bool {
	return lipgloss.ColorProfile() == termenv.Ascii
}
