package tui

import (
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"rankedlist/internal/model"
	"rankedlist/internal/render"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: it queries the
	// terminal and can block.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func markdownStyle() string {
	switch {
	case plainProfile():
		return "notty"
	case lipgloss.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// renderPrompt turns the configured prompt into terminal text. Markdown
// prompts go through glamour; HTML prompts are reduced to their text.
func renderPrompt(cfg model.TrialConfig, width int) string {
	if strings.TrimSpace(cfg.Prompt) == "" {
		return ""
	}
	if cfg.MarkdownPrompt() {
		return renderMarkdown(cfg.Prompt, width)
	}
	text := html.UnescapeString(render.PlainText(render.SanitizePrompt(cfg)))
	text = strings.Join(strings.Fields(text), " ")
	if width < 10 {
		width = 10
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
