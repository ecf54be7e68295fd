package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

var htmlTemplates = template.Must(template.New("render").Funcs(template.FuncMap{
	"pct": func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) + "%" },
}).ParseFS(templateFS, "templates/*.html"))

type htmlData struct {
	View    View
	Base    string
	Prompt  template.HTML
	Signals string
}

// HTML renders v as the #trial fragment. base prefixes every action URL.
func HTML(v View, base string) (string, error) {
	sig, err := json.Marshal(Signals(v))
	if err != nil {
		return "", fmt.Errorf("render: signals: %w", err)
	}
	var buf bytes.Buffer
	err = htmlTemplates.ExecuteTemplate(&buf, "trial", htmlData{
		View: v,
		Base: base,
		// Prompt already went through the UGC policy in Build.
		Prompt:  template.HTML(v.Prompt),
		Signals: string(sig),
	})
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

// Signals is the client-side state the view binds to: the add draft, one
// slider per row and one scale per row. Scales are strings because radio
// bindings yield the option value as text.
func Signals(v View) map[string]any {
	out := map[string]any{"draft": v.Add.Draft}
	for _, r := range v.Rows {
		out[SliderSignal(r.Index)] = r.Slider.Value
		if r.Scale != nil {
			out[ScaleSignal(r.Index)] = strconv.Itoa(r.Scale.Selected)
		}
	}
	return out
}

func SliderSignal(i int) string { return "slider" + strconv.Itoa(i) }

func ScaleSignal(i int) string { return "scale" + strconv.Itoa(i) }
