package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rankedlist/internal/model"
	"rankedlist/internal/results"
)

type RenderOptions struct {
	// ScaleLabels names scale options in the report; without them the raw
	// option index is shown.
	ScaleLabels []string
}

// RenderRecordMarkdown renders one recorded response as a markdown page.
func RenderRecordMarkdown(rec results.Record, opt RenderOptions) string {
	resp := rec.Response
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Trial " + strings.TrimSpace(resp.TrialID))
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	writeLn("- Record: " + strconv.FormatInt(rec.Seq, 10))
	writeLn("- Recorded: " + formatTime(rec.RecordedAt))
	if !resp.Started.IsZero() {
		writeLn("- Started: " + formatTime(resp.Started))
	}
	writeLn("- Response time: " + strconv.FormatInt(resp.RT, 10) + " ms")
	if resp.TimedOut {
		writeLn("- Ended by: time limit")
	} else {
		writeLn("- Ended by: participant")
	}
	writeLn("")

	writeLn("## Ranking")
	writeLn("")
	if len(resp.Response) == 0 {
		writeLn("_No items._")
	} else {
		writeLn("| # | Item | Slider | Scale |")
		writeLn("| --- | --- | --- | --- |")
		for i, label := range resp.Response {
			writeLn(fmt.Sprintf("| %d | %s | %s | %s |", i+1, escapeCell(label),
				intAt(resp.SliderValues, i), scaleText(resp.ScaleValues, i, opt.ScaleLabels)))
		}
	}

	if len(resp.StartingList) > 0 {
		writeLn("")
		writeLn("## Starting list")
		writeLn("")
		for i, label := range resp.StartingList {
			writeLn(fmt.Sprintf("%d. %s", i+1, label))
		}
	}

	return buf.String()
}

// RenderIndexMarkdown lists the records, linking each page by file name.
func RenderIndexMarkdown(recs []results.Record) string {
	var buf bytes.Buffer
	buf.WriteString("# Responses\n\n")
	if len(recs) == 0 {
		buf.WriteString("_Nothing recorded yet._\n")
		return buf.String()
	}
	buf.WriteString("| Record | Trial | Items | Timed out | Recorded |\n")
	buf.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, rec := range recs {
		fmt.Fprintf(&buf, "| %d | [%s](%s) | %d | %t | %s |\n",
			rec.Seq, rec.Response.TrialID, recordFileName(rec), len(rec.Response.Response),
			rec.Response.TimedOut, formatTime(rec.RecordedAt))
	}
	return buf.String()
}

func recordFileName(rec results.Record) string {
	return fmt.Sprintf("%06d-%s.md", rec.Seq, safeName(rec.Response.TrialID))
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "trial"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func intAt(xs []int, i int) string {
	if i >= len(xs) {
		return "-"
	}
	return strconv.Itoa(xs[i])
}

func scaleText(xs []int, i int, labels []string) string {
	if i >= len(xs) || xs[i] == model.ScaleUnset {
		return "-"
	}
	if v := xs[i]; v >= 0 && v < len(labels) {
		return escapeCell(labels[v])
	}
	return strconv.Itoa(xs[i])
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
