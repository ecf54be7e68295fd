package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	TrialID  string   `json:"trial_id"`
	RT       int64    `json:"rt"`
	TimedOut bool     `json:"timed_out"`
	Response []string `json:"response"`
	Sliders  []int    `json:"slider_values"`
}

var s = sample{TrialID: "t1", RT: 1500, Response: []string{"APPLE", "PEAR"}, Sliders: []int{3, 7}}

func TestParse(t *testing.T) {
	for in, want := range map[string]Format{"": JSON, "JSON": JSON, "edn": EDN, " yaml ": YAML} {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := Parse("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, s, EDN, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:response ["APPLE" "PEAR"] :rt 1500 :slider-values [3 7] :timed-out false :trial-id "t1"}` + "\n"
	if buf.String() != want {
		t.Fatalf("edn:\n got %q\nwant %q", buf.String(), want)
	}

	buf.Reset()
	if err := Write(&buf, map[string]any{"xs": []int{}}, EDN, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "{\n  :xs []\n}\n" {
		t.Fatalf("pretty edn: %q", buf.String())
	}
}

func TestWrite_JSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, s, JSON, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `{"trial_id":"t1","rt":1500`) {
		t.Fatalf("json: %s", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, s, YAML, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, want := range []string{"trial_id: t1", "rt: 1500", "- APPLE"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("yaml missing %q:\n%s", want, buf.String())
		}
	}
}
