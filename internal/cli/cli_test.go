package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rankedlist/internal/config"
	"rankedlist/internal/model"
	"rankedlist/internal/results"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvAddr, config.EnvResultsPath, config.EnvLogLevel, "RANKEDLIST_CONFIG", "RANKEDLIST_FORMAT"} {
		t.Setenv(k, "")
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.TrimSpace(body)+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestConfigInitShowCheck(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "trial.yaml")

	if _, stderr, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v (%s)", err, stderr)
	}
	if _, _, err := runCLI(t, "config", "init", path); err == nil {
		t.Fatalf("config init must not overwrite without --force")
	}

	out, _, err := runCLI(t, "--config", path, "--format", "yaml", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"max_items: 5", "button_label: Continue", "backend: sqlite"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config show: missing %q in:\n%s", want, out)
		}
	}

	out, _, err = runCLI(t, "--config", path, "config", "check")
	if err != nil {
		t.Fatalf("config check: %v", err)
	}
	var env struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil || !env.Data.Valid {
		t.Fatalf("expected a valid config, got %q (%v)", out, err)
	}
}

func TestConfigCheck_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, `
trial:
  min: 10
  max: 5
results:
  backend: postgres
`)

	out, _, err := runCLI(t, "--config", path, "config", "check")
	if err == nil {
		t.Fatalf("expected config check to fail")
	}
	var env struct {
		Data struct {
			Valid    bool     `json:"valid"`
			Problems []string `json:"problems"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if env.Data.Valid || len(env.Data.Problems) != 2 {
		t.Fatalf("expected two problems, got %+v", env.Data)
	}
	if env.Data.Problems[0] != "trial: min (10) must be below max (5)" {
		t.Fatalf("unexpected first problem %q", env.Data.Problems[0])
	}
}

func TestResultsList(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "trial.yaml")
	writeFile(t, path, `
results:
  backend: jsonl
  path: responses.jsonl
`)

	sink, err := results.OpenJSONL(filepath.Join(dir, "responses.jsonl"))
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	for _, id := range []string{"t-1", "t-2"} {
		if err := sink.Record(context.Background(), model.TrialResponse{TrialID: id, RT: 1200, Response: []string{"APPLE"}}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, _, err := runCLI(t, "--config", path, "results", "list", "--limit", "1")
	if err != nil {
		t.Fatalf("results list: %v", err)
	}
	var env struct {
		Data []resultRow `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(env.Data) != 1 || env.Data[0].TrialID != "t-2" || env.Data[0].Ago == "" {
		t.Fatalf("unexpected rows %+v", env.Data)
	}
}

func TestUnknownFormat(t *testing.T) {
	clearEnv(t)
	_, stderr, err := runCLI(t, "--format", "xml", "config", "show")
	if err == nil || !strings.Contains(stderr, "unknown format") {
		t.Fatalf("expected an unknown format error, got %v (%q)", err, stderr)
	}
}

func TestProblems_FlattensJoinedErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Trial.Step = 0
	cfg.Trial.MaxItems = 0
	got := problems(cfg.Validate())
	if len(got) != 2 {
		t.Fatalf("expected two problems, got %q", got)
	}
	for _, p := range got {
		if !strings.HasPrefix(p, "trial: ") {
			t.Fatalf("problem lost its prefix: %q", p)
		}
	}
}

func TestDocs(t *testing.T) {
	clearEnv(t)
	out, _, err := runCLI(t, "docs", "keys", "--raw")
	if err != nil || !strings.Contains(out, "ctrl+c") {
		t.Fatalf("docs keys: %v\n%s", err, out)
	}
	if _, _, err := runCLI(t, "docs", "nope"); err == nil {
		t.Fatalf("unknown topic should fail")
	}
}

func TestResultsExport(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "trial.yaml")
	writeFile(t, path, `
results:
  backend: jsonl
  path: responses.jsonl
`)
	sink, err := results.OpenJSONL(filepath.Join(dir, "responses.jsonl"))
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	if err := sink.Record(context.Background(), model.TrialResponse{TrialID: "t-1", Response: []string{"APPLE"}}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = sink.Close()

	report := filepath.Join(dir, "report")
	if _, stderr, err := runCLI(t, "--config", path, "results", "export", "--to", report); err != nil {
		t.Fatalf("export: %v (%s)", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(report, "index.md")); err != nil {
		t.Fatalf("index.md missing: %v", err)
	}
}
