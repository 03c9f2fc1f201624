package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/AaronLay10/pointclick/internal/scene"
	"github.com/AaronLay10/pointclick/internal/version"
)

func writeGame(t *testing.T, backend string) string {
	t.Helper()
	return writeGameAt(t, t.TempDir(), backend, 1)
}

func writeGameAt(t *testing.T, dir, backend string, saveVersion int) string {
	t.Helper()
	scenes, err := filepath.Abs(filepath.Join("testdata", "scenes.yaml"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	body := `version: 1
game:
  id: manor
  scenes: ` + scenes + `
  save_version: ` + strconv.Itoa(saveVersion) + `
storage:
  backend: ` + backend + `
input:
  macros:
    - name: take_key
      sequence: [doubletap]
puzzles:
  - id: keypad
    kind: keypad
    code: "1879"
  - id: lamps
    kind: sequence
    target: [red, blue]
    lives: 1
`
	path := filepath.Join(dir, "game.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write game.yaml: %v", err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return runWith(t, nil, stdin, args...)
}

func runWith(t *testing.T, migrations save.Registry, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(migrations)
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, name := range []string{"play", "validate", "saves", "history", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("expected command %s, got %v (%v)", name, sub, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, version.Version) {
		t.Errorf("expected version in output, got %q", out)
	}
}

func TestValidateCommand(t *testing.T) {
	out, _, err := run(t, "", "validate", filepath.Join("testdata", "scenes.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "ok: 4 scenes") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestValidateCommandReportsDanglingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"version":1,"start":"a","scenes":[{"id":"a","title":"A","choices":[{"id":"x","text":"X","target":"nowhere"}]}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := run(t, "", "validate", path)
	if err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("expected dangling target error, got %v", err)
	}
}

func TestHistoryNeedsPostgres(t *testing.T) {
	cfg := writeGame(t, "memory")
	_, _, err := run(t, "", "--config", cfg, "history")
	if err == nil || !strings.Contains(err.Error(), "needs the postgres backend") {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestPlayThroughToVault(t *testing.T) {
	cfg := writeGame(t, "memory")
	stdin := strings.Join([]string{
		"1", // take key
		"1", // study
		"2", // no such choice
		"press keypad 1",
		"press keypad 8",
		"press keypad 7",
		"press keypad 9",
		"submit keypad",
		"1", // safe
		"quit",
	}, "\n")

	out, _, err := run(t, stdin, "--config", cfg, "--quiet", "play")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"== Entrance Hall ==", "== Study ==", "no choice 2", "keypad solved", "== Vault =="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPlayLocale(t *testing.T) {
	cfg := writeGame(t, "memory")
	out, _, err := run(t, "quit\n", "--config", cfg, "--quiet", "play", "--locale", "fr-CA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Hall d'entrée") {
		t.Errorf("expected french title, got:\n%s", out)
	}
}

func TestPlayGestureMacroTakesChoice(t *testing.T) {
	cfg := writeGame(t, "memory")
	stdin := "down 1 5 5\nup 1 5 5\ndown 1 5 5\nup 1 5 5\ninv\nquit\n"

	out, _, err := run(t, stdin, "--config", cfg, "--quiet", "play")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "gesture take_key") {
		t.Errorf("expected macro to fire, got:\n%s", out)
	}
	if !strings.Contains(out, "brass_key") {
		t.Errorf("expected brass_key in inventory, got:\n%s", out)
	}
}

func TestPlaySequenceFailure(t *testing.T) {
	cfg := writeGame(t, "memory")
	stdin := "press lamps blue\npuzzles\nreset lamps\npuzzles\nquit\n"

	out, errOut, err := run(t, stdin, "--config", cfg, "play")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "failed=true") {
		t.Errorf("expected failed sequence, got:\n%s", out)
	}
	if !strings.Contains(out, "lives=1 solved=false failed=false") {
		t.Errorf("expected reset to restore lives, got:\n%s", out)
	}

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(errOut), "\n") {
		var evt struct {
			Event   string `json:"event"`
			Session string `json:"session_id"`
		}
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("bad event line %q: %v", line, err)
		}
		if evt.Session == "" {
			t.Errorf("expected session id on %s", evt.Event)
		}
		names = append(names, evt.Event)
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"system.startup", "scene.entered", "puzzle.failed", "puzzle.reset", "system.shutdown"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %s event, got %v", want, names)
		}
	}
}

func TestSavesShowAndClear(t *testing.T) {
	cfg := writeGame(t, "file")

	if _, _, err := run(t, "1\nquit\n", "--config", cfg, "-q", "play"); err != nil {
		t.Fatalf("play: %v", err)
	}

	out, _, err := run(t, "", "--config", cfg, "-q", "saves", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "manor:save:v1: v1") || !strings.Contains(out, "brass_key") {
		t.Errorf("unexpected show output %q", out)
	}

	out, _, err = run(t, "", "--config", cfg, "-q", "saves", "clear")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Errorf("unexpected clear output %q", out)
	}

	out, _, _ = run(t, "", "--config", cfg, "-q", "saves", "show")
	if !strings.Contains(out, "empty") {
		t.Errorf("expected empty slot, got %q", out)
	}
}

func TestPlayResumesFromSave(t *testing.T) {
	cfg := writeGame(t, "file")

	if _, _, err := run(t, "1\n1\nquit\n", "--config", cfg, "-q", "play"); err != nil {
		t.Fatalf("first play: %v", err)
	}
	out, _, err := run(t, "inv\nquit\n", "--config", cfg, "-q", "play")
	if err != nil {
		t.Fatalf("second play: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "== Study ==") {
		t.Errorf("expected to resume in the study, got:\n%s", out)
	}

	out, _, err = run(t, "quit\n", "--config", cfg, "-q", "play", "--fresh")
	if err != nil {
		t.Fatalf("fresh play: %v", err)
	}
	if !strings.Contains(out, "== Entrance Hall ==") {
		t.Errorf("expected fresh start in the hall, got:\n%s", out)
	}
}

func TestPlayKeepsSaveAcrossVersionBump(t *testing.T) {
	dir := t.TempDir()
	cfg := writeGameAt(t, dir, "file", 1)
	if _, _, err := run(t, "1\n1\nquit\n", "--config", cfg, "-q", "play"); err != nil {
		t.Fatalf("first play: %v", err)
	}

	writeGameAt(t, dir, "file", 2)
	out, _, err := run(t, "1\nquit\n", "--config", cfg, "-q", "play")
	if err != nil {
		t.Fatalf("play without migration: %v", err)
	}
	if !strings.Contains(out, "could not be upgraded to v2") {
		t.Errorf("expected held save notice, got:\n%s", out)
	}
	if !strings.Contains(out, "== Entrance Hall ==") {
		t.Errorf("expected to start in the hall, got:\n%s", out)
	}

	out, _, err = run(t, "", "--config", cfg, "-q", "saves", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "manor:save:v1: v1") || !strings.Contains(out, `"scene":"study"`) {
		t.Errorf("expected the v1 study save untouched, got %q", out)
	}

	reg := save.Registry{}
	reg.Register("manor", 1, func(data json.RawMessage) (json.RawMessage, error) {
		var st scene.GameState
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, err
		}
		st.Flags["upgraded"] = true
		return json.Marshal(st)
	})
	out, _, err = runWith(t, reg, "quit\n", "--config", cfg, "-q", "play")
	if err != nil {
		t.Fatalf("play with migration: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "== Study ==") {
		t.Errorf("expected to resume in the study, got:\n%s", out)
	}

	out, _, err = run(t, "", "--config", cfg, "-q", "saves", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "manor:save:v1: v2") || !strings.Contains(out, `"upgraded":true`) {
		t.Errorf("expected migrated v2 save, got %q", out)
	}
}
