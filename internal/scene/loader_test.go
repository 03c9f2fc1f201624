package scene

import (
	"strings"
	"testing"
)

func TestLoadGraphYAML(t *testing.T) {
	g, err := LoadGraph("testdata/manor.yaml")
	if err != nil {
		t.Fatalf("failed to load scene graph: %v", err)
	}

	if g.Version != 1 {
		t.Errorf("expected version 1, got %d", g.Version)
	}
	if len(g.Scenes) != 3 {
		t.Errorf("expected 3 scenes, got %d", len(g.Scenes))
	}
	if g.StartScene() != "hall" {
		t.Errorf("expected start hall, got %s", g.StartScene())
	}

	hall, ok := g.Scene("hall")
	if !ok {
		t.Fatalf("hall missing")
	}
	if hall.Title.Resolve("fr") != "Hall d'entrée" {
		t.Errorf("unexpected french title %q", hall.Title.Resolve("fr"))
	}
	take, _ := hall.Choice("take_key")
	if take.Text.Resolve("fr") != "Take the brass key" {
		t.Errorf("plain text should fall back to en, got %q", take.Text.Resolve("fr"))
	}
	if take.Guard == nil || take.Effect == nil {
		t.Errorf("expected compiled guard and effect")
	}
}

func TestLoadGraphJSON(t *testing.T) {
	g, err := LoadGraph("testdata/tiny.json")
	if err != nil {
		t.Fatalf("failed to load scene graph: %v", err)
	}
	if g.StartScene() != "start" {
		t.Errorf("expected first scene as start, got %s", g.StartScene())
	}
}

func TestLoadGraphReportsAllProblems(t *testing.T) {
	_, err := LoadGraph("testdata/broken.json")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("expected missing start scene in error, got %v", err)
	}
}

func TestValidateTargets(t *testing.T) {
	g := &Graph{
		Version: 1,
		Scenes: []Scene{
			{ID: "a", Choices: []Choice{{ID: "x", Target: "b"}}},
		},
	}
	err := Validate(g)
	if err == nil {
		t.Fatal("expected error for dangling target")
	}
	if !strings.Contains(err.Error(), `unknown scene "b"`) {
		t.Errorf("unexpected error %v", err)
	}

	g.Scenes = append(g.Scenes, Scene{ID: "b"})
	if err := Validate(g); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLoadGraphMissingFile(t *testing.T) {
	if _, err := LoadGraph("testdata/nope.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
