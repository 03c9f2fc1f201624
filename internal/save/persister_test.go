package save_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/AaronLay10/pointclick/internal/events"
	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/AaronLay10/pointclick/internal/scene"
	"github.com/AaronLay10/pointclick/internal/storage/memory"
)

func TestPersisterSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	em := events.NewEmitter()
	store := save.New(memory.New(), em)
	p := save.NewPersister(store, save.SlotKey("manor"), 1, nil)

	st := scene.NewGameState("study")
	st.Flags["door_open"] = true
	st.Inventory = []string{"brass_key"}
	p.Snapshot(st)

	got, ok := p.Restore(ctx, scene.NewGameState("hall"))
	if !ok {
		t.Fatal("expected restored state")
	}
	if got.Scene != "study" {
		t.Errorf("expected scene study, got %q", got.Scene)
	}
	if got.Flags["door_open"] != true {
		t.Errorf("expected door_open flag, got %v", got.Flags["door_open"])
	}
	if !got.HasItem("brass_key") {
		t.Error("expected brass_key in inventory")
	}
	if n := countEvents(em, "save.restored"); n != 1 {
		t.Errorf("expected 1 save.restored event, got %d", n)
	}
}

func TestPersisterRestoreFallsBack(t *testing.T) {
	p := save.NewPersister(save.New(memory.New(), nil), "k", 1, nil)

	got, ok := p.Restore(context.Background(), scene.NewGameState("hall"))
	if ok {
		t.Error("expected no saved state")
	}
	if got.Scene != "hall" {
		t.Errorf("expected initial scene hall, got %q", got.Scene)
	}
}

func TestPersisterRestoreMigrates(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := save.New(kv, nil)
	store.Save(ctx, "k", 1, map[string]any{"room": "vault"})

	migrations := save.Migrations{
		1: func(data json.RawMessage) (json.RawMessage, error) {
			var old map[string]any
			if err := json.Unmarshal(data, &old); err != nil {
				return nil, err
			}
			return json.Marshal(scene.NewGameState(old["room"].(string)))
		},
	}
	p := save.NewPersister(store, "k", 2, migrations)

	got, ok := p.Restore(ctx, scene.NewGameState("hall"))
	if !ok || got.Scene != "vault" {
		t.Fatalf("expected migrated scene vault, got %+v ok=%v", got, ok)
	}
}

func TestRuntimeSnapshotsThroughPersister(t *testing.T) {
	g := &scene.Graph{
		Version: 1,
		Start:   "a",
		Scenes: []scene.Scene{
			{ID: "a", Choices: []scene.Choice{{ID: "next", Target: "b"}}},
			{ID: "b"},
		},
	}
	g.Compile()

	store := save.New(memory.New(), nil)
	p := save.NewPersister(store, "k", 1, nil)
	rt := scene.NewRuntime(g, scene.WithSnapshotter(p))
	if err := rt.Start(scene.NewGameState("a")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !rt.Choose("next") {
		t.Fatal("expected choice to resolve")
	}

	got, ok := p.Restore(context.Background(), scene.NewGameState("a"))
	if !ok || got.Scene != "b" {
		t.Errorf("expected saved scene b, got %+v ok=%v", got, ok)
	}
}

func TestPersisterHoldsSlotAfterFailedMigration(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	em := events.NewEmitter()
	store := save.New(kv, em)
	store.Save(ctx, "k", 1, scene.NewGameState("study"))
	before, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	p := save.NewPersister(store, "k", 2, nil)
	got, ok := p.Restore(ctx, scene.NewGameState("hall"))
	if ok {
		t.Fatal("expected restore to fail without a migration")
	}
	if got.Scene != "hall" {
		t.Errorf("expected initial scene hall, got %q", got.Scene)
	}
	if !p.Held() {
		t.Fatal("expected slot to be held")
	}

	failedBefore := countEvents(em, "save.failed")
	p.Snapshot(scene.NewGameState("vault"))
	p.Snapshot(scene.NewGameState("cellar"))

	after, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("expected stored save untouched, got %s", after)
	}
	if n := countEvents(em, "save.failed") - failedBefore; n != 1 {
		t.Errorf("expected 1 save.failed event for held snapshots, got %d", n)
	}
}

func TestPersisterHoldsSlotWithNewerSave(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	store := save.New(kv, nil)
	store.Save(ctx, "k", 3, scene.NewGameState("study"))

	p := save.NewPersister(store, "k", 2, nil)
	if _, ok := p.Restore(ctx, scene.NewGameState("hall")); ok {
		t.Fatal("expected restore to refuse a newer save")
	}
	p.Snapshot(scene.NewGameState("vault"))

	pl, ok := store.Load(ctx, "k")
	if !ok || pl.V != 3 {
		t.Errorf("expected version 3 save kept, got %+v ok=%v", pl, ok)
	}
}

func TestPersisterEmptySlotNotHeld(t *testing.T) {
	ctx := context.Background()
	store := save.New(memory.New(), nil)
	p := save.NewPersister(store, "k", 2, nil)

	if _, ok := p.Restore(ctx, scene.NewGameState("hall")); ok {
		t.Fatal("expected no saved state")
	}
	if p.Held() {
		t.Error("empty slot should not be held")
	}
	p.Snapshot(scene.NewGameState("vault"))
	if pl, ok := store.Load(ctx, "k"); !ok || pl.V != 2 {
		t.Errorf("expected snapshot written at version 2, got %+v ok=%v", pl, ok)
	}
}

func TestRegistryFor(t *testing.T) {
	reg := save.Registry{}
	step := func(data json.RawMessage) (json.RawMessage, error) { return data, nil }
	reg.Register("manor", 1, step)
	reg.Register("manor", 2, step)

	if n := len(reg.For("manor")); n != 2 {
		t.Errorf("expected 2 manor migrations, got %d", n)
	}
	if reg.For("lighthouse") != nil {
		t.Error("expected no migrations for an unregistered game")
	}
	var empty save.Registry
	if empty.For("manor") != nil {
		t.Error("expected nil registry to have no migrations")
	}
}
