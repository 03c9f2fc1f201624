package save

import (
	"context"
	"fmt"

	"github.com/AaronLay10/pointclick/internal/scene"
)

// Registry holds the migration chain of each game, keyed by game id.
type Registry map[string]Migrations

// Register adds the step that upgrades game saves from version from to from+1.
func (r Registry) Register(game string, from int, m Migration) {
	if r[game] == nil {
		r[game] = Migrations{}
	}
	r[game][from] = m
}

// For returns the migrations registered for game. A nil registry has none.
func (r Registry) For(game string) Migrations {
	return r[game]
}

// Persister snapshots scene state to one save slot.
//
// When a stored save exists but cannot be brought to the current version, the
// slot is held: snapshots are dropped so the stored progress survives until a
// migration for it ships.
type Persister struct {
	store      *Versioned
	key        string
	version    int
	migrations Migrations
	held       bool
	reported   bool
}

// NewPersister writes snapshots at version to key, upgrading older saves with migrations.
func NewPersister(store *Versioned, key string, version int, migrations Migrations) *Persister {
	return &Persister{
		store:      store,
		key:        key,
		version:    version,
		migrations: migrations,
	}
}

// Snapshot writes the state. Failures are reported by the store and otherwise ignored.
func (p *Persister) Snapshot(s scene.GameState) {
	if p.held {
		if !p.reported {
			p.reported = true
			p.store.emitter.Error("save.failed", fmt.Errorf("slot holds a save that could not be upgraded to version %d; progress is kept in memory only", p.version),
				map[string]interface{}{"key": p.key, "scene_id": s.Scene})
		}
		return
	}
	p.store.Save(context.Background(), p.key, p.version, s)
}

// Restore returns the saved state, or initial when there is no usable save.
// A save that is present but fails to migrate holds the slot.
func (p *Persister) Restore(ctx context.Context, initial scene.GameState) (scene.GameState, bool) {
	s, ok := LoadWithMigrations[scene.GameState](ctx, p.store, p.key, p.version, p.migrations)
	if !ok {
		if _, err := p.store.kv.Get(ctx, p.key); err == nil {
			p.held = true
		}
		return initial, false
	}
	p.store.emitter.Info("save.restored", map[string]interface{}{"key": p.key, "scene_id": s.Scene})
	return s, true
}

// Held reports whether snapshots are being dropped to protect an unmigrated save.
func (p *Persister) Held() bool {
	return p.held
}

// Key returns the slot key.
func (p *Persister) Key() string {
	return p.key
}
