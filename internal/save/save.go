// Package save stores versioned game payloads in a key-value store and upgrades them through
// forward-only migrations. Storage failures never reach the caller as errors; they are reported
// through the events emitter and degrade to "no value".
package save

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AaronLay10/pointclick/internal/events"
)

// ErrNotFound is returned by a KV when the key holds no value.
var ErrNotFound = errors.New("not found")

// KV is the byte store saves are written to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Payload is the stored envelope.
type Payload struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

// Migration upgrades data from one version to the next.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// Migrations maps a source version to the step that produces version+1.
type Migrations map[int]Migration

// SlotKey returns the save slot key for a game id.
func SlotKey(game string) string {
	return game + ":save:v1"
}

// Versioned reads and writes payloads in a KV.
type Versioned struct {
	kv      KV
	emitter *events.Emitter
}

// New wraps kv. The emitter may be nil.
func New(kv KV, emitter *events.Emitter) *Versioned {
	return &Versioned{kv: kv, emitter: emitter}
}

// Save serializes data at version v. It returns false on any failure.
func (s *Versioned) Save(ctx context.Context, key string, v int, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		s.emitter.Error("save.failed", fmt.Errorf("marshal data: %w", err), map[string]interface{}{"key": key})
		return false
	}
	return s.write(ctx, key, Payload{V: v, Data: raw})
}

func (s *Versioned) write(ctx context.Context, key string, p Payload) bool {
	b, err := json.Marshal(p)
	if err != nil {
		s.emitter.Error("save.failed", fmt.Errorf("marshal payload: %w", err), map[string]interface{}{"key": key})
		return false
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		s.emitter.Error("save.failed", err, map[string]interface{}{"key": key})
		return false
	}
	s.emitter.Info("save.written", map[string]interface{}{"key": key, "v": p.V})
	return true
}

// Load reads the payload at key. A malformed payload, or one whose version is not a number,
// is deleted and reported as absent.
func (s *Versioned) Load(ctx context.Context, key string) (*Payload, bool) {
	b, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.emitter.Error("save.failed", fmt.Errorf("read: %w", err), map[string]interface{}{"key": key})
		}
		return nil, false
	}

	p, err := decodePayload(b)
	if err != nil {
		s.emitter.Error("save.corrupt", err, map[string]interface{}{"key": key})
		if err := s.kv.Delete(ctx, key); err != nil {
			s.emitter.Error("save.failed", fmt.Errorf("delete corrupt payload: %w", err), map[string]interface{}{"key": key})
		}
		return nil, false
	}
	return p, true
}

// Clear removes the payload at key.
func (s *Versioned) Clear(ctx context.Context, key string) bool {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.emitter.Error("save.failed", fmt.Errorf("delete: %w", err), map[string]interface{}{"key": key})
		return false
	}
	return true
}

// decodePayload requires an object with an integral numeric "v" and a "data" member.
func decodePayload(b []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	vRaw, ok := raw["v"]
	if !ok {
		return nil, errors.New("payload has no version")
	}
	// null unmarshals into a float64 without error, so require a number token.
	var v float64
	if !isNumberToken(vRaw) || json.Unmarshal(vRaw, &v) != nil {
		return nil, fmt.Errorf("payload version is not a number: %s", vRaw)
	}
	if v != float64(int(v)) {
		return nil, fmt.Errorf("payload version is not an integer: %s", vRaw)
	}
	data, ok := raw["data"]
	if !ok {
		return nil, errors.New("payload has no data")
	}
	return &Payload{V: int(v), Data: data}, nil
}

func isNumberToken(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9'))
}

// LoadWithMigrations loads key and upgrades it to target one version at a time.
// A missing step, a failing step, or a stored version newer than target yields no value and
// leaves the store untouched. A successful upgrade is written back at target.
func LoadWithMigrations[T any](ctx context.Context, s *Versioned, key string, target int, migrations Migrations) (T, bool) {
	var zero T

	p, ok := s.Load(ctx, key)
	if !ok {
		return zero, false
	}
	if p.V > target {
		s.emitter.Error("save.failed", fmt.Errorf("stored version %d is newer than %d", p.V, target), map[string]interface{}{"key": key})
		return zero, false
	}

	data := p.Data
	for v := p.V; v < target; v++ {
		step, ok := migrations[v]
		if !ok {
			s.emitter.Error("save.failed", fmt.Errorf("no migration from version %d", v), map[string]interface{}{"key": key})
			return zero, false
		}
		next, err := step(data)
		if err != nil {
			s.emitter.Error("save.failed", fmt.Errorf("migration from version %d: %w", v, err), map[string]interface{}{"key": key})
			return zero, false
		}
		data = next
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		s.emitter.Error("save.failed", fmt.Errorf("decode version %d data: %w", target, err), map[string]interface{}{"key": key})
		return zero, false
	}

	if p.V != target {
		if s.write(ctx, key, Payload{V: target, Data: data}) {
			s.emitter.Info("save.migrated", map[string]interface{}{"key": key, "from": p.V, "to": target})
		}
	}
	return out, true
}
