package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/events"
	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/AaronLay10/pointclick/internal/storage/file"
	"github.com/AaronLay10/pointclick/internal/storage/memory"
	"github.com/AaronLay10/pointclick/internal/storage/postgres"
	"github.com/AaronLay10/pointclick/internal/storage/sqlite"
)

// backend is an opened save store. sink is set when the store can also persist events.
type backend struct {
	kv    save.KV
	sink  events.Sink
	close func() error
}

func openBackend(ctx context.Context, cfg *config.GameConfig) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return &backend{kv: memory.New(), close: func() error { return nil }}, nil
	case config.BackendFile:
		s, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &backend{kv: s, close: func() error { return nil }}, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &backend{kv: s, close: s.Close}, nil
	case config.BackendPostgres:
		c, err := postgres.New(ctx, cfg.Storage.Postgres, cfg.Game.ID)
		if err != nil {
			return nil, err
		}
		return &backend{kv: c, sink: c, close: c.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

func newEmitter(opts *RootOptions, stderr io.Writer, sessionID string, sink events.Sink) *events.Emitter {
	eopts := []events.Option{events.WithSessionID(sessionID)}
	if !opts.Quiet {
		eopts = append(eopts, events.WithWriter(stderr))
	}
	if sink != nil {
		eopts = append(eopts, events.WithSink(sink))
	}
	return events.NewEmitter(eopts...)
}
