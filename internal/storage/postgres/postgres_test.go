package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/events"
	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
)

func TestConnStringFromConfig(t *testing.T) {
	t.Setenv("PGHOST", "envhost")
	t.Setenv("PGUSER", "")
	t.Setenv("TEST_PG_PASSWORD", "s3cret")

	got, err := connString(config.PostgresConfig{
		Host:        "db.local",
		Port:        6543,
		Database:    "games",
		PasswordEnv: "TEST_PG_PASSWORD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"host='db.local'", "port='6543'", "user='pointclick'", "password='s3cret'", "dbname='games'"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestConnStringEnvFallback(t *testing.T) {
	t.Setenv("PGHOST", "envhost")
	t.Setenv("PGPORT", "5433")
	t.Setenv("NO_SUCH_PASSWORD", "")

	got, err := connString(config.PostgresConfig{PasswordEnv: "NO_SUCH_PASSWORD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "host='envhost'") || !strings.Contains(got, "port='5433'") {
		t.Errorf("expected env host and port, got %q", got)
	}
	if strings.Contains(got, "password=") {
		t.Errorf("expected no password, got %q", got)
	}
}

func TestConnStringQuotesValues(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", `it's a\pass word`)

	got, err := connString(config.PostgresConfig{
		Host:        "db.local",
		User:        "game master",
		PasswordEnv: "TEST_PG_PASSWORD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`password='it\'s a\\pass word'`, `user='game master'`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestQuoteConnValue(t *testing.T) {
	tests := map[string]string{
		"":        "''",
		"plain":   "'plain'",
		"a b":     "'a b'",
		"o'brien": `'o\'brien'`,
		`back\`:   `'back\\'`,
	}
	for in, want := range tests {
		testutil.AssertEqual(t, in, quoteConnValue(in), want)
	}
}

func TestConnStringSecretFileError(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD_FILE", "/nonexistent/secret")

	_, err := connString(config.PostgresConfig{PasswordEnv: "TEST_PG_PASSWORD"})
	testutil.AssertErrorContains(t, err, "failed to read secret")
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 200},
		{-5, 200},
		{50, 50},
		{20000, 10000},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, "limit", clampLimit(tt.in), tt.want)
	}
}

func openTestClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("PGHOST") == "" {
		t.Skip("PGHOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := New(ctx, config.PostgresConfig{PasswordEnv: "PGPASSWORD"}, "test-"+uuid.NewString())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_, _ = c.db.Exec(`DELETE FROM saves WHERE game_id = $1`, c.gameID)
		_, _ = c.db.Exec(`DELETE FROM events WHERE game_id = $1`, c.gameID)
		_ = c.Close()
	})
	return c
}

func TestClientSaves(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "slot"); !errors.Is(err, save.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := c.Set(ctx, "slot", []byte(`{"v":1,"data":{}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "slot")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	testutil.AssertEqual(t, "value", string(got), `{"v":1,"data":{}}`)

	if err := c.Delete(ctx, "slot"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestClientEventSink(t *testing.T) {
	c := openTestClient(t)

	em := events.NewEmitter(events.WithSink(c), events.WithSessionID("sess-1"))
	em.Info("scene.entered", map[string]interface{}{"scene_id": "hall"})

	rows, err := c.Query(context.Background(), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	testutil.AssertEqual(t, "row count", len(rows), 1)
	testutil.AssertEqual(t, "event", rows[0].Event, "scene.entered")
	if rows[0].SessionID == nil || *rows[0].SessionID != "sess-1" {
		t.Errorf("expected session sess-1, got %v", rows[0].SessionID)
	}
}
