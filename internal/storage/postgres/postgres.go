// Package postgres stores saves and engine events in a shared Postgres database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/save"
)

// EventRow represents an event stored in Postgres.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   *string                `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	GameID    string                 `json:"game_id"`
	SessionID *string                `json:"session_id,omitempty"`
}

// Client manages the Postgres connection for saves and events of one game.
type Client struct {
	db     *sql.DB
	gameID string
}

// New connects using cfg, falling back to PG* environment variables for unset fields.
func New(ctx context.Context, cfg config.PostgresConfig, gameID string) (*Client, error) {
	connStr, err := connString(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{
		db:     db,
		gameID: gameID,
	}

	if err := client.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func connString(cfg config.PostgresConfig) (string, error) {
	host := orEnv(cfg.Host, "PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	if cfg.Port != 0 {
		port = strconv.Itoa(cfg.Port)
	}
	user := orEnv(cfg.User, "PGUSER", "pointclick")
	dbname := orEnv(cfg.Database, "PGDATABASE", "pointclick")

	password, err := cfg.Password()
	if err != nil {
		return "", err
	}

	if password != "" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			quoteConnValue(host), quoteConnValue(port), quoteConnValue(user), quoteConnValue(password), quoteConnValue(dbname)), nil
	}
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
		quoteConnValue(host), quoteConnValue(port), quoteConnValue(user), quoteConnValue(dbname)), nil
}

var connValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteConnValue renders v as a single-quoted key/value connection string value.
func quoteConnValue(v string) string {
	return "'" + connValueEscaper.Replace(v) + "'"
}

func orEnv(v, key, defaultVal string) string {
	if v != "" {
		return v
	}
	return getEnv(key, defaultVal)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS saves (
			game_id    TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (game_id, key)
		);
		CREATE TABLE IF NOT EXISTS events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			msg        TEXT,
			fields     JSONB,
			game_id    TEXT NOT NULL,
			session_id TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_events_game_id ON events(game_id);
	`
	_, err := c.db.ExecContext(ctx, query)
	return err
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM saves WHERE game_id = $1 AND key = $2`, c.gameID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, save.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save: %w", err)
	}
	return value, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO saves (game_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (game_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, c.gameID, key, value); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM saves WHERE game_id = $1 AND key = $2`, c.gameID, key); err != nil {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	return nil
}

// Append inserts an event into the database.
func (c *Client) Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var msgPtr *string
	if msg != "" {
		msgPtr = &msg
	}

	var sessionPtr *string
	if sessionID != "" {
		sessionPtr = &sessionID
	}

	query := `
		INSERT INTO events (ts, level, event, msg, fields, game_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = c.db.Exec(query, ts, level, event, msgPtr, fieldsJSON, c.gameID, sessionPtr)
	return err
}

// Query returns the last N events for this game in descending order by timestamp.
func (c *Client) Query(ctx context.Context, limit int) ([]EventRow, error) {
	limit = clampLimit(limit)

	query := `
		SELECT event_id, ts, level, event, msg, fields, game_id, session_id
		FROM events
		WHERE game_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, query, c.gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var msg, sessionID sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &msg, &fieldsJSON, &e.GameID, &sessionID); err != nil {
			return nil, err
		}

		if msg.Valid {
			e.Message = &msg.String
		}
		if sessionID.Valid {
			e.SessionID = &sessionID.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 10000 {
		return 10000
	}
	return limit
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
