package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type GameConfig struct {
	Version int            `yaml:"version"`
	Game    GameSection    `yaml:"game"`
	Storage StorageConfig  `yaml:"storage"`
	Input   InputConfig    `yaml:"input"`
	Puzzles []PuzzleConfig `yaml:"puzzles"`
}

type GameSection struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Locale      string `yaml:"locale"`
	Scenes      string `yaml:"scenes"`
	SaveVersion int    `yaml:"save_version"`
}

type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Database    string `yaml:"database"`
	PasswordEnv string `yaml:"password_env"`
}

const (
	PuzzleKeypad   = "keypad"
	PuzzleSequence = "sequence"
)

// PuzzleConfig declares a text-drivable puzzle hosted by the play command.
type PuzzleConfig struct {
	ID               string   `yaml:"id"`
	Kind             string   `yaml:"kind"`
	Code             string   `yaml:"code"`
	MaxLen           int      `yaml:"max_len"`
	AllowLeadingZero bool     `yaml:"allow_leading_zero"`
	Target           []string `yaml:"target"`
	Lives            int      `yaml:"lives"`
}

func (c *PuzzleConfig) Validate() error {
	switch c.Kind {
	case PuzzleKeypad:
		if c.Code == "" {
			return fmt.Errorf("puzzle %q: keypad code is required", c.ID)
		}
		if strings.Trim(c.Code, "0123456789") != "" {
			return fmt.Errorf("puzzle %q: keypad code must be digits", c.ID)
		}
		if c.Code[0] == '0' && !c.AllowLeadingZero {
			return fmt.Errorf("puzzle %q: keypad code %q starts with 0; set allow_leading_zero", c.ID, c.Code)
		}
		if c.MaxLen > 0 && c.MaxLen < len(c.Code) {
			return fmt.Errorf("puzzle %q: max_len %d is shorter than the code", c.ID, c.MaxLen)
		}
	case PuzzleSequence:
		if len(c.Target) == 0 {
			return fmt.Errorf("puzzle %q: sequence target is required", c.ID)
		}
	default:
		return fmt.Errorf("puzzle %q: unknown kind %q", c.ID, c.Kind)
	}
	return nil
}

type MacroConfig struct {
	Name     string   `yaml:"name"`
	Sequence []string `yaml:"sequence"`
}

type InputConfig struct {
	LongPressMS    int           `yaml:"long_press_ms"`
	SwipeThreshold float64       `yaml:"swipe_threshold"`
	DoubleTapMS    int           `yaml:"double_tap_ms"`
	SequenceGapMS  int           `yaml:"sequence_gap_ms"`
	Macros         []MacroConfig `yaml:"macros"`
}

func (c InputConfig) LongPress() time.Duration   { return time.Duration(c.LongPressMS) * time.Millisecond }
func (c InputConfig) DoubleTap() time.Duration   { return time.Duration(c.DoubleTapMS) * time.Millisecond }
func (c InputConfig) SequenceGap() time.Duration { return time.Duration(c.SequenceGapMS) * time.Millisecond }

func (c *GameConfig) applyDefaults() {
	if c.Game.Locale == "" {
		c.Game.Locale = "en"
	}
	if c.Game.SaveVersion == 0 {
		c.Game.SaveVersion = 1
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendFile:
			c.Storage.Path = "saves"
		case BackendSQLite:
			c.Storage.Path = "saves.db"
		}
	}
	if c.Storage.Postgres.Port == 0 {
		c.Storage.Postgres.Port = 5432
	}
	if c.Storage.Postgres.PasswordEnv == "" {
		c.Storage.Postgres.PasswordEnv = "PGPASSWORD"
	}
	if c.Input.LongPressMS == 0 {
		c.Input.LongPressMS = 500
	}
	if c.Input.SwipeThreshold == 0 {
		c.Input.SwipeThreshold = 30
	}
	if c.Input.DoubleTapMS == 0 {
		c.Input.DoubleTapMS = 300
	}
	if c.Input.SequenceGapMS == 0 {
		c.Input.SequenceGapMS = 800
	}
}

func (c *GameConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Version != 1 {
		el.Add(fmt.Errorf("unsupported game.yaml version: %d", c.Version))
	}
	if c.Game.ID == "" {
		el.Add(fmt.Errorf("game.id is required"))
	}
	if c.Game.Scenes == "" {
		el.Add(fmt.Errorf("game.scenes is required"))
	}
	if c.Game.SaveVersion < 0 {
		el.Add(fmt.Errorf("game.save_version must not be negative"))
	}
	el.Add(c.Storage.Validate())
	el.Add(c.Input.Validate())
	seen := make(map[string]bool)
	for i := range c.Puzzles {
		p := &c.Puzzles[i]
		if p.ID == "" {
			el.Add(fmt.Errorf("puzzle %d: id is required", i))
			continue
		}
		if seen[p.ID] {
			el.Add(fmt.Errorf("duplicate puzzle id %q", p.ID))
		}
		seen[p.ID] = true
		el.Add(p.Validate())
	}

	return el.Err()
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage.path is required for %s backend", c.Backend))
		}
	case BackendPostgres:
		if c.Postgres.Port < 0 || c.Postgres.Port > 65535 {
			el.Add(fmt.Errorf("storage.postgres.port out of range: %d", c.Postgres.Port))
		}
	default:
		el.Add(fmt.Errorf("unknown storage backend: %q", c.Backend))
	}

	return el.Err()
}

func (c *InputConfig) Validate() error {
	el := errors.NewErrorList()

	if c.LongPressMS < 0 || c.DoubleTapMS < 0 || c.SequenceGapMS < 0 {
		el.Add(fmt.Errorf("input timings must not be negative"))
	}
	if c.SwipeThreshold < 0 {
		el.Add(fmt.Errorf("input.swipe_threshold must not be negative"))
	}
	seen := make(map[string]bool)
	for i, m := range c.Macros {
		if m.Name == "" {
			el.Add(fmt.Errorf("macro %d: name is required", i))
		}
		if seen[m.Name] {
			el.Add(fmt.Errorf("macro %d: duplicate name %q", i, m.Name))
		}
		seen[m.Name] = true
		if len(m.Sequence) == 0 {
			el.Add(fmt.Errorf("macro %q: sequence is empty", m.Name))
		}
	}

	return el.Err()
}

// LoadGameConfig reads game.yaml, applies defaults and validates it.
// Relative scene and storage paths are resolved against the config file's directory.
func LoadGameConfig(path string) (*GameConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg GameConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	cfg.Game.Scenes = resolvePath(dir, cfg.Game.Scenes)
	if cfg.Storage.Backend == BackendFile || cfg.Storage.Backend == BackendSQLite {
		cfg.Storage.Path = resolvePath(dir, cfg.Storage.Path)
	}

	return &cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
