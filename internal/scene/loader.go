package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// LoadGraph loads, compiles and validates a scene graph from a .json, .yaml or .yml file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene graph file: %w", err)
	}
	return ParseGraph(data, filepath.Ext(path))
}

// ParseGraph decodes a scene graph. format is a file extension; anything other than
// .yaml/.yml is treated as JSON.
func ParseGraph(data []byte, format string) (*Graph, error) {
	var g Graph
	switch strings.ToLower(format) {
	case ".yaml", ".yml", "yaml", "yml":
		if err := yaml.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to parse scene graph YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to parse scene graph JSON: %w", err)
		}
	}

	if err := Validate(&g); err != nil {
		return nil, err
	}
	g.Compile()
	return &g, nil
}

// Validate checks that the graph is internally consistent: every choice target names an
// existing scene, the start scene exists, ids are unique, and conditions and effects parse.
func Validate(g *Graph) error {
	el := errors.NewErrorList()

	if g.Version != 1 {
		el.Add(fmt.Errorf("unsupported scene graph version: %d", g.Version))
	}
	if len(g.Scenes) == 0 {
		el.Add(fmt.Errorf("scene graph has no scenes"))
		return el.Err()
	}

	ids := make(map[string]bool, len(g.Scenes))
	for _, sc := range g.Scenes {
		if sc.ID == "" {
			el.Add(fmt.Errorf("scene with empty id"))
			continue
		}
		if ids[sc.ID] {
			el.Add(fmt.Errorf("duplicate scene id: %s", sc.ID))
		}
		ids[sc.ID] = true
	}
	if g.Start != "" && !ids[g.Start] {
		el.Add(fmt.Errorf("start scene not found: %s", g.Start))
	}

	for _, sc := range g.Scenes {
		choiceIDs := make(map[string]bool, len(sc.Choices))
		for _, c := range sc.Choices {
			if choiceIDs[c.ID] {
				el.Add(fmt.Errorf("scene %s: duplicate choice id: %s", sc.ID, c.ID))
			}
			choiceIDs[c.ID] = true
			if !ids[c.Target] {
				el.Add(fmt.Errorf("scene %s: choice %s targets unknown scene %q", sc.ID, c.ID, c.Target))
			}
			if err := CheckCondition(c.Condition); err != nil {
				el.Add(fmt.Errorf("scene %s: choice %s: %w", sc.ID, c.ID, err))
			}
			for _, op := range c.Effects {
				if err := op.Check(); err != nil {
					el.Add(fmt.Errorf("scene %s: choice %s: %w", sc.ID, c.ID, err))
				}
			}
		}
	}

	return el.Err()
}

// StartScene returns the configured start scene, or the first scene.
func (g *Graph) StartScene() string {
	if g.Start != "" {
		return g.Start
	}
	if len(g.Scenes) > 0 {
		return g.Scenes[0].ID
	}
	return ""
}
