package puzzle

import "math"

// Gear is one wheel in a gear train.
type Gear struct {
	ID    string `json:"id" yaml:"id"`
	Teeth int    `json:"teeth" yaml:"teeth"`
}

// Mesh joins two gears whose teeth engage.
type Mesh struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// GearsConfig describes a gear train puzzle.
type GearsConfig struct {
	Gears       []Gear  `json:"gears" yaml:"gears"`
	Meshes      []Mesh  `json:"meshes" yaml:"meshes"`
	InputID     string  `json:"input" yaml:"input"`
	OutputID    string  `json:"output" yaml:"output"`
	TargetRatio float64 `json:"target_ratio" yaml:"target_ratio"`
	Tolerance   float64 `json:"tolerance" yaml:"tolerance"`
}

// GearsState is the state of a gear train puzzle.
type GearsState struct {
	Gears       []Gear  `json:"gears"`
	Meshes      []Mesh  `json:"meshes"`
	InputID     string  `json:"input"`
	OutputID    string  `json:"output"`
	TargetRatio float64 `json:"target_ratio"`
	Tolerance   float64 `json:"tolerance"`
	Ratio       float64 `json:"ratio"`
	Connected   bool    `json:"connected"`
	Solved      bool    `json:"solved"`
}

// NewGears creates and evaluates a gear train.
func NewGears(cfg GearsConfig) GearsState {
	return EvaluateGears(GearsState{
		Gears:       append([]Gear{}, cfg.Gears...),
		Meshes:      append([]Mesh{}, cfg.Meshes...),
		InputID:     cfg.InputID,
		OutputID:    cfg.OutputID,
		TargetRatio: cfg.TargetRatio,
		Tolerance:   math.Abs(cfg.Tolerance),
	})
}

// SetGearsTeeth swaps the teeth count of one gear. It does not re-evaluate.
// Non-positive counts and unknown gears are ignored.
func SetGearsTeeth(s GearsState, gearID string, teeth int) GearsState {
	if teeth <= 0 {
		return s
	}
	gears := append([]Gear{}, s.Gears...)
	for i := range gears {
		if gears[i].ID == gearID {
			gears[i].Teeth = teeth
			s.Gears = gears
			return s
		}
	}
	return s
}

// EvaluateGears computes the train ratio and solved flag.
//
// Along a chain of external meshes every idler's teeth appear once as a driven gear and once
// as a driver, so the ratio reduces to teeth(input)/teeth(output). Branching trains use the
// first path found from input to output.
func EvaluateGears(s GearsState) GearsState {
	teeth := make(map[string]int, len(s.Gears))
	for _, g := range s.Gears {
		teeth[g.ID] = g.Teeth
	}

	in, inOK := teeth[s.InputID]
	out, outOK := teeth[s.OutputID]
	s.Connected = inOK && outOK && in > 0 && out > 0 && meshPath(s.Meshes, s.InputID, s.OutputID)
	if !s.Connected {
		s.Ratio = 0
		s.Solved = false
		return s
	}

	s.Ratio = float64(in) / float64(out)
	s.Solved = math.Abs(s.Ratio-s.TargetRatio) <= s.Tolerance
	return s
}

func meshPath(meshes []Mesh, from, to string) bool {
	if from == to {
		return true
	}
	adj := make(map[string][]string)
	for _, m := range meshes {
		adj[m.A] = append(adj[m.A], m.B)
		adj[m.B] = append(adj[m.B], m.A)
	}

	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
