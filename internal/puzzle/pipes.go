package puzzle

import "fmt"

// TileType is the shape of a pipe tile.
type TileType string

const (
	TileEmpty    TileType = "empty"
	TileStraight TileType = "straight"
	TileElbow    TileType = "elbow"
	TileValve    TileType = "valve"
	TileEndcap   TileType = "endcap"
)

// Dir is a connector direction bit.
type Dir uint8

const (
	North Dir = 1 << iota
	East
	South
	West
)

var allDirs = [4]Dir{North, East, South, West}

func (d Dir) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

func (d Dir) opposite() Dir {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	default:
		return East
	}
}

func (d Dir) offset() (int, int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

// baseMask returns the unrotated connectors of a tile type.
func baseMask(t TileType) Dir {
	switch t {
	case TileStraight, TileValve:
		return North | South
	case TileElbow:
		return North | East
	case TileEndcap:
		return North
	default:
		return 0
	}
}

// rotateMask turns a connector mask clockwise by a multiple of 90 degrees.
func rotateMask(m Dir, rotation int) Dir {
	for i := 0; i < normalizeRotation(rotation)/90; i++ {
		m = ((m << 1) | (m >> 3)) & 0x0f
	}
	return m
}

func normalizeRotation(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	return r - r%90
}

// Tile is one cell of the pipe grid.
type Tile struct {
	Type     TileType `json:"type" yaml:"type"`
	Rotation int      `json:"rotation" yaml:"rotation"`
	Source   bool     `json:"source,omitempty" yaml:"source,omitempty"`
	Sink     bool     `json:"sink,omitempty" yaml:"sink,omitempty"`
	Open     bool     `json:"open,omitempty" yaml:"open,omitempty"`
}

// Connectors returns the tile's rotated connector mask.
func (t Tile) Connectors() Dir {
	return rotateMask(baseMask(t.Type), t.Rotation)
}

func (t Tile) passable() bool {
	if t.Type == TileEmpty || t.Type == "" {
		return false
	}
	return t.Type != TileValve || t.Open
}

func (t Tile) terminal() bool {
	return t.Source || t.Sink
}

// PipeErrorKind classifies a flow problem.
type PipeErrorKind string

const (
	PipeLeak         PipeErrorKind = "leak"
	PipeValveClosed  PipeErrorKind = "valve_closed"
	PipeUnreached    PipeErrorKind = "unreached"
	PipeDisconnected PipeErrorKind = "disconnected"
)

// PipeError locates one flow problem on the grid.
type PipeError struct {
	Kind PipeErrorKind `json:"kind"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
	Dir  Dir           `json:"dir,omitempty"`
}

func (e PipeError) String() string {
	switch e.Kind {
	case PipeLeak:
		return fmt.Sprintf("leak at (%d,%d) facing %s", e.X, e.Y, e.Dir)
	case PipeValveClosed:
		return fmt.Sprintf("valve closed at (%d,%d)", e.X, e.Y)
	case PipeUnreached:
		return fmt.Sprintf("sink at (%d,%d) not reached", e.X, e.Y)
	default:
		return fmt.Sprintf("source at (%d,%d) does not reach every sink", e.X, e.Y)
	}
}

// PipesState is the state of a pipe-flow grid. Tiles are stored row-major.
type PipesState struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Tiles  []Tile      `json:"tiles"`
	Errors []PipeError `json:"errors"`
	Solved bool        `json:"solved"`
}

// NewPipes builds a grid and evaluates it. Missing tiles are empty; extra tiles are dropped.
func NewPipes(width, height int, tiles []Tile) PipesState {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	grid := make([]Tile, width*height)
	for i := range grid {
		if i < len(tiles) {
			grid[i] = tiles[i]
			grid[i].Rotation = normalizeRotation(tiles[i].Rotation)
		}
		if grid[i].Type == "" {
			grid[i].Type = TileEmpty
		}
	}
	return EvaluatePipes(PipesState{Width: width, Height: height, Tiles: grid})
}

// Tile returns the tile at x,y.
func (s PipesState) Tile(x, y int) (Tile, bool) {
	if !s.inBounds(x, y) {
		return Tile{}, false
	}
	return s.Tiles[y*s.Width+x], true
}

// ErrorStrings renders the errors for display.
func (s PipesState) ErrorStrings() []string {
	out := make([]string, 0, len(s.Errors))
	for _, e := range s.Errors {
		out = append(out, e.String())
	}
	return out
}

func (s PipesState) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Width && y < s.Height
}

// ToggleValve opens or closes the valve at x,y. Other tiles are left alone.
func ToggleValve(s PipesState, x, y int, open bool) PipesState {
	return updateTile(s, x, y, func(t *Tile) {
		if t.Type == TileValve {
			t.Open = open
		}
	})
}

// SetTileRotation sets the rotation of the tile at x,y.
func SetTileRotation(s PipesState, x, y, rotation int) PipesState {
	return updateTile(s, x, y, func(t *Tile) {
		t.Rotation = normalizeRotation(rotation)
	})
}

// RotateTile turns the tile at x,y a quarter turn clockwise.
func RotateTile(s PipesState, x, y int) PipesState {
	return updateTile(s, x, y, func(t *Tile) {
		t.Rotation = normalizeRotation(t.Rotation + 90)
	})
}

func updateTile(s PipesState, x, y int, fn func(*Tile)) PipesState {
	if !s.inBounds(x, y) {
		return s
	}
	tiles := append([]Tile{}, s.Tiles...)
	fn(&tiles[y*s.Width+x])
	s.Tiles = tiles
	return EvaluatePipes(s)
}

// EvaluatePipes floods from every source and records leaks, closed valves and unreached sinks.
// The grid is solved when each source reaches every sink and nothing on a flowing path leaks.
func EvaluatePipes(s PipesState) PipesState {
	var sources, sinks []int
	for i, t := range s.Tiles {
		if t.Source {
			sources = append(sources, i)
		}
		if t.Sink {
			sinks = append(sinks, i)
		}
	}

	flowing := make([]bool, len(s.Tiles))
	allReachSinks := true
	var disconnected []int
	for _, src := range sources {
		seen := s.flood(src)
		for i, ok := range seen {
			if ok {
				flowing[i] = true
			}
		}
		for _, sink := range sinks {
			if !seen[sink] {
				allReachSinks = false
				disconnected = append(disconnected, src)
				break
			}
		}
	}

	var errs []PipeError
	closed := make(map[int]bool)
	for i, t := range s.Tiles {
		if !flowing[i] {
			continue
		}
		x, y := i%s.Width, i/s.Width
		conns := t.Connectors()
		for _, d := range allDirs {
			if conns&d == 0 {
				continue
			}
			dx, dy := d.offset()
			nx, ny := x+dx, y+dy
			if s.inBounds(nx, ny) {
				n := s.Tiles[ny*s.Width+nx]
				if n.Connectors()&d.opposite() != 0 {
					if n.Type == TileValve && !n.Open && !closed[ny*s.Width+nx] {
						closed[ny*s.Width+nx] = true
						errs = append(errs, PipeError{Kind: PipeValveClosed, X: nx, Y: ny})
					}
					continue
				}
			}
			if t.terminal() {
				continue
			}
			errs = append(errs, PipeError{Kind: PipeLeak, X: x, Y: y, Dir: d})
		}
	}

	leaks := 0
	for _, e := range errs {
		if e.Kind == PipeLeak {
			leaks++
		}
	}
	for _, sink := range sinks {
		if !flowing[sink] {
			errs = append(errs, PipeError{Kind: PipeUnreached, X: sink % s.Width, Y: sink / s.Width})
		}
	}
	for _, src := range disconnected {
		errs = append(errs, PipeError{Kind: PipeDisconnected, X: src % s.Width, Y: src / s.Width})
	}

	s.Errors = errs
	s.Solved = len(sources) > 0 && len(sinks) > 0 && allReachSinks && leaks == 0
	return s
}

// flood returns the tiles reachable from start through reciprocal, passable connectors.
func (s PipesState) flood(start int) []bool {
	seen := make([]bool, len(s.Tiles))
	if !s.Tiles[start].passable() {
		return seen
	}
	seen[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%s.Width, i/s.Width
		conns := s.Tiles[i].Connectors()
		for _, d := range allDirs {
			if conns&d == 0 {
				continue
			}
			dx, dy := d.offset()
			nx, ny := x+dx, y+dy
			if !s.inBounds(nx, ny) {
				continue
			}
			j := ny*s.Width + nx
			n := s.Tiles[j]
			if seen[j] || !n.passable() || n.Connectors()&d.opposite() == 0 {
				continue
			}
			seen[j] = true
			queue = append(queue, j)
		}
	}
	return seen
}
