package scene

import (
	"fmt"

	"github.com/AaronLay10/pointclick/internal/events"
)

// Snapshotter receives the state after every transition.
type Snapshotter interface {
	Snapshot(GameState)
}

// EnterHook runs once each time a scene is activated.
type EnterHook func(sc *Scene, s GameState)

// Runtime drives a scene graph for one mounted game.
type Runtime struct {
	graph   *Graph
	state   GameState
	started bool
	hooks   []EnterHook
	snap    Snapshotter
	emitter *events.Emitter
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithSnapshotter persists the state after every transition.
func WithSnapshotter(s Snapshotter) RuntimeOption {
	return func(r *Runtime) { r.snap = s }
}

// WithEmitter reports scene activity to e.
func WithEmitter(e *events.Emitter) RuntimeOption {
	return func(r *Runtime) { r.emitter = e }
}

// NewRuntime creates a runtime for g. Call Start before dispatching.
func NewRuntime(g *Graph, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		graph: g,
		state: NewGameState(g.StartScene()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnEnter registers a hook fired once per scene activation.
func (r *Runtime) OnEnter(hook EnterHook) {
	r.hooks = append(r.hooks, hook)
}

// Start mounts the game from initial state. An empty scene starts at the graph's start scene.
func (r *Runtime) Start(initial GameState) error {
	if initial.Scene == "" {
		initial.Scene = r.graph.StartScene()
	}
	if _, ok := r.graph.Scene(initial.Scene); !ok {
		return fmt.Errorf("scene not found: %s", initial.Scene)
	}
	if initial.Flags == nil {
		initial.Flags = map[string]any{}
	}
	if initial.Inventory == nil {
		initial.Inventory = []string{}
	}
	r.started = true
	r.Dispatch(Load(initial))
	return nil
}

// Dispatch applies an action, fires enter hooks on scene activation and snapshots the result.
func (r *Runtime) Dispatch(a Action) GameState {
	r.state = Transition(r.state, a)

	switch a.Kind {
	case ActionGo, ActionLoad:
		r.enter()
	case ActionSetFlag:
		r.emitter.Info("flag.set", map[string]interface{}{"key": a.Key, "value": a.Value})
	}

	if r.snap != nil {
		r.snap.Snapshot(r.state.Clone())
	}
	return r.State()
}

// Choose takes a choice on the current scene. It returns false when the choice does not exist
// or its guard fails; the state is unchanged in that case.
func (r *Runtime) Choose(choiceID string) bool {
	sc, ok := r.graph.Scene(r.state.Scene)
	if !ok {
		return false
	}
	c, ok := sc.Choice(choiceID)
	if !ok || !c.Available(r.state) {
		r.emitter.Info("scene.choice_blocked", map[string]interface{}{
			"scene_id":  sc.ID,
			"choice_id": choiceID,
		})
		return false
	}

	next, st := NextScene(sc, choiceID, r.state)
	r.emitter.Info("scene.choice", map[string]interface{}{
		"scene_id":  sc.ID,
		"choice_id": choiceID,
		"target":    next,
	})
	r.state = st
	r.Dispatch(Go(next))
	return true
}

// MarkSolved records a solved puzzle so guards can react to it.
func (r *Runtime) MarkSolved(puzzleID string) {
	if truthy(r.state.Flags[SolvedFlag(puzzleID)]) {
		return
	}
	r.emitter.Info("puzzle.solved", map[string]interface{}{
		"puzzle_id": puzzleID,
		"scene_id":  r.state.Scene,
	})
	r.Dispatch(SetFlag(SolvedFlag(puzzleID), true))
}

// Current returns the active scene and state without firing hooks.
func (r *Runtime) Current() (*Scene, GameState) {
	sc, _ := r.graph.Scene(r.state.Scene)
	return sc, r.State()
}

// AvailableChoices returns the choices whose guards pass.
func (r *Runtime) AvailableChoices() []Choice {
	sc, ok := r.graph.Scene(r.state.Scene)
	if !ok {
		return nil
	}
	out := make([]Choice, 0, len(sc.Choices))
	for _, c := range sc.Choices {
		if c.Available(r.state) {
			out = append(out, c)
		}
	}
	return out
}

// State returns a copy of the current state.
func (r *Runtime) State() GameState {
	return r.state.Clone()
}

// Started reports whether Start has been called.
func (r *Runtime) Started() bool {
	return r.started
}

func (r *Runtime) enter() {
	sc, ok := r.graph.Scene(r.state.Scene)
	if !ok {
		return
	}
	r.emitter.Info("scene.entered", map[string]interface{}{"scene_id": sc.ID})
	for _, hook := range r.hooks {
		hook(sc, r.State())
	}
}
