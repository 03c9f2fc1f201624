package scene

// GameState is the scene engine's state: the current scene plus the blackboard.
type GameState struct {
	Scene     string         `json:"scene"`
	Flags     map[string]any `json:"flags"`
	Inventory []string       `json:"inventory"`
}

// NewGameState returns an empty state positioned at scene.
func NewGameState(scene string) GameState {
	return GameState{
		Scene:     scene,
		Flags:     map[string]any{},
		Inventory: []string{},
	}
}

// Clone returns a copy that shares no maps or slices with s.
func (s GameState) Clone() GameState {
	flags := make(map[string]any, len(s.Flags))
	for k, v := range s.Flags {
		flags[k] = v
	}
	return GameState{
		Scene:     s.Scene,
		Flags:     flags,
		Inventory: append([]string{}, s.Inventory...),
	}
}

// Flag returns a flag value.
func (s GameState) Flag(key string) (any, bool) {
	v, ok := s.Flags[key]
	return v, ok
}

// HasItem reports whether item is in the inventory.
func (s GameState) HasItem(item string) bool {
	for _, it := range s.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// ActionKind names a state transition.
type ActionKind string

const (
	ActionGo      ActionKind = "GO"
	ActionSetFlag ActionKind = "SET_FLAG"
	ActionLoad    ActionKind = "LOAD"
)

// Action is a serializable request to change GameState.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Scene string     `json:"scene,omitempty"`
	Key   string     `json:"key,omitempty"`
	Value any        `json:"value,omitempty"`
	State *GameState `json:"state,omitempty"`
}

// Go moves to scene next.
func Go(next string) Action {
	return Action{Kind: ActionGo, Scene: next}
}

// SetFlag sets flag key to value.
func SetFlag(key string, value any) Action {
	return Action{Kind: ActionSetFlag, Key: key, Value: value}
}

// Load replaces the whole state, as when resuming a save.
func Load(state GameState) Action {
	return Action{Kind: ActionLoad, State: &state}
}

// Transition applies an action and returns the new state. It never fails:
// unknown actions, and LOAD without a payload, return the state unchanged.
func Transition(s GameState, a Action) GameState {
	switch a.Kind {
	case ActionGo:
		next := s.Clone()
		next.Scene = a.Scene
		return next
	case ActionSetFlag:
		next := s.Clone()
		next.Flags[a.Key] = a.Value
		return next
	case ActionLoad:
		if a.State == nil {
			return s
		}
		return a.State.Clone()
	default:
		return s
	}
}

// NextScene resolves a choice on the current scene.
// An unknown choice or a failing guard leaves both the scene id and the state unchanged.
func NextScene(sc *Scene, choiceID string, s GameState) (string, GameState) {
	c, ok := sc.Choice(choiceID)
	if !ok || !c.Available(s) {
		return sc.ID, s
	}
	if c.Effect != nil {
		s = c.Effect(s.Clone())
	}
	return c.Target, s
}
