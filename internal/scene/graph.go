package scene

// Graph is the top-level container loaded from a scene file.
type Graph struct {
	Version int     `json:"version" yaml:"version"`
	Start   string  `json:"start" yaml:"start"`
	Scenes  []Scene `json:"scenes" yaml:"scenes"`
}

// Scene is one node of the narrative graph.
type Scene struct {
	ID      string   `json:"id" yaml:"id"`
	Title   Text     `json:"title" yaml:"title"`
	Body    Text     `json:"body,omitempty" yaml:"body,omitempty"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// GuardFunc decides whether a choice is available. It must not modify the state.
type GuardFunc func(GameState) bool

// EffectFunc derives a new state when a choice is taken. It must return a fresh state.
type EffectFunc func(GameState) GameState

// Choice is an edge from a scene to Target.
// Condition and Effects are the serializable forms; Guard and Effect are built from them by
// Compile unless set directly in code.
type Choice struct {
	ID        string     `json:"id" yaml:"id"`
	Text      Text       `json:"text" yaml:"text"`
	Target    string     `json:"target" yaml:"target"`
	Condition string     `json:"condition,omitempty" yaml:"condition,omitempty"`
	Effects   []EffectOp `json:"effects,omitempty" yaml:"effects,omitempty"`

	Guard  GuardFunc  `json:"-" yaml:"-"`
	Effect EffectFunc `json:"-" yaml:"-"`
}

// Compile fills in Guard and Effect for every choice that declares a condition or effects.
func (g *Graph) Compile() {
	for i := range g.Scenes {
		for j := range g.Scenes[i].Choices {
			c := &g.Scenes[i].Choices[j]
			if c.Guard == nil && c.Condition != "" {
				expr := c.Condition
				c.Guard = func(s GameState) bool { return EvalCondition(expr, s) }
			}
			if c.Effect == nil && len(c.Effects) > 0 {
				ops := append([]EffectOp{}, c.Effects...)
				c.Effect = func(s GameState) GameState { return ApplyEffects(ops, s) }
			}
		}
	}
}

// Scene returns the scene with the given id.
func (g *Graph) Scene(id string) (*Scene, bool) {
	for i := range g.Scenes {
		if g.Scenes[i].ID == id {
			return &g.Scenes[i], true
		}
	}
	return nil, false
}

// Choice returns the choice with the given id.
func (s *Scene) Choice(id string) (*Choice, bool) {
	for i := range s.Choices {
		if s.Choices[i].ID == id {
			return &s.Choices[i], true
		}
	}
	return nil, false
}

// Available reports whether the choice's guard passes for st.
func (c *Choice) Available(st GameState) bool {
	return c.Guard == nil || c.Guard(st)
}
