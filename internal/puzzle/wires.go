package puzzle

import "sort"

// Pair is an ordered terminal pair, left bank to right bank.
type Pair struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Connection is a wire between two terminals.
type Connection struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Color string `json:"color"`
}

// WiresGoal maps a wire color to the pairs that must be joined with that color.
type WiresGoal map[string][]Pair

// WiresState is the state of a wire-matching panel.
type WiresState struct {
	TerminalsLeft  []string     `json:"terminals_left"`
	TerminalsRight []string     `json:"terminals_right"`
	Connections    []Connection `json:"connections"`
	Goal           WiresGoal    `json:"goal"`
	Solved         bool         `json:"solved"`
}

// NewWires creates an unconnected panel.
func NewWires(left, right []string, goal WiresGoal) WiresState {
	g := make(WiresGoal, len(goal))
	for color, pairs := range goal {
		g[color] = append([]Pair{}, pairs...)
	}
	s := WiresState{
		TerminalsLeft:  append([]string{}, left...),
		TerminalsRight: append([]string{}, right...),
		Connections:    []Connection{},
		Goal:           g,
	}
	s.Solved = EvaluateWires(s)
	return s
}

// SetConnection plugs a wire. Any existing wire touching either endpoint is unplugged first.
func SetConnection(s WiresState, from, to, color string) WiresState {
	next := make([]Connection, 0, len(s.Connections)+1)
	for _, c := range s.Connections {
		if c.From == from || c.From == to || c.To == from || c.To == to {
			continue
		}
		next = append(next, c)
	}
	next = append(next, Connection{From: from, To: to, Color: color})

	s.Connections = next
	s.Solved = EvaluateWires(s)
	return s
}

// RemoveConnection unplugs whatever wire touches the endpoint.
func RemoveConnection(s WiresState, endpoint string) WiresState {
	next := make([]Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		if c.From == endpoint || c.To == endpoint {
			continue
		}
		next = append(next, c)
	}
	s.Connections = next
	s.Solved = EvaluateWires(s)
	return s
}

// EvaluateWires reports whether every goal pair is present with its exact color and direction.
func EvaluateWires(s WiresState) bool {
	have := make(map[Connection]struct{}, len(s.Connections))
	for _, c := range s.Connections {
		have[c] = struct{}{}
	}
	for color, pairs := range s.Goal {
		for _, p := range pairs {
			if _, ok := have[Connection{From: p.From, To: p.To, Color: color}]; !ok {
				return false
			}
		}
	}
	return true
}

// HasCrossing reports whether any two wires cross when drawn between the banks.
// Connections whose endpoints are not both known terminals are ignored.
func HasCrossing(s WiresState) bool {
	leftIdx := indexOf(s.TerminalsLeft)
	rightIdx := indexOf(s.TerminalsRight)

	type span struct{ l, r int }
	spans := make([]span, 0, len(s.Connections))
	for _, c := range s.Connections {
		l, lok := leftIdx[c.From]
		r, rok := rightIdx[c.To]
		if !lok || !rok {
			// wire drawn right to left
			l, lok = leftIdx[c.To]
			r, rok = rightIdx[c.From]
		}
		if lok && rok {
			spans = append(spans, span{l, r})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].l < spans[j].l })
	for i := 1; i < len(spans); i++ {
		if spans[i].r < spans[i-1].r {
			return true
		}
	}
	return false
}

// ClearConnections unplugs every wire.
func ClearConnections(s WiresState) WiresState {
	s.Connections = []Connection{}
	s.Solved = false
	return s
}

func indexOf(items []string) map[string]int {
	m := make(map[string]int, len(items))
	for i, it := range items {
		m[it] = i
	}
	return m
}
