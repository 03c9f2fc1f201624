package puzzle

import "testing"

func scenarioWires() WiresState {
	return NewWires(
		[]string{"A1", "A2"},
		[]string{"B1", "B2"},
		WiresGoal{
			"red":  {{From: "A1", To: "B2"}},
			"blue": {{From: "A2", To: "B1"}},
		},
	)
}

func TestWiresSolveAndCrossing(t *testing.T) {
	s := scenarioWires()
	s = SetConnection(s, "A2", "B1", "blue")
	if s.Solved {
		t.Errorf("expected unsolved with one wire")
	}

	s = SetConnection(s, "A1", "B2", "red")
	if !s.Solved {
		t.Errorf("expected solved, connections %+v", s.Connections)
	}
	if !HasCrossing(s) {
		t.Errorf("expected crossing for A1->B2, A2->B1")
	}
}

func TestWiresOrderIndependent(t *testing.T) {
	a := SetConnection(SetConnection(scenarioWires(), "A1", "B2", "red"), "A2", "B1", "blue")
	b := SetConnection(SetConnection(scenarioWires(), "A2", "B1", "blue"), "A1", "B2", "red")
	if a.Solved != b.Solved || !a.Solved {
		t.Errorf("expected both orders solved, got %v and %v", a.Solved, b.Solved)
	}
}

func TestWiresExactMatchRequired(t *testing.T) {
	s := scenarioWires()
	s = SetConnection(s, "A1", "B2", "blue")
	s = SetConnection(s, "A2", "B1", "blue")
	if s.Solved {
		t.Errorf("wrong color should not solve")
	}

	s = scenarioWires()
	s = SetConnection(s, "B2", "A1", "red")
	s = SetConnection(s, "A2", "B1", "blue")
	if s.Solved {
		t.Errorf("reversed direction should not solve")
	}
}

func TestWiresEndpointReplacement(t *testing.T) {
	s := scenarioWires()
	s = SetConnection(s, "A1", "B1", "red")
	s = SetConnection(s, "A2", "B1", "blue")

	if len(s.Connections) != 1 {
		t.Fatalf("expected 1 connection after reuse of B1, got %+v", s.Connections)
	}
	if s.Connections[0].From != "A2" {
		t.Errorf("expected newer wire to win, got %+v", s.Connections[0])
	}

	s = SetConnection(s, "A2", "B2", "green")
	if len(s.Connections) != 1 || s.Connections[0].To != "B2" {
		t.Errorf("expected A2 rewired to B2, got %+v", s.Connections)
	}
}

func TestWiresNoCrossing(t *testing.T) {
	s := scenarioWires()
	s = SetConnection(s, "A1", "B1", "red")
	s = SetConnection(s, "A2", "B2", "red")
	if HasCrossing(s) {
		t.Errorf("parallel wires should not cross")
	}
}

func TestRemoveAndClearConnections(t *testing.T) {
	s := SetConnection(SetConnection(scenarioWires(), "A1", "B2", "red"), "A2", "B1", "blue")
	s = RemoveConnection(s, "B1")
	if s.Solved || len(s.Connections) != 1 {
		t.Errorf("expected one wire left and unsolved, got %+v", s)
	}

	s = ClearConnections(s)
	if s.Solved || len(s.Connections) != 0 {
		t.Errorf("expected cleared panel, got %+v", s)
	}
}
