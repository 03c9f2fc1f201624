package puzzle

// DefaultLives is used when SequenceOptions.Lives is not positive.
const DefaultLives = 3

// SequenceOptions configures a Simon-style puzzle.
type SequenceOptions struct {
	Lives int `json:"lives,omitempty" yaml:"lives,omitempty"`
}

// SequenceState is the state of a Simon-style sequence puzzle.
// Symbols are compared by string value.
type SequenceState struct {
	Target   []string `json:"target"`
	Input    []string `json:"input"`
	Step     int      `json:"step"`
	Mistakes int      `json:"mistakes"`
	Lives    int      `json:"lives"`
	Solved   bool     `json:"solved"`
	Failed   bool     `json:"failed"`
}

// NewSequence creates a sequence puzzle for the given target.
func NewSequence(target []string, opts SequenceOptions) SequenceState {
	lives := opts.Lives
	if lives <= 0 {
		lives = DefaultLives
	}
	return SequenceState{
		Target: append([]string{}, target...),
		Input:  []string{},
		Lives:  lives,
		Solved: len(target) == 0,
	}
}

// PressSeq records one symbol. A wrong symbol costs a life and restarts the round.
func PressSeq(s SequenceState, symbol string) SequenceState {
	if s.Solved || s.Failed {
		return s
	}

	input := append(append([]string{}, s.Input...), symbol)
	pos := len(input) - 1
	if pos >= len(s.Target) || s.Target[pos] != symbol {
		s.Mistakes++
		if s.Lives > 0 {
			s.Lives--
		}
		s.Input = []string{}
		s.Step = 0
		s.Failed = s.Lives == 0
		return s
	}

	s.Input = input
	s.Step++
	s.Solved = s.Step == len(s.Target)
	return s
}

// ResetSeq clears progress and mistakes for a retry within the same life budget.
func ResetSeq(s SequenceState) SequenceState {
	s.Input = []string{}
	s.Step = 0
	s.Mistakes = 0
	return s
}

// RoundExtension describes how the next round grows the target.
// Explicit Symbols win over ExtendBy.
type RoundExtension struct {
	Symbols  []string
	ExtendBy int
}

// NextRoundSeq appends to the target and starts a fresh round.
// With ExtendBy, the last ExtendBy symbols of the current target are repeated.
func NextRoundSeq(s SequenceState, ext RoundExtension) SequenceState {
	target := append([]string{}, s.Target...)
	switch {
	case len(ext.Symbols) > 0:
		target = append(target, ext.Symbols...)
	case ext.ExtendBy > 0:
		n := ext.ExtendBy
		if n > len(s.Target) {
			n = len(s.Target)
		}
		target = append(target, s.Target[len(s.Target)-n:]...)
	}

	s.Target = target
	s.Input = []string{}
	s.Step = 0
	s.Solved = len(target) == 0
	s.Failed = false
	return s
}
