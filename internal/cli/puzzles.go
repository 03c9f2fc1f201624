package cli

import (
	"fmt"
	"strings"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/events"
	"github.com/AaronLay10/pointclick/internal/puzzle"
)

// hostedPuzzle is one text-drivable puzzle instance of a play session.
type hostedPuzzle struct {
	cfg    config.PuzzleConfig
	keypad puzzle.KeypadState
	seq    puzzle.SequenceState
}

func (p *hostedPuzzle) keypadConfig() puzzle.KeypadConfig {
	return puzzle.KeypadConfig{
		Code:             p.cfg.Code,
		MaxLen:           p.cfg.MaxLen,
		AllowLeadingZero: p.cfg.AllowLeadingZero,
	}
}

func (p *hostedPuzzle) reset() {
	switch p.cfg.Kind {
	case config.PuzzleKeypad:
		p.keypad = puzzle.NewKeypad()
	case config.PuzzleSequence:
		p.seq = puzzle.NewSequence(p.cfg.Target, puzzle.SequenceOptions{Lives: p.cfg.Lives})
	}
}

func (p *hostedPuzzle) solved() bool {
	if p.cfg.Kind == config.PuzzleKeypad {
		return p.keypad.Solved
	}
	return p.seq.Solved
}

func (p *hostedPuzzle) status() string {
	switch p.cfg.Kind {
	case config.PuzzleKeypad:
		s := p.keypad
		return fmt.Sprintf("%s [keypad] input=%q attempts=%d solved=%t", p.cfg.ID, s.Input, s.Attempts, s.Solved)
	default:
		s := p.seq
		return fmt.Sprintf("%s [sequence] step=%d/%d lives=%d solved=%t failed=%t",
			p.cfg.ID, s.Step, len(s.Target), s.Lives, s.Solved, s.Failed)
	}
}

// puzzleHost owns the puzzle states of a session and reports outcomes.
type puzzleHost struct {
	puzzles map[string]*hostedPuzzle
	order   []string
	emitter *events.Emitter
}

func newPuzzleHost(cfgs []config.PuzzleConfig, emitter *events.Emitter) *puzzleHost {
	h := &puzzleHost{puzzles: make(map[string]*hostedPuzzle), emitter: emitter}
	for _, c := range cfgs {
		p := &hostedPuzzle{cfg: c}
		p.reset()
		h.puzzles[c.ID] = p
		h.order = append(h.order, c.ID)
	}
	return h
}

func (h *puzzleHost) get(id string) (*hostedPuzzle, error) {
	p, ok := h.puzzles[id]
	if !ok {
		return nil, fmt.Errorf("no puzzle %q", id)
	}
	return p, nil
}

// press feeds one input to a puzzle. It returns true when that input solved it.
func (h *puzzleHost) press(id, key string) (bool, error) {
	p, err := h.get(id)
	if err != nil {
		return false, err
	}
	was := p.solved()
	switch p.cfg.Kind {
	case config.PuzzleKeypad:
		p.keypad = puzzle.PressKey(p.keypad, key, p.keypadConfig())
	case config.PuzzleSequence:
		wasFailed := p.seq.Failed
		p.seq = puzzle.PressSeq(p.seq, key)
		if p.seq.Failed && !wasFailed {
			h.emitter.Info("puzzle.failed", map[string]interface{}{"puzzle_id": id, "mistakes": p.seq.Mistakes})
		}
	}
	return !was && p.solved(), nil
}

// submit checks a keypad's buffer. It returns true when the code was accepted.
func (h *puzzleHost) submit(id string) (bool, error) {
	p, err := h.get(id)
	if err != nil {
		return false, err
	}
	if p.cfg.Kind != config.PuzzleKeypad {
		return false, fmt.Errorf("puzzle %q has no submit", id)
	}
	was := p.keypad.Solved
	p.keypad = puzzle.SubmitKeypad(p.keypad, p.keypadConfig())
	if !p.keypad.Solved {
		h.emitter.Info("puzzle.failed", map[string]interface{}{"puzzle_id": id, "attempts": p.keypad.Attempts})
	}
	return !was && p.keypad.Solved, nil
}

func (h *puzzleHost) reset(id string) error {
	p, err := h.get(id)
	if err != nil {
		return err
	}
	switch p.cfg.Kind {
	case config.PuzzleKeypad:
		p.keypad = puzzle.ClearKeypad(p.keypad)
	case config.PuzzleSequence:
		if p.seq.Failed {
			p.reset()
		} else {
			p.seq = puzzle.ResetSeq(p.seq)
		}
	}
	h.emitter.Info("puzzle.reset", map[string]interface{}{"puzzle_id": id})
	return nil
}

func (h *puzzleHost) describe() string {
	lines := make([]string, 0, len(h.order))
	for _, id := range h.order {
		lines = append(lines, h.puzzles[id].status())
	}
	return strings.Join(lines, "\n")
}
