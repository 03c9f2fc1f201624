package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AaronLay10/pointclick/internal/events"
	"github.com/AaronLay10/pointclick/internal/input"
	"github.com/AaronLay10/pointclick/internal/scene"
)

const helpText = `commands:
  <n>                      take the n-th listed choice
  look                     describe the current scene again
  inv                      list inventory
  puzzles                  show puzzle progress
  press <puzzle> <key>     press a key or symbol
  submit <puzzle>          submit a keypad code
  reset <puzzle>           clear puzzle input
  solve <puzzle>           mark a puzzle solved
  down|move|up <id> <x> <y>  pointer events
  cancel <id>              abandon a pointer
  quit`

// session runs the text loop over one runtime. All runtime access happens on the loop
// goroutine; macro matches from the detector are queued and applied between lines.
type session struct {
	out      io.Writer
	locale   string
	rt       *scene.Runtime
	detector *input.Detector
	puzzles  *puzzleHost
	emitter  *events.Emitter
	macros   chan input.Match
}

func newSession(out io.Writer, locale string, rt *scene.Runtime, d *input.Detector, p *puzzleHost, em *events.Emitter) *session {
	s := &session{
		out:      out,
		locale:   locale,
		rt:       rt,
		detector: d,
		puzzles:  p,
		emitter:  em,
		macros:   make(chan input.Match, 16),
	}
	d.OnMacro(func(m input.Match) {
		select {
		case s.macros <- m:
		default:
		}
	})
	rt.OnEnter(func(sc *scene.Scene, _ scene.GameState) {
		s.describe(sc)
	})
	return s
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) describe(sc *scene.Scene) {
	s.printf("\n== %s ==\n", sc.Title.Resolve(s.locale))
	if body := sc.Body.Resolve(s.locale); body != "" {
		s.printf("%s\n", body)
	}
	choices := s.rt.AvailableChoices()
	if len(choices) == 0 {
		s.printf("(no way onward)\n")
		return
	}
	for i, c := range choices {
		s.printf("  %d) %s\n", i+1, c.Text.Resolve(s.locale))
	}
}

// run reads commands until quit or EOF.
func (s *session) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		s.printf("> ")
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}
		quit, err := s.exec(strings.Fields(scanner.Text()))
		if err != nil {
			s.printf("%v\n", err)
		}
		s.drainMacros()
		if quit {
			return nil
		}
	}
}

func (s *session) exec(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		return false, s.chooseIndex(n)
	}

	switch args[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		s.printf("%s\n", helpText)
	case "look":
		sc, _ := s.rt.Current()
		if sc != nil {
			s.describe(sc)
		}
	case "inv":
		st := s.rt.State()
		if len(st.Inventory) == 0 {
			s.printf("(empty)\n")
		} else {
			s.printf("%s\n", strings.Join(st.Inventory, ", "))
		}
	case "puzzles":
		s.printf("%s\n", s.puzzles.describe())
	case "press":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: press <puzzle> <key>")
		}
		solved, err := s.puzzles.press(args[1], args[2])
		if err != nil {
			return false, err
		}
		s.afterPuzzle(args[1], solved)
	case "submit":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: submit <puzzle>")
		}
		solved, err := s.puzzles.submit(args[1])
		if err != nil {
			return false, err
		}
		s.afterPuzzle(args[1], solved)
	case "reset":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: reset <puzzle>")
		}
		return false, s.puzzles.reset(args[1])
	case "solve":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: solve <puzzle>")
		}
		s.markSolved(args[1])
	case "down", "move", "up":
		return false, s.pointer(args)
	case "cancel":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: cancel <id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("bad pointer id %q", args[1])
		}
		s.detector.Cancel(id)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", args[0])
	}
	return false, nil
}

func (s *session) chooseIndex(n int) error {
	choices := s.rt.AvailableChoices()
	if n < 1 || n > len(choices) {
		return fmt.Errorf("no choice %d", n)
	}
	s.rt.Choose(choices[n-1].ID)
	return nil
}

func (s *session) afterPuzzle(id string, solved bool) {
	p, _ := s.puzzles.get(id)
	s.printf("%s\n", p.status())
	if solved {
		s.markSolved(id)
	}
}

// markSolved records the puzzle and redraws the scene when new choices opened.
func (s *session) markSolved(id string) {
	before := len(s.rt.AvailableChoices())
	s.rt.MarkSolved(id)
	s.printf("%s solved\n", id)
	if len(s.rt.AvailableChoices()) != before {
		sc, _ := s.rt.Current()
		if sc != nil {
			s.describe(sc)
		}
	}
}

func (s *session) pointer(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: %s <id> <x> <y>", args[0])
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad pointer id %q", args[1])
	}
	x, errX := strconv.ParseFloat(args[2], 64)
	y, errY := strconv.ParseFloat(args[3], 64)
	if errX != nil || errY != nil {
		return fmt.Errorf("bad coordinates %q %q", args[2], args[3])
	}
	p := input.Point{X: x, Y: y}

	switch args[0] {
	case "down":
		s.detector.Down(id, p)
	case "move":
		s.detector.Move(id, p)
	case "up":
		s.detector.Up(id, p)
	}
	return nil
}

// drainMacros applies queued macro matches. A macro named after an available choice takes it.
func (s *session) drainMacros() {
	for {
		select {
		case m := <-s.macros:
			s.printf("gesture %s\n", m.Name)
			for _, c := range s.rt.AvailableChoices() {
				if c.ID == m.Name {
					s.rt.Choose(c.ID)
					break
				}
			}
		default:
			return
		}
	}
}
