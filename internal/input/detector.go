// Package input turns raw pointer events into gesture tokens and recognizes named macros,
// ordered token sequences such as pointerdown, longpress, swipe.
package input

import (
	"math"
	"sync"
	"time"

	"github.com/AaronLay10/pointclick/internal/events"
)

// Token is one recognized gesture.
type Token string

// defaultBufferLen bounds the token buffer before any macro is registered.
const defaultBufferLen = 16

const (
	TokenPointerDown Token = "pointerdown"
	TokenLongPress   Token = "longpress"
	TokenSwipe       Token = "swipe"
	TokenTap         Token = "tap"
	TokenDoubleTap   Token = "doubletap"
)

// Valid reports whether t is one of the known gesture tokens.
func (t Token) Valid() bool {
	switch t {
	case TokenPointerDown, TokenLongPress, TokenSwipe, TokenTap, TokenDoubleTap:
		return true
	}
	return false
}

// Point is a pointer position in screen units.
type Point struct {
	X, Y float64
}

func (p Point) dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Config holds the gesture thresholds.
type Config struct {
	LongPress       time.Duration
	SwipeThreshold  float64
	DoubleTapWindow time.Duration
	SequenceGap     time.Duration
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		LongPress:       500 * time.Millisecond,
		SwipeThreshold:  30,
		DoubleTapWindow: 300 * time.Millisecond,
		SequenceGap:     800 * time.Millisecond,
	}
}

// Macro names an ordered token sequence.
type Macro struct {
	Name     string
	Sequence []Token
}

// Match is delivered when the recent tokens end with a macro's sequence.
type Match struct {
	Name     string
	Sequence []Token
	At       time.Time
}

type pointerState int

const (
	stateDown pointerState = iota
	stateLongPress
	stateSwiping
)

type pointer struct {
	state pointerState
	start Point
	timer Timer
	gen   uint64
}

type entry struct {
	token Token
	at    time.Time
}

type registered struct {
	macro Macro
	cb    func(Match)
}

// Detector runs one gesture state machine per pointer and matches macros over the emitted
// tokens. It is safe for use from a UI goroutine and the clock's timer goroutine.
type Detector struct {
	cfg     Config
	clock   Clock
	emitter *events.Emitter

	mu        sync.Mutex
	pointers  map[int]*pointer
	lastTap   map[int]time.Time
	gen       uint64
	buffer    []entry
	maxLen    int
	macros    []registered
	observers []func(Match)
	tokenObs  []func(Token)
}

type Option func(*Detector)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(d *Detector) { d.clock = c }
}

// WithEmitter reports gestures and macro matches to e.
func WithEmitter(e *events.Emitter) Option {
	return func(d *Detector) { d.emitter = e }
}

// NewDetector creates a detector. Zero config fields take their defaults.
func NewDetector(cfg Config, opts ...Option) *Detector {
	def := DefaultConfig()
	if cfg.LongPress <= 0 {
		cfg.LongPress = def.LongPress
	}
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = def.SwipeThreshold
	}
	if cfg.DoubleTapWindow <= 0 {
		cfg.DoubleTapWindow = def.DoubleTapWindow
	}
	if cfg.SequenceGap <= 0 {
		cfg.SequenceGap = def.SequenceGap
	}

	d := &Detector{
		cfg:      cfg,
		clock:    SystemClock,
		pointers: make(map[int]*pointer),
		lastTap:  make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a macro. cb may be nil when only observers are interested.
func (d *Detector) Register(m Macro, cb func(Match)) {
	if len(m.Sequence) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	seq := make([]Token, len(m.Sequence))
	copy(seq, m.Sequence)
	d.macros = append(d.macros, registered{macro: Macro{Name: m.Name, Sequence: seq}, cb: cb})
	if len(seq) > d.maxLen {
		d.maxLen = len(seq)
	}
}

// OnMacro adds an observer called for every macro match.
func (d *Detector) OnMacro(fn func(Match)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// OnToken adds an observer called for every gesture token.
func (d *Detector) OnToken(fn func(Token)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokenObs = append(d.tokenObs, fn)
}

// Down presses pointer id at p, emits pointerdown and arms the long-press timer.
func (d *Detector) Down(id int, p Point) {
	d.mu.Lock()
	if old, ok := d.pointers[id]; ok && old.timer != nil {
		old.timer.Stop()
	}
	d.gen++
	ptr := &pointer{state: stateDown, start: p, gen: d.gen}
	d.pointers[id] = ptr
	gen := ptr.gen
	ptr.timer = d.clock.AfterFunc(d.cfg.LongPress, func() { d.longPressFired(id, gen) })
	out := d.emitLocked(TokenPointerDown)
	d.mu.Unlock()

	d.deliver(out)
}

func (d *Detector) longPressFired(id int, gen uint64) {
	d.mu.Lock()
	ptr, ok := d.pointers[id]
	if !ok || ptr.gen != gen || ptr.state != stateDown {
		d.mu.Unlock()
		return
	}
	ptr.state = stateLongPress
	ptr.timer = nil
	out := d.emitLocked(TokenLongPress)
	d.mu.Unlock()

	d.deliver(out)
}

// Move emits swipe once when a held pointer travels past the swipe threshold.
// A pointer already in long-press may still swipe.
func (d *Detector) Move(id int, p Point) {
	d.mu.Lock()
	ptr, ok := d.pointers[id]
	if !ok || ptr.state == stateSwiping || ptr.start.dist(p) < d.cfg.SwipeThreshold {
		d.mu.Unlock()
		return
	}
	if ptr.timer != nil {
		ptr.timer.Stop()
		ptr.timer = nil
	}
	ptr.state = stateSwiping
	out := d.emitLocked(TokenSwipe)
	d.mu.Unlock()

	d.deliver(out)
}

// Up releases the pointer. A release that was neither a long-press nor a swipe is a tap;
// a second tap within the double-tap window also yields doubletap.
func (d *Detector) Up(id int, p Point) {
	d.mu.Lock()
	ptr, ok := d.pointers[id]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pointers, id)
	if ptr.timer != nil {
		ptr.timer.Stop()
	}

	var out []delivery
	if ptr.state == stateDown && ptr.start.dist(p) >= d.cfg.SwipeThreshold {
		ptr.state = stateSwiping
		out = append(out, d.emitLocked(TokenSwipe)...)
	}
	if ptr.state == stateDown {
		now := d.clock.Now()
		out = append(out, d.emitLocked(TokenTap)...)
		if last, ok := d.lastTap[id]; ok && now.Sub(last) <= d.cfg.DoubleTapWindow {
			delete(d.lastTap, id)
			out = append(out, d.emitLocked(TokenDoubleTap)...)
		} else {
			d.lastTap[id] = now
		}
	} else {
		delete(d.lastTap, id)
	}
	d.mu.Unlock()

	d.deliver(out)
}

// Cancel abandons the pointer without emitting anything.
func (d *Detector) Cancel(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ptr, ok := d.pointers[id]; ok {
		if ptr.timer != nil {
			ptr.timer.Stop()
		}
		delete(d.pointers, id)
	}
	delete(d.lastTap, id)
}

// Reset cancels every pointer and clears the token buffer.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, ptr := range d.pointers {
		if ptr.timer != nil {
			ptr.timer.Stop()
		}
		delete(d.pointers, id)
	}
	d.lastTap = make(map[int]time.Time)
	d.buffer = nil
}

// Buffer returns the tokens currently eligible for matching.
func (d *Detector) Buffer() []Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Token, len(d.buffer))
	for i, e := range d.buffer {
		out[i] = e.token
	}
	return out
}

type delivery struct {
	token   Token
	matches []Match
	cbs     []func(Match)
}

// gapFor is how long t may trail the previous token. Tokens produced while a pointer is held
// may arrive as late as the long-press delay.
func (d *Detector) gapFor(t Token) time.Duration {
	if t == TokenPointerDown || d.cfg.LongPress <= d.cfg.SequenceGap {
		return d.cfg.SequenceGap
	}
	return d.cfg.LongPress
}

// emitLocked appends a token and collects matches. Callbacks run after the lock is released.
func (d *Detector) emitLocked(t Token) []delivery {
	now := d.clock.Now()
	if n := len(d.buffer); n > 0 && now.Sub(d.buffer[n-1].at) > d.gapFor(t) {
		d.buffer = d.buffer[:0]
	}
	d.buffer = append(d.buffer, entry{token: t, at: now})
	limit := d.maxLen
	if limit == 0 {
		limit = defaultBufferLen
	}
	if len(d.buffer) > limit {
		d.buffer = append(d.buffer[:0], d.buffer[len(d.buffer)-limit:]...)
	}

	dl := delivery{token: t}
	for _, r := range d.macros {
		if !d.suffixMatches(r.macro.Sequence) {
			continue
		}
		seq := make([]Token, len(r.macro.Sequence))
		copy(seq, r.macro.Sequence)
		dl.matches = append(dl.matches, Match{Name: r.macro.Name, Sequence: seq, At: now})
		dl.cbs = append(dl.cbs, r.cb)
	}
	return []delivery{dl}
}

func (d *Detector) suffixMatches(seq []Token) bool {
	if len(seq) > len(d.buffer) {
		return false
	}
	off := len(d.buffer) - len(seq)
	for i, t := range seq {
		if d.buffer[off+i].token != t {
			return false
		}
	}
	return true
}

func (d *Detector) deliver(out []delivery) {
	d.mu.Lock()
	observers := append([]func(Match){}, d.observers...)
	tokenObs := append([]func(Token){}, d.tokenObs...)
	d.mu.Unlock()

	for _, dl := range out {
		d.emitter.Info("input.gesture", map[string]interface{}{"token": string(dl.token)})
		for _, fn := range tokenObs {
			fn(dl.token)
		}
		for i, m := range dl.matches {
			d.emitter.Info("input.macro", map[string]interface{}{
				"name":     m.Name,
				"sequence": tokenStrings(m.Sequence),
			})
			if cb := dl.cbs[i]; cb != nil {
				cb(m)
			}
			for _, fn := range observers {
				fn(m)
			}
		}
	}
}

func tokenStrings(ts []Token) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
