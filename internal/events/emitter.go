// Package events records engine activity as structured JSON events.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultBufferSize is the number of recent events an Emitter keeps in memory.
const DefaultBufferSize = 256

// Sink persists events outside the process.
type Sink interface {
	Append(ts time.Time, level, event, msg string, fields map[string]interface{}, sessionID string) error
}

type Event struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Session   string                 `json:"session_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emitter validates, buffers and fans out events. A nil *Emitter discards everything.
type Emitter struct {
	buffer *RingBuffer

	mu              sync.RWMutex
	subscribers     map[Subscriber]struct{}
	sink            Sink
	sinkErrorLogged bool
	out             io.Writer
	outMu           sync.Mutex
	sessionID       string
	now             func() time.Time
}

type Option func(*Emitter)

// WithSink persists every event through s.
func WithSink(s Sink) Option {
	return func(e *Emitter) { e.sink = s }
}

// WithWriter writes every event as one JSON line to w.
func WithWriter(w io.Writer) Option {
	return func(e *Emitter) { e.out = w }
}

// WithSessionID stamps every event with a play session id.
func WithSessionID(id string) Option {
	return func(e *Emitter) { e.sessionID = id }
}

// WithBufferSize sets how many recent events are retained.
func WithBufferSize(n int) Option {
	return func(e *Emitter) { e.buffer = NewRingBuffer(n) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) { e.now = now }
}

func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		buffer:      NewRingBuffer(DefaultBufferSize),
		subscribers: make(map[Subscriber]struct{}),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) Emit(level, name, msg string, fields map[string]interface{}) (Event, error) {
	if err := Validate(name); err != nil {
		return Event{}, err
	}
	if e == nil {
		return Event{}, nil
	}

	ts := e.now().UTC()
	evt := Event{
		Timestamp: ts.Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Session:   e.sessionID,
		Fields:    fields,
	}

	e.buffer.Add(evt)
	e.persist(ts, evt)
	e.write(evt)
	e.broadcast(evt)

	return evt, nil
}

// Info emits an info-level event, discarding validation errors.
func (e *Emitter) Info(name string, fields map[string]interface{}) {
	_, _ = e.Emit("info", name, "", fields)
}

// Error emits an error-level event carrying err as its message.
func (e *Emitter) Error(name string, err error, fields map[string]interface{}) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_, _ = e.Emit("error", name, msg, fields)
}

// persist appends to the sink. The first failure is recorded as system.error directly in the
// ring buffer so a failing sink cannot recurse through Emit.
func (e *Emitter) persist(ts time.Time, evt Event) {
	e.mu.RLock()
	sink := e.sink
	e.mu.RUnlock()
	if sink == nil {
		return
	}

	err := sink.Append(ts, evt.Level, evt.Name, evt.Message, evt.Fields, evt.Session)
	if err == nil {
		return
	}

	e.mu.Lock()
	if e.sinkErrorLogged {
		e.mu.Unlock()
		return
	}
	e.sinkErrorLogged = true
	e.mu.Unlock()

	errEvent := Event{
		Timestamp: e.now().UTC().Format(time.RFC3339Nano),
		Level:     "error",
		Name:      "system.error",
		Message:   "event sink append failed",
		Session:   e.sessionID,
		Fields: map[string]interface{}{
			"error": err.Error(),
		},
	}
	e.buffer.Add(errEvent)
	e.write(errEvent)
}

func (e *Emitter) write(evt Event) {
	if e.out == nil {
		return
	}
	b, err := Marshal(evt)
	if err != nil {
		return
	}
	e.outMu.Lock()
	defer e.outMu.Unlock()
	_, _ = e.out.Write(append(b, '\n'))
}

// Marshal encodes an event as a JSON line body.
func Marshal(evt Event) ([]byte, error) {
	b, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return b, nil
}

func (e *Emitter) Snapshot() []Event {
	if e == nil {
		return nil
	}
	return e.buffer.Snapshot()
}

// Clear resets the event buffer.
func (e *Emitter) Clear() {
	if e == nil {
		return
	}
	e.buffer.Clear()
}
