package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// scene
	"scene.entered":        {},
	"scene.choice":         {},
	"scene.choice_blocked": {},
	"scene.loaded":         {},
	"flag.set":             {},

	// puzzle
	"puzzle.solved": {},
	"puzzle.failed": {},
	"puzzle.reset":  {},

	// save
	"save.written":  {},
	"save.failed":   {},
	"save.corrupt":  {},
	"save.migrated": {},
	"save.restored": {},

	// input
	"input.gesture": {},
	"input.macro":   {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate returns an error for event names outside the registry.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
