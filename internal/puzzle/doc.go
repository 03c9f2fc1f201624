// Package puzzle holds the pure puzzle reducers used by scenes: keypad, sequence, wires,
// gears and pipes. Every operation takes a state value and returns a new one; inputs are
// never mutated, so a history of states can be replayed or saved as-is.
package puzzle
