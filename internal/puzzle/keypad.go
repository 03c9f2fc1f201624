package puzzle

// KeypadConfig describes the code a keypad accepts.
type KeypadConfig struct {
	Code             string `json:"code" yaml:"code"`
	MaxLen           int    `json:"max_len,omitempty" yaml:"max_len,omitempty"`
	AllowLeadingZero bool   `json:"allow_leading_zero,omitempty" yaml:"allow_leading_zero,omitempty"`
}

// maxLen returns the buffer limit. An unset MaxLen falls back to the code length.
func (c KeypadConfig) maxLen() int {
	if c.MaxLen > 0 {
		return c.MaxLen
	}
	if len(c.Code) > 0 {
		return len(c.Code)
	}
	return 1
}

// KeypadState is the state of a numeric keypad.
type KeypadState struct {
	Input    string `json:"input"`
	Solved   bool   `json:"solved"`
	Attempts int    `json:"attempts"`
}

// NewKeypad returns an empty keypad.
func NewKeypad() KeypadState {
	return KeypadState{}
}

// PressKey appends a digit to the input buffer.
// Non-digits are ignored, as is a leading zero unless the config allows it.
// When the buffer would exceed its limit it restarts with the new digit.
func PressKey(s KeypadState, key string, cfg KeypadConfig) KeypadState {
	if s.Solved {
		return s
	}
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return s
	}
	if key == "0" && s.Input == "" && !cfg.AllowLeadingZero {
		return s
	}

	next := s.Input + key
	if len(next) > cfg.maxLen() {
		next = key
	}
	s.Input = next
	return s
}

// SubmitKeypad checks the buffer against the code.
// Every submit on an unsolved keypad counts as an attempt; a wrong code clears the buffer.
func SubmitKeypad(s KeypadState, cfg KeypadConfig) KeypadState {
	if s.Solved {
		return s
	}
	s.Attempts++
	if s.Input == cfg.Code {
		s.Solved = true
		return s
	}
	s.Input = ""
	return s
}

// ClearKeypad empties the buffer of an unsolved keypad.
func ClearKeypad(s KeypadState) KeypadState {
	if s.Solved {
		return s
	}
	s.Input = ""
	return s
}
