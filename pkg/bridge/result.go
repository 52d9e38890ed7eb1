package bridge

import (
	"fmt"
	"time"
)

// Status tells whether the handshake saw the shell.
type Status int

const (
	// StatusUnconfirmed means all rounds completed without seeing a prompt.
	StatusUnconfirmed Status = iota
	// StatusConfirmed means a prompt was seen while syncing.
	StatusConfirmed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	if s == StatusConfirmed {
		return "confirmed"
	}
	return "unconfirmed"
}

// Result is the outcome of a handshake.
type Result struct {
	// Rounds is the number of SYNCING rounds executed. It is the value
	// reported on the status line.
	Rounds int `json:"rounds"`
	// MatchedRounds counts rounds in which a prompt was seen.
	MatchedRounds int `json:"matched_rounds"`
	// LastPrompt is the most recently matched prompt.
	LastPrompt string `json:"last_prompt,omitempty"`
	// Overflows counts lines discarded for exceeding the line buffer.
	Overflows int `json:"overflows"`
	// Drained is the total number of bytes discarded by drains.
	Drained int `json:"drained"`
	// Elapsed is the duration of the whole handshake.
	Elapsed time.Duration `json:"elapsed"`
}

// Confirmed reports whether a prompt was seen.
func (r Result) Confirmed() bool {
	return r.MatchedRounds > 0
}

// Status returns the Status of the result.
func (r Result) Status() Status {
	if r.Confirmed() {
		return StatusConfirmed
	}
	return StatusUnconfirmed
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("%s after %d rounds (%d matched) in %v", r.Status(), r.Rounds, r.MatchedRounds, r.Elapsed)
}

// WriteError reports a failed write during the handshake.
type WriteError struct {
	Step string
	Err  error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Step, e.Err)
}
