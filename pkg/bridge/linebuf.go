package bridge

import (
	"strings"
	"unicode"
)

// MatchMode selects how a line is compared with the known prompts.
type MatchMode int

const (
	// MatchExact requires byte-exact equality.
	MatchExact MatchMode = iota
	// MatchTrimSpace ignores trailing whitespace and control bytes on both sides.
	MatchTrimSpace
)

// String implements fmt.Stringer.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchTrimSpace:
		return "trim-space"
	}
	return "unknown"
}

// PromptSet is an ordered set of shell prompts.
type PromptSet []string

// Match returns the first prompt equal to line.
func (s PromptSet) Match(line string, mode MatchMode) (string, bool) {
	if mode == MatchTrimSpace {
		line = trimTrailing(line)
	}
	for _, prompt := range s {
		p := prompt
		if mode == MatchTrimSpace {
			p = trimTrailing(p)
		}
		if line == p {
			return prompt, true
		}
	}
	return "", false
}

func trimTrailing(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

// LineBuffer accumulates received bytes into the current line and detects
// shell prompts.
//
// A prompt is detected whenever the bytes received since the last line feed
// equal a known prompt. That happens either while the prompt sits on the line
// waiting for input, or when a prompt line is completed by a line feed.
// A line reaching the buffer capacity without a line feed is discarded.
type LineBuffer struct {
	Prompts PromptSet
	Mode    MatchMode

	buf       []byte
	n         int
	overflows int
	lastMatch string
}

// NewLineBuffer creates a LineBuffer holding at most capacity bytes.
func NewLineBuffer(capacity int, prompts PromptSet, mode MatchMode) *LineBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &LineBuffer{
		Prompts: prompts,
		Mode:    mode,
		buf:     make([]byte, capacity),
	}
}

// Feed appends one byte and reports whether the line now matches a prompt.
func (l *LineBuffer) Feed(b byte) bool {
	l.buf[l.n] = b
	l.n++
	var line []byte
	if b == '\n' {
		line = l.buf[:l.n-1]
	} else {
		line = l.buf[:l.n]
	}
	prompt, matched := l.Prompts.Match(string(line), l.Mode)
	if matched {
		l.lastMatch = prompt
	}
	switch {
	case b == '\n':
		l.n = 0
	case l.n == len(l.buf):
		l.n = 0
		l.overflows++
	}
	return matched
}

// String returns the current partial line.
func (l *LineBuffer) String() string {
	return string(l.buf[:l.n])
}

// Len returns the length of the current partial line.
func (l *LineBuffer) Len() int {
	return l.n
}

// Cap returns the capacity of the buffer.
func (l *LineBuffer) Cap() int {
	return len(l.buf)
}

// Reset discards the current partial line.
func (l *LineBuffer) Reset() {
	l.n = 0
}

// Overflows returns how many lines were discarded for exceeding the capacity.
func (l *LineBuffer) Overflows() int {
	return l.overflows
}

// LastMatch returns the most recently matched prompt.
func (l *LineBuffer) LastMatch() string {
	return l.lastMatch
}
