package bridge

import (
	"context"
	"sync"

	"github.com/robotalks/newbridge/pkg/serial"
)

// Bridge owns the serial port to the peer. Begin runs the handshake and the
// stream methods pass bytes through to the port afterwards.
type Bridge struct {
	Handshake *Handshake

	port   serial.Port
	lock   sync.Mutex
	result *Result
	begun  bool
}

// New creates a Bridge over port with a reference Handshake.
func New(port serial.Port) *Bridge {
	return &Bridge{
		Handshake: NewHandshake(port),
		port:      port,
	}
}

// Port returns the underlying port.
func (b *Bridge) Port() serial.Port {
	return b.port
}

// Begin runs the handshake. Every call starts from scratch.
func (b *Bridge) Begin(ctx context.Context) (Result, error) {
	b.lock.Lock()
	b.result, b.begun = nil, true
	b.lock.Unlock()

	res, err := b.Handshake.Run(ctx)
	if err != nil {
		return res, err
	}
	b.lock.Lock()
	b.result = &res
	b.lock.Unlock()
	return res, nil
}

// End closes the port.
func (b *Bridge) End() error {
	b.lock.Lock()
	b.begun = false
	b.lock.Unlock()
	return b.port.End()
}

// Connected reports whether the last handshake saw the shell and the bridge
// has not been ended since.
func (b *Bridge) Connected() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.begun && b.result != nil && b.result.Confirmed()
}

// LastResult returns the result of the last completed handshake.
func (b *Bridge) LastResult() (Result, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.result == nil {
		return Result{}, false
	}
	return *b.result, true
}

// Write implements serial.Stream.
func (b *Bridge) Write(p []byte) (int, error) { return b.port.Write(p) }

// WriteByte implements serial.Stream.
func (b *Bridge) WriteByte(c byte) error { return b.port.WriteByte(c) }

// Flush implements serial.Stream.
func (b *Bridge) Flush() error { return b.port.Flush() }

// Available implements serial.Stream.
func (b *Bridge) Available() int { return b.port.Available() }

// ReadByte implements serial.Stream.
func (b *Bridge) ReadByte() (byte, error) { return b.port.ReadByte() }

// Peek implements serial.Stream.
func (b *Bridge) Peek() (byte, error) { return b.port.Peek() }
