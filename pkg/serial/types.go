package serial

import "io"

// Stream is a non-blocking byte stream.
type Stream interface {
	io.Writer
	io.ByteWriter

	// Flush blocks until written bytes are handed to the device.
	Flush() error
	// Available returns the number of bytes readable without blocking.
	Available() int
	// ReadByte consumes the next byte, or returns ErrNoData.
	ReadByte() (byte, error)
	// Peek returns the next byte without consuming it, or ErrNoData.
	Peek() (byte, error)
}

// Port is a Stream with an explicit open/close lifecycle.
type Port interface {
	Stream

	// Begin opens the link at the given baud rate.
	Begin(baud int) error
	// End closes the link.
	End() error
}
