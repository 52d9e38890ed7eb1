package serial

import "errors"

var (
	// ErrNoData indicates no byte is buffered for reading.
	ErrNoData = errors.New("no data available")
	// ErrNotOpen indicates the port is used before Begin.
	ErrNotOpen = errors.New("port not open")
	// ErrClosed indicates the stream has been closed.
	ErrClosed = errors.New("stream closed")
)
