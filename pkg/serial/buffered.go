package serial

import (
	"io"
	"os"
	"sync"

	"github.com/golang/glog"
)

// Buffered turns a blocking io.ReadWriteCloser into a Stream.
// A background reader keeps appending received bytes to an internal buffer.
type Buffered struct {
	rwc io.ReadWriteCloser

	recvLock sync.Mutex
	recv     []byte
	recvErr  error
	closed   bool

	sendLock sync.Mutex
	doneCh   chan struct{}
}

// readChunk is the size of a single read from the underlying device.
const readChunk = 256

// NewBuffered wraps rwc and starts the background reader.
func NewBuffered(rwc io.ReadWriteCloser) *Buffered {
	b := &Buffered{rwc: rwc, doneCh: make(chan struct{})}
	go b.readLoop()
	return b
}

// Done is closed when the background reader stops.
func (b *Buffered) Done() <-chan struct{} {
	return b.doneCh
}

// Write implements Stream.
func (b *Buffered) Write(p []byte) (int, error) {
	if b.isClosed() {
		return 0, ErrClosed
	}
	b.sendLock.Lock()
	defer b.sendLock.Unlock()
	return b.rwc.Write(p)
}

// WriteByte implements Stream.
func (b *Buffered) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// Flush implements Stream. It waits for an in-flight Write to return and
// does not wait for the bytes to leave the device.
func (b *Buffered) Flush() error {
	if b.isClosed() {
		return ErrClosed
	}
	b.sendLock.Lock()
	b.sendLock.Unlock()
	return nil
}

// Available implements Stream.
func (b *Buffered) Available() int {
	b.recvLock.Lock()
	defer b.recvLock.Unlock()
	return len(b.recv)
}

// ReadByte implements Stream.
func (b *Buffered) ReadByte() (byte, error) {
	b.recvLock.Lock()
	defer b.recvLock.Unlock()
	if len(b.recv) == 0 {
		return 0, b.emptyErr()
	}
	c := b.recv[0]
	b.recv = b.recv[1:]
	return c, nil
}

// Peek implements Stream.
func (b *Buffered) Peek() (byte, error) {
	b.recvLock.Lock()
	defer b.recvLock.Unlock()
	if len(b.recv) == 0 {
		return 0, b.emptyErr()
	}
	return b.recv[0], nil
}

// Close stops the reader and closes the underlying device.
// Bytes already buffered remain readable.
func (b *Buffered) Close() error {
	b.recvLock.Lock()
	if b.closed {
		b.recvLock.Unlock()
		return nil
	}
	b.closed = true
	b.recvLock.Unlock()
	return b.rwc.Close()
}

func (b *Buffered) isClosed() bool {
	b.recvLock.Lock()
	defer b.recvLock.Unlock()
	return b.closed
}

// emptyErr must be called with recvLock held.
func (b *Buffered) emptyErr() error {
	if b.recvErr != nil {
		return b.recvErr
	}
	if b.closed {
		return ErrClosed
	}
	return ErrNoData
}

func (b *Buffered) readLoop() {
	defer close(b.doneCh)
	buf := make([]byte, readChunk)
	for {
		n, err := b.rwc.Read(buf)
		b.recvLock.Lock()
		if n > 0 {
			b.recv = append(b.recv, buf[:n]...)
		}
		closed := b.closed
		if err != nil && !closed && !isReadTimeout(err) {
			b.recvErr = err
		}
		stop := closed || b.recvErr != nil
		b.recvLock.Unlock()
		if stop {
			if !closed && err != io.EOF {
				glog.Errorf("serial read error: %v", err)
			}
			return
		}
		if n > 0 {
			glog.V(4).Infof("serial recv %d bytes", n)
		}
	}
}

func isReadTimeout(err error) bool {
	return os.IsTimeout(err)
}
