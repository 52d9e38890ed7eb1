package serial

import (
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

// OpenFunc opens a device at the given baud rate.
type OpenFunc func(name string, baud int, readTimeout time.Duration) (io.ReadWriteCloser, error)

// Device is a Port backed by a serial device node.
type Device struct {
	Name        string
	ReadTimeout time.Duration
	Open        OpenFunc

	lock   sync.RWMutex
	stream *Buffered
}

// DefaultReadTimeout bounds a single blocking read on the device so the
// reader notices End promptly.
const DefaultReadTimeout = 100 * time.Millisecond

// NewDevice creates a Device for the named device node, e.g. /dev/ttyATH0.
func NewDevice(name string) *Device {
	return &Device{
		Name:        name,
		ReadTimeout: DefaultReadTimeout,
		Open:        OpenTarm,
	}
}

// OpenTarm opens the device with github.com/tarm/serial using 8N1.
func OpenTarm(name string, baud int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &timeoutReader{port}, nil
}

// timeoutReader reports an expired read timeout as an empty read.
// tarm/serial surfaces it as io.EOF.
type timeoutReader struct {
	io.ReadWriteCloser
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	n, err := r.ReadWriteCloser.Read(p)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}

// Begin implements Port. Calling Begin on an open device reopens it.
func (d *Device) Begin(baud int) error {
	open := d.Open
	if open == nil {
		open = OpenTarm
	}
	rwc, err := open(d.Name, baud, d.ReadTimeout)
	if err != nil {
		return err
	}
	d.lock.Lock()
	prev := d.stream
	d.stream = NewBuffered(rwc)
	d.lock.Unlock()
	if prev != nil {
		prev.Close()
	}
	glog.Infof("serial %s opened at %d baud", d.Name, baud)
	return nil
}

// End implements Port.
func (d *Device) End() error {
	d.lock.Lock()
	s := d.stream
	d.stream = nil
	d.lock.Unlock()
	if s == nil {
		return nil
	}
	glog.Infof("serial %s closed", d.Name)
	return s.Close()
}

func (d *Device) current() (*Buffered, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if d.stream == nil {
		return nil, ErrNotOpen
	}
	return d.stream, nil
}

// Write implements Stream.
func (d *Device) Write(p []byte) (int, error) {
	s, err := d.current()
	if err != nil {
		return 0, err
	}
	return s.Write(p)
}

// WriteByte implements Stream.
func (d *Device) WriteByte(c byte) error {
	s, err := d.current()
	if err != nil {
		return err
	}
	return s.WriteByte(c)
}

// Flush implements Stream.
func (d *Device) Flush() error {
	s, err := d.current()
	if err != nil {
		return err
	}
	return s.Flush()
}

// Available implements Stream. A closed device has nothing available.
func (d *Device) Available() int {
	s, err := d.current()
	if err != nil {
		return 0
	}
	return s.Available()
}

// ReadByte implements Stream.
func (d *Device) ReadByte() (byte, error) {
	s, err := d.current()
	if err != nil {
		return 0, err
	}
	return s.ReadByte()
}

// Peek implements Stream.
func (d *Device) Peek() (byte, error) {
	s, err := d.current()
	if err != nil {
		return 0, err
	}
	return s.Peek()
}
