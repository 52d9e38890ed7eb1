package bridge

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/newbridge/pkg/serial"
)

// Relay copies bytes between a Stream and a local reader/writer pair,
// e.g. stdin/stdout, without interpreting them.
type Relay struct {
	Stream serial.Stream
	In     io.Reader
	Out    io.Writer
	Poll   time.Duration
}

// DefaultRelayPoll is the interval to poll the stream when it is idle.
const DefaultRelayPoll = 10 * time.Millisecond

// NewRelay creates a Relay.
func NewRelay(s serial.Stream, in io.Reader, out io.Writer) *Relay {
	return &Relay{Stream: s, In: in, Out: out, Poll: DefaultRelayPoll}
}

// Name implements framework.Named.
func (r *Relay) Name() string {
	return "relay"
}

// Run implements framework.Runnable. It stops when ctx is done, when In
// reaches EOF or on the first I/O error. The goroutine reading In is left
// blocked in Read if ctx is done first.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	if r.In != nil {
		go func() {
			errCh <- r.outbound()
			cancel()
		}()
	}
	err := r.inbound(ctx)
	select {
	case outErr := <-errCh:
		if outErr != nil && outErr != io.EOF {
			return outErr
		}
		if err == context.Canceled {
			return nil
		}
	default:
	}
	return err
}

func (r *Relay) inbound(ctx context.Context) error {
	poll := r.Poll
	if poll <= 0 {
		poll = DefaultRelayPoll
	}
	buf := make([]byte, 0, 256)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		buf = buf[:0]
		for len(buf) < cap(buf) && r.Stream.Available() > 0 {
			b, err := r.Stream.ReadByte()
			if err != nil {
				break
			}
			buf = append(buf, b)
		}
		if len(buf) > 0 {
			if _, err := r.Out.Write(buf); err != nil {
				glog.Errorf("relay write: %v", err)
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Relay) outbound() error {
	buf := make([]byte, 256)
	for {
		n, err := r.In.Read(buf)
		if n > 0 {
			if _, werr := r.Stream.Write(buf[:n]); werr != nil {
				glog.Errorf("relay send: %v", werr)
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
