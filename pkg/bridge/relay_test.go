package bridge

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/newbridge/pkg/serial"
)

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestRelay(t *testing.T) {
	local, remote := net.Pipe()
	stream := serial.NewBuffered(local)
	defer stream.Close()
	defer remote.Close()

	inR, inW := io.Pipe()
	out := &syncBuffer{}
	relay := NewRelay(stream, inR, out)
	relay.Poll = time.Millisecond

	errCh := make(chan error, 1)
	go func() { errCh <- relay.Run(context.Background()) }()

	go inW.Write([]byte("ls\n"))
	buf := make([]byte, 3)
	_, err := io.ReadFull(remote, buf)
	require.NoError(t, err)
	require.Equal(t, "ls\n", string(buf))

	go remote.Write([]byte("bin etc\n"))
	require.Eventually(t, func() bool { return out.String() == "bin etc\n" }, time.Second, time.Millisecond)

	inW.Close()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay not stopped")
	}
}

func TestRelayCanceled(t *testing.T) {
	peer := newFakePeer()
	require.NoError(t, peer.Begin(DefaultBaud))
	peer.send("late output")
	out := &syncBuffer{}
	relay := NewRelay(peer, nil, out)
	require.Equal(t, "relay", relay.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, relay.Run(ctx))
	require.Equal(t, "late output", out.String())
}
