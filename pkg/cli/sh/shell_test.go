package sh

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/newbridge/pkg/bridge"
	"github.com/robotalks/newbridge/pkg/serial"
)

type memPort struct {
	in  []byte
	out bytes.Buffer
}

func (p *memPort) Begin(int) error             { return nil }
func (p *memPort) End() error                  { return nil }
func (p *memPort) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *memPort) WriteByte(c byte) error      { return p.out.WriteByte(c) }
func (p *memPort) Flush() error                { return nil }
func (p *memPort) Available() int              { return len(p.in) }

func (p *memPort) ReadByte() (byte, error) {
	if len(p.in) == 0 {
		return 0, serial.ErrNoData
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, nil
}

func (p *memPort) Peek() (byte, error) {
	if len(p.in) == 0 {
		return 0, serial.ErrNoData
	}
	return p.in[0], nil
}

func newTestShell(port *memPort) *Shell {
	conf := bridge.NewConfig()
	return &Shell{Config: conf, Bridge: conf.NewBridge(port)}
}

func TestShellReadAvailable(t *testing.T) {
	port := &memPort{in: []byte("root@Micromark:~# ")}
	s := newTestShell(port)
	require.Equal(t, "root@Micromark:~# ", string(s.readAvailable()))
	require.Empty(t, s.readAvailable())
}

func TestShellSend(t *testing.T) {
	port := &memPort{}
	s := newTestShell(port)
	s.send(nil, []byte("uname -a\n"))
	s.send(nil, []byte{bridge.CtrlC})
	require.Equal(t, "uname -a\n\x03", port.out.String())
}

func TestFormatResult(t *testing.T) {
	testCases := []struct {
		name   string
		res    bridge.Result
		expect string
	}{
		{
			name: "confirmed",
			res: bridge.Result{
				Rounds:        2,
				MatchedRounds: 2,
				LastPrompt:    "root@Micromark:~# ",
				Drained:       57,
				Elapsed:       7450 * time.Millisecond,
			},
			expect: `confirmed: rounds=2 matched=2 prompt="root@Micromark:~# " drained=57 overflows=0 elapsed=7.45s`,
		},
		{
			name:   "unconfirmed",
			res:    bridge.Result{Rounds: 2, Overflows: 1, Elapsed: time.Second},
			expect: "unconfirmed: rounds=2 matched=0 drained=0 overflows=1 elapsed=1s",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, FormatResult(tc.res))
		})
	}
}
