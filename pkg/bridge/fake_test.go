package bridge

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/robotalks/newbridge/pkg/serial"
)

// fakeClock advances virtual time on Sleep.
type fakeClock struct {
	now     time.Duration
	sleeps  []time.Duration
	onSleep func(now time.Duration)
}

func (c *fakeClock) Now() time.Time {
	return time.Unix(0, 0).Add(c.now)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now += d
	c.sleeps = append(c.sleeps, d)
	if c.onSleep != nil {
		c.onSleep(c.now)
	}
	return nil
}

// fakePeer is a scripted serial.Port.
type fakePeer struct {
	clock *fakeClock

	baud    int
	beginAt time.Duration
	begins  int
	ends    int
	open    bool

	inbox   []byte
	written bytes.Buffer
	writes  []string

	// respond is called after each write with the written bytes.
	respond func(p *fakePeer, data []byte)
	// chatter returns bytes arriving while time advanced to now.
	chatter func(now time.Duration) []byte
	// failWrite fails writes containing the given byte.
	failWrite *byte
	beginErr  error
}

var errFakeWrite = errors.New("fake write failure")

func newFakePeer() *fakePeer {
	p := &fakePeer{clock: &fakeClock{}}
	p.clock.onSleep = p.tick
	return p
}

func (p *fakePeer) tick(now time.Duration) {
	if p.chatter != nil {
		p.inbox = append(p.inbox, p.chatter(now)...)
	}
}

func (p *fakePeer) send(s string) {
	p.inbox = append(p.inbox, s...)
}

func (p *fakePeer) Begin(baud int) error {
	if p.beginErr != nil {
		return p.beginErr
	}
	p.baud, p.beginAt, p.open = baud, p.clock.now, true
	p.begins++
	return nil
}

func (p *fakePeer) End() error {
	p.open = false
	p.ends++
	return nil
}

func (p *fakePeer) Write(data []byte) (int, error) {
	if !p.open {
		return 0, serial.ErrNotOpen
	}
	if p.failWrite != nil && bytes.IndexByte(data, *p.failWrite) >= 0 {
		return 0, errFakeWrite
	}
	p.written.Write(data)
	p.writes = append(p.writes, string(data))
	if p.respond != nil {
		p.respond(p, data)
	}
	return len(data), nil
}

func (p *fakePeer) WriteByte(c byte) error {
	_, err := p.Write([]byte{c})
	return err
}

func (p *fakePeer) Flush() error {
	if !p.open {
		return serial.ErrNotOpen
	}
	return nil
}

func (p *fakePeer) Available() int {
	return len(p.inbox)
}

func (p *fakePeer) ReadByte() (byte, error) {
	if len(p.inbox) == 0 {
		return 0, serial.ErrNoData
	}
	c := p.inbox[0]
	p.inbox = p.inbox[1:]
	return c, nil
}

func (p *fakePeer) Peek() (byte, error) {
	if len(p.inbox) == 0 {
		return 0, serial.ErrNoData
	}
	return p.inbox[0], nil
}

// countWrites counts writes equal to s.
func (p *fakePeer) countWrites(s string) int {
	var n int
	for _, w := range p.writes {
		if w == s {
			n++
		}
	}
	return n
}

// echoOnNewline makes the peer print line after every single newline written.
func echoOnNewline(line string) func(*fakePeer, []byte) {
	return func(p *fakePeer, data []byte) {
		if string(data) == "\n" {
			p.send(line)
		}
	}
}

type recordingObserver struct {
	phases []Phase
	rounds []bool
	done   []Result
}

func (o *recordingObserver) PhaseChanged(phase Phase) {
	o.phases = append(o.phases, phase)
}

func (o *recordingObserver) RoundCompleted(round int, matched bool) {
	o.rounds = append(o.rounds, matched)
}

func (o *recordingObserver) HandshakeDone(res Result) {
	o.done = append(o.done, res)
}
