package bridge

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/newbridge/pkg/serial"
)

// Phase is a state of the handshake.
type Phase int

// Handshake phases in order.
const (
	PhaseInit Phase = iota
	PhaseInterruptSent
	PhaseSyncing
	PhaseLaunching
	PhaseDone
)

var phaseNames = [...]string{"INIT", "INTERRUPT_SENT", "SYNCING", "LAUNCHING", "DONE"}

// String implements fmt.Stringer.
func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

// Handshake resets the peer into a shell and launches the companion process.
// A Handshake must not be run concurrently.
type Handshake struct {
	Port          serial.Port
	Clock         Clock
	Observer      Observer
	Baud          int
	Rounds        int
	BufferSize    int
	Prompts       PromptSet
	MatchMode     MatchMode
	LaunchCommand string
	Timing        Timing
}

// NewHandshake creates a Handshake with reference settings.
func NewHandshake(port serial.Port) *Handshake {
	return &Handshake{
		Port:          port,
		Clock:         SystemClock,
		Baud:          DefaultBaud,
		Rounds:        DefaultRounds,
		BufferSize:    DefaultBufferSize,
		Prompts:       DefaultPrompts,
		MatchMode:     MatchExact,
		LaunchCommand: DefaultLaunchCommand,
		Timing:        DefaultTiming(),
	}
}

type handshakeRun struct {
	*Handshake
	ctx   context.Context
	clock Clock
	obs   Observer
	res   Result
}

// Run performs the handshake. It completes after the configured rounds
// whether or not a prompt was seen; errors are limited to transport
// failures and ctx being done.
func (h *Handshake) Run(ctx context.Context) (Result, error) {
	r := &handshakeRun{Handshake: h, ctx: ctx, clock: h.Clock, obs: h.Observer}
	if r.clock == nil {
		r.clock = SystemClock
	}
	if r.obs == nil {
		r.obs = NopObserver{}
	}
	start := r.clock.Now()
	err := r.run()
	r.res.Elapsed = r.clock.Now().Sub(start)
	if err != nil {
		glog.Errorf("handshake aborted in %v: %v", r.res.Elapsed, err)
		return r.res, err
	}
	if r.res.Confirmed() {
		glog.Infof("handshake %v", r.res)
	} else {
		glog.Warningf("handshake %v", r.res)
	}
	r.obs.HandshakeDone(r.res)
	return r.res, nil
}

func (r *handshakeRun) run() error {
	r.enter(PhaseInit)
	if err := r.sleep(r.Timing.Settle); err != nil {
		return err
	}
	if err := r.Port.Begin(r.Baud); err != nil {
		return err
	}
	if err := r.drain(); err != nil {
		return err
	}

	r.enter(PhaseInterruptSent)
	if err := r.interrupt(); err != nil {
		return err
	}
	if err := r.drain(); err != nil {
		return err
	}

	r.enter(PhaseSyncing)
	if err := r.sync(); err != nil {
		return err
	}

	r.enter(PhaseLaunching)
	if err := r.send("launch command", []byte(r.LaunchCommand)); err != nil {
		return err
	}
	if err := r.sleep(r.Timing.AfterLaunch); err != nil {
		return err
	}
	if err := r.drain(); err != nil {
		return err
	}
	if err := r.send("status line", []byte(StatusLine(r.res.Rounds))); err != nil {
		return err
	}
	r.enter(PhaseDone)
	return nil
}

func (r *handshakeRun) interrupt() error {
	steps := []struct {
		name  string
		data  []byte
		delay func() error
	}{
		{"kill sequence", KillSequence, nil},
		{"newline", []byte{'\n'}, func() error { return r.sleep(r.Timing.AfterKill) }},
		{"interrupt", []byte{CtrlC}, func() error { return r.sleep(r.Timing.AfterInterrupt) }},
		{"newline", []byte{'\n'}, func() error { return r.sleep(r.Timing.Pulse) }},
		{"newline", []byte{'\n'}, func() error { return r.sleep(r.Timing.Pulse) }},
	}
	for _, step := range steps {
		if err := r.send(step.name, step.data); err != nil {
			return err
		}
		if step.delay != nil {
			if err := step.delay(); err != nil {
				return err
			}
		}
	}
	return nil
}

// sync runs a fixed number of rounds. A matched prompt doesn't end the loop.
func (r *handshakeRun) sync() error {
	lb := NewLineBuffer(r.BufferSize, r.Prompts, r.MatchMode)
	for r.res.Rounds < r.Rounds {
		r.res.Rounds++
		if err := r.send("newline", []byte{'\n'}); err != nil {
			return err
		}
		if err := r.sleep(r.Timing.RoundWait); err != nil {
			return err
		}
		matched, err := r.readRound(lb)
		if err != nil {
			return err
		}
		if matched {
			r.res.MatchedRounds++
			r.res.LastPrompt = lb.LastMatch()
		}
		glog.V(2).Infof("round %d: matched=%v line=%q", r.res.Rounds, matched, lb.String())
		r.obs.RoundCompleted(r.res.Rounds, matched)
	}
	r.res.Overflows = lb.Overflows()
	return nil
}

func (r *handshakeRun) readRound(lb *LineBuffer) (bool, error) {
	var matched bool
	for r.Port.Available() > 0 {
		b, err := r.Port.ReadByte()
		if err != nil {
			if err == serial.ErrNoData {
				break
			}
			return matched, err
		}
		if lb.Feed(b) {
			matched = true
		}
	}
	return matched, nil
}

func (r *handshakeRun) enter(phase Phase) {
	glog.V(2).Infof("handshake phase %s", phase)
	r.obs.PhaseChanged(phase)
}

func (r *handshakeRun) send(step string, data []byte) error {
	if _, err := r.Port.Write(data); err != nil {
		return &WriteError{Step: step, Err: err}
	}
	if err := r.Port.Flush(); err != nil {
		return &WriteError{Step: step, Err: err}
	}
	return nil
}

func (r *handshakeRun) sleep(d time.Duration) error {
	return r.clock.Sleep(r.ctx, d)
}

func (r *handshakeRun) drain() error {
	n, err := Drain(r.ctx, r.Port, r.clock, r.Timing.Quiet)
	r.res.Drained += n
	return err
}
