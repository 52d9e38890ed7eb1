package bridge

import (
	"strconv"
	"time"
)

// Wire level constants shared with the peer.
const (
	// DefaultBaud is the serial line speed.
	DefaultBaud = 250000
	// DefaultRounds is the number of SYNCING rounds.
	DefaultRounds = 2
	// DefaultBufferSize is the capacity of the prompt line buffer.
	DefaultBufferSize = 64
	// CtrlC interrupts the foreground job of the peer shell.
	CtrlC byte = 3
	// DefaultLaunchCommand starts the companion process on the peer.
	DefaultLaunchCommand = "/mnt/sda1/newbridge/newbridge.py -q -l /mnt/sda1/newbridge/log.log\n"
	// StatusPrefix starts the status line reported after launching.
	StatusPrefix = "0;255;3;0;9;Shell rounds: "
)

// KillSequence terminates a previously running bridge on the peer.
var KillSequence = []byte{0xff, 0x00, 0x00, 0x05, 'X', 'X', 'X', 'X', 'X', 0x0d, 0xaf}

// DefaultPrompts are the shell prompts of the peer.
var DefaultPrompts = PromptSet{
	"root@Micromark:~# ",
	"root@Micromark:/# ",
}

// StatusLine formats the final status line, terminated by CR LF.
func StatusLine(rounds int) string {
	return StatusPrefix + strconv.Itoa(rounds) + "\r\n"
}

// Timing holds the delays of the handshake.
// Shorter delays make the handshake unreliable on real hardware.
type Timing struct {
	// Settle waits for the peer bootloader before any I/O.
	Settle time.Duration
	// AfterKill follows the kill sequence.
	AfterKill time.Duration
	// AfterInterrupt follows CtrlC.
	AfterInterrupt time.Duration
	// Pulse follows each newline sent after the interrupt.
	Pulse time.Duration
	// Quiet is the interval the input must stay silent to finish a drain.
	Quiet time.Duration
	// RoundWait separates the newline of a SYNCING round from reading the reply.
	RoundWait time.Duration
	// AfterLaunch follows the launch command.
	AfterLaunch time.Duration
}

// DefaultTiming returns the reference delays.
func DefaultTiming() Timing {
	return Timing{
		Settle:         2500 * time.Millisecond,
		AfterKill:      500 * time.Millisecond,
		AfterInterrupt: 250 * time.Millisecond,
		Pulse:          50 * time.Millisecond,
		Quiet:          1000 * time.Millisecond,
		RoundWait:      50 * time.Millisecond,
		AfterLaunch:    1000 * time.Millisecond,
	}
}
