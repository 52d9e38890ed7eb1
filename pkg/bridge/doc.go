// Package bridge brings up the shell bridge between a microcontroller and a
// Linux co-processor over a serial line.
package bridge

// The peer may be running anything when we start: a bootloader printing its
// banner, an interactive shell, or a previous bridge session. Begin resets
// the peer into a shell by sending a kill sequence and an interrupt,
// resynchronizes by provoking prompts, and finally launches the companion
// bridge process on the peer.
//
// The whole procedure is timing based and best effort. It always completes
// after a fixed number of rounds; Result tells whether a prompt was actually
// seen along the way.
