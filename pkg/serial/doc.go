// Package serial provides the byte stream transport used to talk to the peer.
package serial

// The peer is a Linux co-processor attached over an asynchronous serial line.
// Reads never block: bytes received from the device are collected by a
// background reader, and callers poll Available/ReadByte/Peek the same way a
// microcontroller polls its UART receive buffer.
