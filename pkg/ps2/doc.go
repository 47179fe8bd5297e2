// Package ps2 implements the host side of the PS/2 mouse protocol.
package ps2

// The device normally owns the clock. Bytes travel in 11-bit frames: a start
// bit (0), eight data bits LSB first, an odd parity bit and a stop bit (1).
//
// Receiver decodes device-to-host frames from clock-edge interrupts into a
// ring buffer that the main loop drains. CommandChannel takes the bus over
// for host-to-device command transactions: it suspends the Receiver, drives
// the lines by hand, polls for acknowledgements and replies, and rearms the
// Receiver when done.
