// Package serialmouse implements the adapter side of the legacy RS-232
// serial mouse: a bit-banged 1200 baud transmitter, the packet format of
// the two-button, three-button and wheel variants, and the translator that
// aggregates PS/2 motion into packets at the serial packet rate.
package serialmouse
