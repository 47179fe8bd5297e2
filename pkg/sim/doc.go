// Package sim simulates the adapter board on the host: a PS/2 mouse on an
// open-collector bus, a virtual clock driving the bit timer, the serial line
// as the host PC sees it, and scripted scenarios.
package sim
