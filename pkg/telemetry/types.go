// Package telemetry publishes adapter events and accepts remote mouse
// commands over MQTT, websocket or a plain byte stream.
package telemetry

import "io"

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Link is a connected transport.
type Link interface {
	PacketReadWriter
	io.Closer
}
