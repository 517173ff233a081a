// Package transport carries whole packets over byte streams or message
// oriented connections. It backs the network radio used when the vehicle
// core runs away from real radio hardware.
package transport

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

// PacketConn is a PacketReadWriter which can be closed.
type PacketConn interface {
	PacketReadWriter
	io.Closer
}

// MaxPacketSize bounds a single packet on any transport.
const MaxPacketSize = 1024
