package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// AckPacketSize is the encoded size of AckPacket.
const AckPacketSize = 9

// AckPacket is the telemetry piggybacked on the acknowledgement.
type AckPacket struct {
	SupplyVoltage  float32
	BatteryVoltage float32
	BatteryOK      bool
}

// Bytes returns encoded bytes for sending.
func (p *AckPacket) Bytes() []byte {
	b := make([]byte, AckPacketSize)
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(p.SupplyVoltage))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(p.BatteryVoltage))
	b[8] = boolByte(p.BatteryOK)
	return b
}

// WriteTo writes encoded bytes.
func (p *AckPacket) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// DecodeAck decodes an acknowledgement payload.
func DecodeAck(b []byte) (p AckPacket, err error) {
	if len(b) > MaxPayloadSize {
		return p, ErrOversizePacket
	}
	if len(b) < AckPacketSize {
		return p, ErrShortPacket
	}
	p.SupplyVoltage = math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))
	p.BatteryVoltage = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	p.BatteryOK = b[8] != 0
	return
}
