// Package wire defines the payloads exchanged over the radio link.
//
// A Command Packet travels from the transmitter to the vehicle; the Ack
// Packet rides back on the acknowledgement of the same transaction.
// Payloads are dynamically sized: decoders only require the fixed
// prefix they know about and ignore trailing bytes.
package wire

import (
	"io"
)

// Layout constants.
const (
	// MaxPayloadSize is the largest payload the link can carry.
	MaxPayloadSize = 32
	// CommandPacketSize is the encoded size of CommandPacket.
	CommandPacketSize = 6

	// AxisMin is the lowest valid axis value.
	AxisMin uint8 = 0
	// AxisMax is the highest valid axis value.
	AxisMax uint8 = 100
	// Neutral is the axis center.
	Neutral uint8 = 50
)

// CommandPacket carries operator control axes and mode flags.
type CommandPacket struct {
	Steering   uint8
	Aux1       uint8 // reserved, forwarded as-is
	Throttle   uint8
	Aux2       uint8 // reserved, forwarded as-is
	SpeedLimit bool
	RampLimit  bool
}

// NeutralCommand returns a command with all axes centered and modes off.
func NeutralCommand() CommandPacket {
	return CommandPacket{Steering: Neutral, Aux1: Neutral, Throttle: Neutral, Aux2: Neutral}
}

// ClampAxis limits an axis value to [0,100].
func ClampAxis(v uint8) uint8 {
	if v > AxisMax {
		return AxisMax
	}
	return v
}

// Clamped returns a copy with every axis within range.
func (p CommandPacket) Clamped() CommandPacket {
	p.Steering = ClampAxis(p.Steering)
	p.Aux1 = ClampAxis(p.Aux1)
	p.Throttle = ClampAxis(p.Throttle)
	p.Aux2 = ClampAxis(p.Aux2)
	return p
}

// Neutralized returns a copy with every axis forced to Neutral.
// Mode flags are kept.
func (p CommandPacket) Neutralized() CommandPacket {
	p.Steering, p.Aux1, p.Throttle, p.Aux2 = Neutral, Neutral, Neutral, Neutral
	return p
}

// Validate reports the first axis out of range.
func (p CommandPacket) Validate() error {
	axes := []struct {
		name  string
		value uint8
	}{
		{"steering", p.Steering},
		{"aux1", p.Aux1},
		{"throttle", p.Throttle},
		{"aux2", p.Aux2},
	}
	for _, a := range axes {
		if a.value > AxisMax {
			return &AxisError{Axis: a.name, Value: a.value}
		}
	}
	return nil
}

// Bytes returns encoded bytes for sending.
func (p *CommandPacket) Bytes() []byte {
	return []byte{
		p.Steering,
		p.Aux1,
		p.Throttle,
		p.Aux2,
		boolByte(p.SpeedLimit),
		boolByte(p.RampLimit),
	}
}

// WriteTo writes encoded bytes.
func (p *CommandPacket) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// DecodeCommand decodes a received payload.
func DecodeCommand(b []byte) (p CommandPacket, err error) {
	if len(b) > MaxPayloadSize {
		return p, ErrOversizePacket
	}
	if len(b) < CommandPacketSize {
		return p, ErrShortPacket
	}
	p.Steering, p.Aux1, p.Throttle, p.Aux2 = b[0], b[1], b[2], b[3]
	p.SpeedLimit, p.RampLimit = b[4] != 0, b[5] != 0
	return
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
