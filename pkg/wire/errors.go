package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrShortPacket indicates the payload is shorter than the packet layout.
	ErrShortPacket = errors.New("short packet")
	// ErrOversizePacket indicates the payload exceeds MaxPayloadSize.
	ErrOversizePacket = errors.New("oversize packet")
)

// AxisError reports an axis value outside [0,100].
// It is informational: receivers clamp instead of rejecting.
type AxisError struct {
	Axis  string
	Value uint8
}

// Error implements error.
func (e *AxisError) Error() string {
	return fmt.Sprintf("axis %s out of range: %d", e.Axis, e.Value)
}
