// Package device reads Linux joystick devices (/dev/input/jsN).
package device

import (
	"errors"
	"io"
)

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// ErrNoDevice is returned by DetectAndOpen when no joystick is present.
var ErrNoDevice = errors.New("no joystick detected")

// Event is either an AxisEvent or a ButtonEvent.
type Event interface {
	// IsInit is true for the synthetic events reporting the state at open.
	IsInit() bool
	// Index of the axis or button.
	Index() int
}

// AxisEvent reports a new axis position in [-AxisMax, AxisMax].
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent reports a button press or release.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks for the next event. A nil Event with nil error is
	// an event of unknown type.
	ReadEvent() (Event, error)
}
