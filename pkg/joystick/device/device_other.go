// +build !linux

package device

import "errors"

// ErrUnsupported is returned where no joystick driver exists.
var ErrUnsupported = errors.New("joystick not supported on this platform")

// Open opens the device with specified index.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen detects a next available device from startIndex and opens it.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
