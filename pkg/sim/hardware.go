// Package sim provides simulated vehicle hardware.
package sim

import (
	"errors"
	"sync"

	"github.com/robotalks/rcvehicle/pkg/telemetry"
)

var (
	// ErrAngleRange indicates the servo is commanded beyond its travel.
	ErrAngleRange = errors.New("servo angle out of range")
	// ErrFault is returned by a device with an injected fault.
	ErrFault = errors.New("simulated fault")
)

// Servo records the commanded angle.
type Servo struct {
	lock  sync.Mutex
	angle float64
	fault bool
}

// SetAngle implements actuator.Servo.
func (s *Servo) SetAngle(degrees float64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.fault {
		return ErrFault
	}
	if degrees < 0 || degrees > 180 {
		return ErrAngleRange
	}
	s.angle = degrees
	return nil
}

// Angle returns the last accepted angle.
func (s *Servo) Angle() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.angle
}

// SetFault makes SetAngle fail.
func (s *Servo) SetFault(fault bool) {
	s.lock.Lock()
	s.fault = fault
	s.lock.Unlock()
}

// Motor records the drive state.
type Motor struct {
	lock   sync.Mutex
	drive  int16
	braked bool
}

// Drive implements actuator.Motor.
func (m *Motor) Drive(magnitude int16) error {
	m.lock.Lock()
	m.drive, m.braked = magnitude, false
	m.lock.Unlock()
	return nil
}

// Brake implements actuator.Motor.
func (m *Motor) Brake() error {
	m.lock.Lock()
	m.drive, m.braked = 0, true
	m.lock.Unlock()
	return nil
}

// State returns the drive magnitude and whether the brake is on.
func (m *Motor) State() (int16, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.drive, m.braked
}

// Light records the indicator level.
type Light struct {
	lock    sync.Mutex
	on      bool
	toggles int
}

// Set implements indicator.Light.
func (l *Light) Set(on bool) error {
	l.lock.Lock()
	if on != l.on {
		l.toggles++
	}
	l.on = on
	l.lock.Unlock()
	return nil
}

// On returns the light level.
func (l *Light) On() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

// Toggles counts level changes.
func (l *Light) Toggles() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.toggles
}

// Battery implements telemetry.Sensors for given voltages, producing
// the raw readings the calibration expects.
type Battery struct {
	Calibration telemetry.Config

	lock   sync.Mutex
	volts  float64
	supply float64
}

// NewBattery creates a Battery.
func NewBattery(volts, supply float64) *Battery {
	return &Battery{Calibration: telemetry.DefaultConfig(), volts: volts, supply: supply}
}

// SetVolts sets the battery voltage.
func (b *Battery) SetVolts(volts float64) {
	b.lock.Lock()
	b.volts = volts
	b.lock.Unlock()
}

// Drain lowers the battery voltage, not below zero.
func (b *Battery) Drain(volts float64) {
	b.lock.Lock()
	if b.volts -= volts; b.volts < 0 {
		b.volts = 0
	}
	b.lock.Unlock()
}

// Volts returns the battery voltage.
func (b *Battery) Volts() float64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.volts
}

// BatteryRaw implements telemetry.Sensors.
func (b *Battery) BatteryRaw() (uint16, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return adc(b.volts * b.Calibration.BatteryDivider), nil
}

// ReferenceRaw implements telemetry.Sensors.
func (b *Battery) ReferenceRaw() (uint16, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.supply <= 0 {
		return 0, nil
	}
	return adc(b.Calibration.ReferenceScale / b.supply), nil
}

// adc rounds to a 10-bit reading.
func adc(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1023 {
		return 1023
	}
	return uint16(v + 0.5)
}
