// Package telemetry samples the supply and battery voltages reported
// back to the operator.
package telemetry

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// Sensors reads the raw analog inputs.
type Sensors interface {
	// BatteryRaw is the ADC reading of the battery divider.
	BatteryRaw() (uint16, error)
	// ReferenceRaw is the ADC reading of the internal bandgap
	// reference measured against the supply.
	ReferenceRaw() (uint16, error)
}

// Config defines the conversion constants and cadence.
type Config struct {
	Period         time.Duration `yaml:"period"`
	BatteryDivider float64       `yaml:"battery_divider"`
	LowBattery     float64       `yaml:"low_battery"`
	ReferenceScale float64       `yaml:"reference_scale"`
}

// Defaults
const (
	DefaultPeriod         = time.Second
	DefaultBatteryDivider = 155.15
	DefaultLowBattery     = 3.5
	// DefaultReferenceScale is 1.1V * 1023 steps, in volts*steps.
	DefaultReferenceScale = 1125.3
)

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Period:         DefaultPeriod,
		BatteryDivider: DefaultBatteryDivider,
		LowBattery:     DefaultLowBattery,
		ReferenceScale: DefaultReferenceScale,
	}
}

// BatteryVolts converts the divider reading.
func (c Config) BatteryVolts(raw uint16) float64 {
	if c.BatteryDivider <= 0 {
		return 0
	}
	return float64(raw) / c.BatteryDivider
}

// SupplyVolts converts the reference reading. The reference is fixed,
// so a lower supply yields a higher reading.
func (c Config) SupplyVolts(raw uint16) float64 {
	if raw == 0 {
		return 0
	}
	return c.ReferenceScale / float64(raw)
}

// BatteryOK reports whether volts is at or above the low threshold.
func (c Config) BatteryOK(volts float64) bool {
	return volts >= c.LowBattery
}

// Reading is a converted sample.
type Reading struct {
	Ack wire.AckPacket
	At  time.Time
}

// Sampler owns the measurement fields of the Ack Packet.
type Sampler struct {
	Config  Config
	Sensors Sensors

	timer   *fx.Periodic
	reading Reading
	samples uint64
}

// NewSampler creates a Sampler.
func NewSampler(conf Config, sensors Sensors) *Sampler {
	return &Sampler{
		Config:  conf,
		Sensors: sensors,
		timer:   fx.NewPeriodic(conf.Period),
	}
}

// Tick samples when the period elapsed. It reports whether a sample was
// taken.
func (s *Sampler) Tick(now time.Time) bool {
	if !s.timer.Due(now) {
		return false
	}
	s.Sample(now)
	return true
}

// Sample reads the sensors now. A failed read keeps the previous value
// of that measurement.
func (s *Sampler) Sample(now time.Time) {
	ack := s.reading.Ack
	if raw, err := s.Sensors.BatteryRaw(); err != nil {
		glog.Warningf("battery read error: %v", err)
	} else {
		volts := s.Config.BatteryVolts(raw)
		ack.BatteryVoltage = float32(volts)
		ack.BatteryOK = s.Config.BatteryOK(volts)
	}
	if raw, err := s.Sensors.ReferenceRaw(); err != nil {
		glog.Warningf("reference read error: %v", err)
	} else {
		ack.SupplyVoltage = float32(s.Config.SupplyVolts(raw))
	}
	if ack.BatteryOK != s.reading.Ack.BatteryOK || s.samples == 0 {
		if ack.BatteryOK {
			glog.Infof("battery ok: %.2fV", ack.BatteryVoltage)
		} else {
			glog.Warningf("battery low: %.2fV", ack.BatteryVoltage)
		}
	}
	s.reading = Reading{Ack: ack, At: now}
	s.samples++
}

// Ack returns the latest Ack Packet.
func (s *Sampler) Ack() wire.AckPacket {
	return s.reading.Ack
}

// Reading returns the latest sample.
func (s *Sampler) Reading() Reading {
	return s.reading
}

// Samples returns the number of samples taken.
func (s *Sampler) Samples() uint64 {
	return s.samples
}

// Control implements framework.Controller.
func (s *Sampler) Control(cc fx.ControlContext) error {
	s.Tick(cc.Time())
	return nil
}

// AddToLoop implements LoopAdder.
func (s *Sampler) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, s)
}
