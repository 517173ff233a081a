package joystick

import (
	"flag"
)

// Config defines how a joystick drives the transmitter.
type Config struct {
	DeviceIndex int
	Verbose     bool

	SteeringAxis     int
	ThrottleAxis     int
	InvertSteering   bool
	InvertThrottle   bool
	SpeedLimitButton int
	RampLimitButton  int
	NeutralButton    int
}

var defaultConfig = Config{
	DeviceIndex:      -1,
	SteeringAxis:     0,
	ThrottleAxis:     1,
	InvertThrottle:   true,
	SpeedLimitButton: 0,
	RampLimitButton:  1,
	NeutralButton:    -1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "js-device", defaultConfig.DeviceIndex, "Joystick device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "js-verbose", defaultConfig.Verbose, "Print joystick events.")
	flag.IntVar(&defaultConfig.SteeringAxis, "js-steering-axis", defaultConfig.SteeringAxis, "Joystick axis for steering.")
	flag.IntVar(&defaultConfig.ThrottleAxis, "js-throttle-axis", defaultConfig.ThrottleAxis, "Joystick axis for throttle.")
	flag.BoolVar(&defaultConfig.InvertSteering, "js-invert-steering", defaultConfig.InvertSteering, "Invert the steering axis.")
	flag.BoolVar(&defaultConfig.InvertThrottle, "js-invert-throttle", defaultConfig.InvertThrottle, "Invert the throttle axis.")
	flag.IntVar(&defaultConfig.SpeedLimitButton, "js-speedlimit-button", defaultConfig.SpeedLimitButton, "Button toggling speed limit, -1 to disable.")
	flag.IntVar(&defaultConfig.RampLimitButton, "js-ramplimit-button", defaultConfig.RampLimitButton, "Button toggling ramp limit, -1 to disable.")
	flag.IntVar(&defaultConfig.NeutralButton, "js-neutral-button", defaultConfig.NeutralButton, "Button centering all axes, -1 to disable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewInput creates an Input driving target using the config.
func (c *Config) NewInput(target Target) *Input {
	return &Input{Mapper: Mapper{Config: *c, Target: target}}
}
