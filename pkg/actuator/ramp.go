// Package actuator converts commands into steering and drive outputs.
package actuator

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rcvehicle/pkg/wire"
)

// Config defines the actuator limits.
type Config struct {
	// MaxPWM is the full-scale drive magnitude.
	MaxPWM int16 `yaml:"max_pwm"`
	// LimitedMaxPWM is the full scale when the speed limit is on.
	LimitedMaxPWM int16 `yaml:"limited_max_pwm"`
	// StepInterval is the time per unit of drive change.
	StepInterval time.Duration `yaml:"step_interval"`
	// LimitedStepInterval is used when the ramp limit is on.
	LimitedStepInterval time.Duration `yaml:"limited_step_interval"`
	// SteeringMin is the angle for full right (input 100).
	SteeringMin float64 `yaml:"steering_min"`
	// SteeringMax is the angle for full left (input 0).
	SteeringMax float64 `yaml:"steering_max"`
}

// Defaults
const (
	DefaultMaxPWM              int16 = 255
	DefaultLimitedMaxPWM       int16 = 170
	DefaultStepInterval              = 7 * time.Millisecond
	DefaultLimitedStepInterval       = 12 * time.Millisecond
	DefaultSteeringMin               = 68.0
	DefaultSteeringMax               = 101.0
)

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxPWM:              DefaultMaxPWM,
		LimitedMaxPWM:       DefaultLimitedMaxPWM,
		StepInterval:        DefaultStepInterval,
		LimitedStepInterval: DefaultLimitedStepInterval,
		SteeringMin:         DefaultSteeringMin,
		SteeringMax:         DefaultSteeringMax,
	}
}

// SteeringAngle maps steering to degrees. The mapping is inverted and
// 50 lands on the trimmed center, not 90.
func (c Config) SteeringAngle(steering uint8) float64 {
	s := float64(wire.ClampAxis(steering))
	span := float64(wire.AxisMax - wire.AxisMin)
	return c.SteeringMax - s*(c.SteeringMax-c.SteeringMin)/span
}

// Limits returns the full scale and step interval for the modes.
func (c Config) Limits(cmd wire.CommandPacket) (maxPWM int16, interval time.Duration) {
	maxPWM, interval = c.MaxPWM, c.StepInterval
	if cmd.SpeedLimit {
		maxPWM = c.LimitedMaxPWM
	}
	if cmd.RampLimit {
		interval = c.LimitedStepInterval
	}
	return
}

// TargetOutput maps throttle to a signed drive magnitude within maxPWM.
func TargetOutput(throttle uint8, maxPWM int16) int16 {
	t := int32(wire.ClampAxis(throttle))
	n := int32(wire.Neutral)
	return int16((t - n) * int32(maxPWM) / n)
}

// MotorState is the ramp state.
type MotorState struct {
	Current  int16
	Target   int16
	LastStep time.Time
}

// Output is what the hardware is told in one cycle.
type Output struct {
	SteeringDegrees float64
	Drive           int16
	Brake           bool
}

// Controller owns the MotorState.
type Controller struct {
	Config Config

	state   MotorState
	started bool
}

// NewController creates a Controller at rest.
func NewController(conf Config) *Controller {
	return &Controller{Config: conf}
}

// Update moves the drive one unit toward the target if an interval has
// passed since the last step.
func (c *Controller) Update(now time.Time, cmd wire.CommandPacket) Output {
	maxPWM, interval := c.Config.Limits(cmd)
	c.state.Target = TargetOutput(cmd.Throttle, maxPWM)
	if !c.started {
		c.started, c.state.LastStep = true, now
	} else if now.Sub(c.state.LastStep) >= interval {
		switch {
		case c.state.Current < c.state.Target:
			c.state.Current++
		case c.state.Current > c.state.Target:
			c.state.Current--
		}
		c.state.LastStep = now
	}
	out := Output{
		SteeringDegrees: c.Config.SteeringAngle(cmd.Steering),
		Drive:           c.state.Current,
		Brake:           c.state.Target == 0 && c.state.Current == 0,
	}
	if glog.V(3) {
		glog.Infof("actuator: target %d current %d steering %.1f", c.state.Target, c.state.Current, out.SteeringDegrees)
	}
	return out
}

// State returns the MotorState.
func (c *Controller) State() MotorState {
	return c.state
}
