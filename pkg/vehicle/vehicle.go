// Package vehicle assembles the control core and runs it in the loop.
package vehicle

import (
	"log"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rcvehicle/pkg/actuator"
	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/indicator"
	"github.com/robotalks/rcvehicle/pkg/link"
	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/telemetry"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// Hardware lists the collaborators wrapping the physical devices.
type Hardware struct {
	Radio   radio.Transceiver
	Servo   actuator.Servo
	Motor   actuator.Motor
	Light   indicator.Light
	Sensors telemetry.Sensors
}

// Status is the vehicle state after one iteration.
type Status struct {
	Identity  radio.Identity
	Time      time.Time
	Iteration uint64
	Link      link.Snapshot
	LinkStats link.Stats
	Motor     actuator.MotorState
	Output    actuator.Output
	Ack       wire.AckPacket
	Indicator indicator.Mode
	Light     bool
	Radio     radio.Stats
}

// Observer receives the status at the end of every iteration.
// It runs inside the loop and must return promptly.
type Observer interface {
	VehicleStatus(fx.ControlContext, *Status)
}

// ObserverFunc is the func form of Observer.
type ObserverFunc func(fx.ControlContext, *Status)

// VehicleStatus implements Observer.
func (f ObserverFunc) VehicleStatus(cc fx.ControlContext, st *Status) {
	f(cc, st)
}

// Vehicle is the control core.
type Vehicle struct {
	Config    Config
	Profile   Profile
	Hardware  Hardware
	Sampler   *telemetry.Sampler
	Link      *link.Link
	Ramp      *actuator.Controller
	Indicator *indicator.Indicator

	observers []Observer
	notifiers []link.StateNotifier

	output actuator.Output
	status Status
	lock   sync.RWMutex
}

// New creates the Vehicle. clock is used for the bounded ack retry
// wait, nil for the system clock.
func (c *Config) New(hw Hardware, clock fx.Clock) (*Vehicle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	profile, err := c.Profile()
	if err != nil {
		return nil, err
	}
	port, err := radio.Open(hw.Radio, c.Radio, profile.Identity, clock)
	if err != nil {
		return nil, err
	}
	v := &Vehicle{
		Config:    *c,
		Profile:   profile,
		Hardware:  hw,
		Sampler:   telemetry.NewSampler(c.Telemetry, hw.Sensors),
		Ramp:      actuator.NewController(c.Actuator),
		Indicator: indicator.New(profile.Pattern, hw.Light),
	}
	session := link.NewSession(port, v.Sampler, c.FailsafeTimeout)
	session.Notifier = link.StateChangedFunc(v.linkStateChanged)
	v.Link = link.NewLink(session)
	glog.Infof("vehicle %d ready: address %s, %d pulses", profile.Identity, profile.Address, profile.Pattern.Pulses)
	return v, nil
}

// MustNew creates the Vehicle or fails.
func (c *Config) MustNew(hw Hardware, clock fx.Clock) *Vehicle {
	v, err := c.New(hw, clock)
	if err != nil {
		log.Fatalln(err)
	}
	return v
}

// NewLoop creates a loop at the configured interval with the vehicle added.
func (v *Vehicle) NewLoop(clock fx.Clock) *fx.Loop {
	l := fx.NewLoop()
	l.Interval = v.Config.LoopInterval
	if clock != nil {
		l.WithClock(clock)
	}
	return l.Add(v)
}

// AddObserver registers an Observer, which also receives link state
// changes if it implements link.StateNotifier.
func (v *Vehicle) AddObserver(o Observer) {
	v.observers = append(v.observers, o)
	if n, ok := o.(link.StateNotifier); ok {
		v.notifiers = append(v.notifiers, n)
	}
}

// AddToLoop implements LoopAdder. Steps run in this order in every
// iteration whether or not a packet arrived.
func (v *Vehicle) AddToLoop(l *fx.Loop) {
	l.Add(v.Sampler, v.Link)
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(v.Actuate))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(v.RefreshIndicator))
	l.AddController(fx.PrLvIdle, fx.ControlFunc(v.Observe))
}

// Actuate pushes the current command through the ramp and applies it.
func (v *Vehicle) Actuate(cc fx.ControlContext) error {
	v.output = v.Ramp.Update(cc.Time(), v.Link.Snapshot().Command)
	actuator.Apply(v.output, v.Hardware.Servo, v.Hardware.Motor)
	return nil
}

// RefreshIndicator re-evaluates the status light.
func (v *Vehicle) RefreshIndicator(cc fx.ControlContext) error {
	v.Indicator.Refresh(cc.Time(), v.Sampler.Ack().BatteryOK)
	return nil
}

// Observe publishes the status of this iteration.
func (v *Vehicle) Observe(cc fx.ControlContext) error {
	st := Status{
		Identity:  v.Profile.Identity,
		Time:      cc.Time(),
		Iteration: cc.Iteration(),
		Link:      v.Link.Snapshot(),
		LinkStats: v.Link.Stats(),
		Motor:     v.Ramp.State(),
		Output:    v.output,
		Ack:       v.Sampler.Ack(),
		Indicator: v.Indicator.Command().Mode,
		Light:     v.Indicator.Level(),
		Radio:     v.Link.Port().Stats(),
	}
	v.lock.Lock()
	v.status = st
	v.lock.Unlock()
	for _, o := range v.observers {
		o.VehicleStatus(cc, &st)
	}
	return nil
}

// Status returns the status of the last iteration. It is safe to call
// from outside the loop.
func (v *Vehicle) Status() Status {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return v.status
}

func (v *Vehicle) linkStateChanged(from, to link.State, at time.Time) {
	for _, n := range v.notifiers {
		n.LinkStateChanged(from, to, at)
	}
}
