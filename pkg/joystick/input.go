// Package joystick drives the transmitter from a joystick device.
package joystick

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rcvehicle/pkg/joystick/device"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// AxisRange is the largest magnitude reported by a joystick axis.
const AxisRange = device.AxisMax

// Target receives mapped joystick input. transmitter.Transmitter
// implements it.
type Target interface {
	SetSteering(v uint8)
	SetThrottle(v uint8)
	ToggleSpeedLimit() bool
	ToggleRampLimit() bool
	Neutral()
}

// AxisValue maps a joystick axis value to the command axis range.
func AxisValue(v int, invert bool) uint8 {
	if v > AxisRange {
		v = AxisRange
	} else if v < -AxisRange {
		v = -AxisRange
	}
	if invert {
		v = -v
	}
	n := ((v+AxisRange)*int(wire.AxisMax) + AxisRange) / (2 * AxisRange)
	return uint8(n)
}

// Mapper translates device events into Target calls.
type Mapper struct {
	Config Config
	Target Target
}

// Handle applies one event.
func (m *Mapper) Handle(ev device.Event) {
	switch e := ev.(type) {
	case device.AxisEvent:
		switch e.Index() {
		case m.Config.SteeringAxis:
			m.Target.SetSteering(AxisValue(e.Value(), m.Config.InvertSteering))
		case m.Config.ThrottleAxis:
			m.Target.SetThrottle(AxisValue(e.Value(), m.Config.InvertThrottle))
		}
	case device.ButtonEvent:
		// the initial state of a button is not a press.
		if e.IsInit() || !e.Pressed() {
			return
		}
		switch e.Index() {
		case m.Config.SpeedLimitButton:
			glog.Infof("speed limit: %v", m.Target.ToggleSpeedLimit())
		case m.Config.RampLimitButton:
			glog.Infof("ramp limit: %v", m.Target.ToggleRampLimit())
		case m.Config.NeutralButton:
			m.Target.Neutral()
		}
	}
}

// Input opens a joystick and feeds its events to the Mapper. The
// device is reopened when it disappears.
type Input struct {
	Mapper

	// Open defaults to opening Config.DeviceIndex.
	Open        func() (device.Device, error)
	RetryPeriod time.Duration

	lock sync.Mutex
	name string
}

// DeviceName returns the name of the opened device, empty if none.
func (in *Input) DeviceName() string {
	in.lock.Lock()
	defer in.lock.Unlock()
	return in.name
}

func (in *Input) open() (device.Device, error) {
	if in.Open != nil {
		return in.Open()
	}
	if in.Config.DeviceIndex >= 0 {
		return device.Open(in.Config.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

func (in *Input) setName(name string) {
	in.lock.Lock()
	in.name = name
	in.lock.Unlock()
}

// Run implements Runnable.
func (in *Input) Run(ctx context.Context) error {
	retry := in.RetryPeriod
	if retry <= 0 {
		retry = time.Second
	}
	var dev device.Device
	var eventCh chan device.Event
	defer func() {
		if dev != nil {
			dev.Close()
		}
	}()
	deviceTimer := time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deviceTimer:
			deviceTimer = nil
			js, err := in.open()
			if err != nil {
				glog.V(1).Infof("open joystick: %v", err)
				deviceTimer = time.After(retry)
				continue
			}
			glog.Infof("joystick %d %q opened", js.Index(), js.Name())
			dev, eventCh = js, make(chan device.Event, 1)
			in.setName(js.Name())
			go in.poll(ctx, dev, eventCh)
		case ev, ok := <-eventCh:
			if ok {
				in.Handle(ev)
				continue
			}
			glog.Warning("joystick lost, centering axes")
			in.Target.Neutral()
			dev.Close()
			dev, eventCh = nil, nil
			in.setName("")
			deviceTimer = time.After(retry)
		}
	}
}

func (in *Input) poll(ctx context.Context, dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.V(1).Infof("joystick read error: %v", err)
			return
		}
		if ev == nil {
			continue
		}
		if in.Config.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch evt := ev.(type) {
			case device.AxisEvent:
				glog.Infof(prefix+"Axis %d: %d", evt.Index(), evt.Value())
			case device.ButtonEvent:
				glog.Infof(prefix+"Button %d: %v", evt.Index(), evt.Pressed())
			}
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}
