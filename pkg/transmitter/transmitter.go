// Package transmitter is the operator side of the link: it keeps the
// current Command Packet and sends it at a fixed period, collecting the
// telemetry that rides back on the acks.
package transmitter

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// DefaultPeriod is the interval between command transmissions.
const DefaultPeriod = 20 * time.Millisecond

// Sender delivers command payloads and hands back ack payloads.
// virtual.Transmitter and netradio.Transmitter implement it.
type Sender interface {
	Send(payload []byte) error
	TakeAck() ([]byte, bool)
}

// Status is a snapshot of the Transmitter.
type Status struct {
	Command wire.CommandPacket
	Paused  bool
	Sent    uint64
	Failed  uint64
	Acks    uint64
	// Ack is the latest telemetry, valid when AckAt is not zero.
	Ack   wire.AckPacket
	AckAt time.Time
}

// Transmitter sends the operator command periodically. Setters may be
// called from any goroutine.
type Transmitter struct {
	Sender Sender
	Period time.Duration

	lock   sync.Mutex
	status Status
	timer  *fx.Periodic
}

// New creates a Transmitter starting from the neutral command.
func New(sender Sender, period time.Duration) *Transmitter {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Transmitter{
		Sender: sender,
		Period: period,
		status: Status{Command: wire.NeutralCommand()},
		timer:  fx.NewPeriodic(period),
	}
}

// AddToLoop implements LoopAdder.
func (t *Transmitter) AddToLoop(l *fx.Loop) {
	if r, ok := t.Sender.(fx.Runnable); ok {
		l.AddRunnable(r)
	}
	l.AddController(fx.PrLvLink, t)
}

// Control implements Controller.
func (t *Transmitter) Control(cc fx.ControlContext) error {
	now := cc.Time()
	t.collectAcks(now)
	t.lock.Lock()
	cmd, due := t.status.Command, !t.status.Paused && t.timer.Due(now)
	t.lock.Unlock()
	if !due {
		return nil
	}
	err := t.Sender.Send(cmd.Bytes())
	t.lock.Lock()
	t.status.Sent++
	if err != nil {
		t.status.Failed++
	}
	t.lock.Unlock()
	if err != nil {
		glog.V(2).Infof("send error: %v", err)
	}
	return nil
}

func (t *Transmitter) collectAcks(now time.Time) {
	for {
		payload, ok := t.Sender.TakeAck()
		if !ok {
			return
		}
		ack, err := wire.DecodeAck(payload)
		if err != nil {
			glog.Warningf("bad ack (%d bytes): %v", len(payload), err)
			continue
		}
		t.lock.Lock()
		t.status.Acks++
		t.status.Ack, t.status.AckAt = ack, now
		t.lock.Unlock()
	}
}

// Status returns a snapshot.
func (t *Transmitter) Status() Status {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.status
}

// Command returns the command being transmitted.
func (t *Transmitter) Command() wire.CommandPacket {
	return t.Status().Command
}

// Update modifies the command. Axes are clamped afterwards.
func (t *Transmitter) Update(fn func(cmd *wire.CommandPacket)) wire.CommandPacket {
	t.lock.Lock()
	defer t.lock.Unlock()
	fn(&t.status.Command)
	t.status.Command = t.status.Command.Clamped()
	return t.status.Command
}

// SetSteering sets the steering axis.
func (t *Transmitter) SetSteering(v uint8) {
	t.Update(func(cmd *wire.CommandPacket) { cmd.Steering = v })
}

// SetThrottle sets the throttle axis.
func (t *Transmitter) SetThrottle(v uint8) {
	t.Update(func(cmd *wire.CommandPacket) { cmd.Throttle = v })
}

// SetAux sets auxiliary axis 1 or 2.
func (t *Transmitter) SetAux(n int, v uint8) {
	t.Update(func(cmd *wire.CommandPacket) {
		if n == 1 {
			cmd.Aux1 = v
		} else {
			cmd.Aux2 = v
		}
	})
}

// SetSpeedLimit switches speed limit mode.
func (t *Transmitter) SetSpeedLimit(on bool) {
	t.Update(func(cmd *wire.CommandPacket) { cmd.SpeedLimit = on })
}

// SetRampLimit switches ramp limit mode.
func (t *Transmitter) SetRampLimit(on bool) {
	t.Update(func(cmd *wire.CommandPacket) { cmd.RampLimit = on })
}

// ToggleSpeedLimit flips speed limit mode.
func (t *Transmitter) ToggleSpeedLimit() bool {
	return t.Update(func(cmd *wire.CommandPacket) { cmd.SpeedLimit = !cmd.SpeedLimit }).SpeedLimit
}

// ToggleRampLimit flips ramp limit mode.
func (t *Transmitter) ToggleRampLimit() bool {
	return t.Update(func(cmd *wire.CommandPacket) { cmd.RampLimit = !cmd.RampLimit }).RampLimit
}

// Neutral centers all axes and keeps the modes.
func (t *Transmitter) Neutral() {
	t.Update(func(cmd *wire.CommandPacket) {
		*cmd = cmd.Neutralized()
	})
}

// Pause stops transmitting, which lets the vehicle fail safe.
func (t *Transmitter) Pause() {
	t.lock.Lock()
	t.status.Paused = true
	t.lock.Unlock()
}

// Resume restarts transmitting with the next cycle.
func (t *Transmitter) Resume() {
	t.lock.Lock()
	t.status.Paused = false
	t.timer.Reset()
	t.lock.Unlock()
}
