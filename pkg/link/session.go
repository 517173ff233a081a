// Package link implements the vehicle end of the command link: command
// reception, telemetry piggybacking and fail-safe detection.
package link

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// DefaultTimeout is the silence after which the link fails safe.
const DefaultTimeout = time.Second

// State is the fail-safe state.
type State int

// States
const (
	Failsafe State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Failsafe:
		return "failsafe"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// AckSource provides the telemetry attached to acknowledgements.
type AckSource interface {
	Ack() wire.AckPacket
}

// StateNotifier receives state changes.
type StateNotifier interface {
	LinkStateChanged(from, to State, at time.Time)
}

// StateChangedFunc is the func form of StateNotifier.
type StateChangedFunc func(from, to State, at time.Time)

// LinkStateChanged implements StateNotifier.
func (f StateChangedFunc) LinkStateChanged(from, to State, at time.Time) {
	f(from, to, at)
}

// Snapshot is the command handed downstream in one cycle.
type Snapshot struct {
	Command wire.CommandPacket
	State   State
	// Since is when State was entered.
	Since time.Time
	// Received is true when a packet arrived in this cycle.
	Received bool
}

// Stats counts session events.
type Stats struct {
	Commands  uint64
	Malformed uint64
	// OutOfRange counts accepted commands carrying an axis beyond
	// wire.AxisMax. They are clamped downstream.
	OutOfRange uint64
	Failsafes  uint64
}

// Session owns the Link State.
type Session struct {
	Timeout  time.Duration
	Notifier StateNotifier

	port *radio.Port
	acks AckSource

	command     wire.CommandPacket
	received    bool
	lastReceive time.Time
	state       State
	since       time.Time
	stats       Stats
}

// NewSession creates a Session in Failsafe with a neutral command.
func NewSession(port *radio.Port, acks AckSource, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		Timeout: timeout,
		port:    port,
		acks:    acks,
		command: wire.NeutralCommand(),
		state:   Failsafe,
	}
}

// Poll checks for one inbound packet and derives the command for this cycle.
func (s *Session) Poll(now time.Time) Snapshot {
	got := s.receive(now)

	state := Failsafe
	if s.received && now.Sub(s.lastReceive) <= s.Timeout {
		state = Connected
	}
	if state != s.state {
		s.transit(state, now)
	}

	snapshot := Snapshot{Command: s.command, State: s.state, Since: s.since, Received: got}
	if s.state == Failsafe {
		snapshot.Command = snapshot.Command.Neutralized()
	}
	return snapshot
}

func (s *Session) receive(now time.Time) bool {
	payload, err := s.port.Poll()
	if err != nil {
		glog.Warningf("radio poll error: %v", err)
		return false
	}
	if payload == nil {
		return false
	}
	cmd, err := wire.DecodeCommand(payload)
	if err != nil {
		s.stats.Malformed++
		if glog.V(1) {
			glog.Infof("malformed command (%d bytes): %v", len(payload), err)
		}
		return false
	}
	if err = cmd.Validate(); err != nil {
		s.stats.OutOfRange++
		if glog.V(1) {
			glog.Infof("command accepted, clamping: %v", err)
		}
	}
	if s.acks != nil {
		ack := s.acks.Ack()
		if _, err = s.port.Ack(ack.Bytes()); err != nil {
			glog.Warningf("ack error: %v", err)
		}
	}
	s.command, s.received, s.lastReceive = cmd, true, now
	s.stats.Commands++
	return true
}

func (s *Session) transit(to State, now time.Time) {
	from := s.state
	s.state, s.since = to, now
	if to == Failsafe {
		s.stats.Failsafes++
		if s.received {
			glog.Warningf("link lost, no command for %v", now.Sub(s.lastReceive))
		}
	} else {
		glog.Infof("link connected")
	}
	if s.Notifier != nil {
		s.Notifier.LinkStateChanged(from, to, now)
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Connected is a shortcut for State() == Connected.
func (s *Session) Connected() bool {
	return s.state == Connected
}

// LastReceive returns the time of the last command, and false if none
// was ever received.
func (s *Session) LastReceive() (time.Time, bool) {
	return s.lastReceive, s.received
}

// Stats returns a copy of the counters.
func (s *Session) Stats() Stats {
	return s.stats
}

// Port returns the underlying radio port.
func (s *Session) Port() *radio.Port {
	return s.port
}

// Link is the Controller form of Session. The command of the current
// cycle is available from Snapshot after it ran.
type Link struct {
	*Session
	snapshot Snapshot
}

// NewLink wraps a Session.
func NewLink(s *Session) *Link {
	l := &Link{Session: s}
	l.snapshot = Snapshot{Command: s.command.Neutralized(), State: s.state}
	return l
}

// Control implements framework.Controller.
func (l *Link) Control(cc fx.ControlContext) error {
	l.snapshot = l.Poll(cc.Time())
	return nil
}

// Snapshot returns the result of the latest poll.
func (l *Link) Snapshot() Snapshot {
	return l.snapshot
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvLink, l)
}
