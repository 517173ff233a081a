// Package indicator drives the status light: a pulse train encoding the
// vehicle identity while healthy, solid on when the battery is low.
package indicator

import (
	"time"

	"github.com/golang/glog"
)

// Timing of one blink pattern.
type Timing struct {
	On    time.Duration `yaml:"on"`
	Off   time.Duration `yaml:"off"`
	Pause time.Duration `yaml:"pause"`
}

// DefaultTiming is short pulses separated by a long pause.
var DefaultTiming = Timing{
	On:    100 * time.Millisecond,
	Off:   200 * time.Millisecond,
	Pause: time.Second,
}

// Pattern is a repeating train of Pulses pulses followed by a pause.
type Pattern struct {
	Timing
	Pulses int
}

// IdentityPattern encodes the identity as the pulse count.
func IdentityPattern(identity int, timing Timing) Pattern {
	return Pattern{Timing: timing, Pulses: identity}
}

// Cycle is the length of one repetition.
func (p Pattern) Cycle() time.Duration {
	return time.Duration(p.Pulses)*(p.On+p.Off) + p.Pause
}

// Level is whether the light is on at elapsed since the pattern started.
func (p Pattern) Level(elapsed time.Duration) bool {
	cycle := p.Cycle()
	if cycle <= 0 || p.Pulses <= 0 {
		return false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	pos := elapsed % cycle
	pulse := p.On + p.Off
	if pos >= time.Duration(p.Pulses)*pulse {
		return false
	}
	return pos%pulse < p.On
}

// Mode is the indicator mode.
type Mode int

// Modes
const (
	ModeOff Mode = iota
	ModeSolid
	ModeBlink
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeSolid:
		return "solid"
	case ModeBlink:
		return "blink"
	}
	return "unknown"
}

// Command is the desired indicator output.
type Command struct {
	Mode    Mode
	Pattern Pattern
}

// CommandFor maps health to the indicator command.
func CommandFor(batteryOK bool, pattern Pattern) Command {
	if !batteryOK {
		return Command{Mode: ModeSolid}
	}
	return Command{Mode: ModeBlink, Pattern: pattern}
}

// Level evaluates the command at elapsed since it became active.
func (c Command) Level(elapsed time.Duration) bool {
	switch c.Mode {
	case ModeSolid:
		return true
	case ModeBlink:
		return c.Pattern.Level(elapsed)
	}
	return false
}

// Light is the indicator hardware.
type Light interface {
	Set(on bool) error
}

// Indicator generates the light level over time.
type Indicator struct {
	Pattern Pattern
	Light   Light

	command Command
	start   time.Time
	active  bool
	level   bool
	written bool
}

// New creates an Indicator.
func New(pattern Pattern, light Light) *Indicator {
	return &Indicator{Pattern: pattern, Light: light}
}

// Refresh re-evaluates the command and updates the light. The pattern
// restarts whenever the command changes. It returns the light level.
func (ind *Indicator) Refresh(now time.Time, batteryOK bool) bool {
	cmd := CommandFor(batteryOK, ind.Pattern)
	if !ind.active || cmd != ind.command {
		ind.command, ind.start, ind.active = cmd, now, true
		if glog.V(1) {
			glog.Infof("indicator: %s", cmd.Mode)
		}
	}
	level := cmd.Level(now.Sub(ind.start))
	if ind.Light != nil && (!ind.written || level != ind.level) {
		if err := ind.Light.Set(level); err != nil {
			glog.Warningf("indicator error: %v", err)
		} else {
			ind.written = true
		}
	}
	ind.level = level
	return level
}

// Command returns the active command.
func (ind *Indicator) Command() Command {
	return ind.command
}

// Level returns the last light level.
func (ind *Indicator) Level() bool {
	return ind.level
}
