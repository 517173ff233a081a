// Package sh provides the interactive operator shell of the transmitter.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rcvehicle/pkg/joystick"
	"github.com/robotalks/rcvehicle/pkg/transmitter"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell    *ishell.Shell
	Tx       *transmitter.Transmitter
	Joystick *joystick.Config

	jsCancel func()
	jsInput  *joystick.Input
}

const (
	shellKey      = "$shell"
	runningPrompt = "tx > "
	pausedPrompt  = "tx (paused) > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&SteerCmd,
		&ThrottleCmd,
		&AuxCmd,
		&NeutralCmd,
		&SpeedLimitCmd,
		&RampLimitCmd,
		&PauseCmd,
		&ResumeCmd,
		&StatusCmd,
		&JoystickCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell operating tx.
func New(tx *transmitter.Transmitter) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:    ishell.New(),
		Tx:       tx,
		Joystick: joystick.NewConfig(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(runningPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ParseAxis parses an axis value in [0,100].
func ParseAxis(arg string) (uint8, error) {
	v, err := strconv.ParseUint(arg, 10, 8)
	if err != nil || v > 100 {
		return 0, fmt.Errorf("invalid axis value %q, expect 0-100", arg)
	}
	return uint8(v), nil
}

// ParseSwitch parses on/off against the current state. No argument
// toggles.
func ParseSwitch(args []string, current bool) (bool, error) {
	if len(args) == 0 {
		return !current, nil
	}
	switch args[0] {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	case "toggle":
		return !current, nil
	}
	return current, fmt.Errorf("invalid switch %q, expect on|off|toggle", args[0])
}

// Pause stops transmission.
func (s *Shell) Pause() {
	s.Tx.Pause()
	s.Shell.SetPrompt(pausedPrompt)
}

// Resume restarts transmission.
func (s *Shell) Resume() {
	s.Tx.Resume()
	s.Shell.SetPrompt(runningPrompt)
}

// StartJoystick starts feeding joystick events to the transmitter.
func (s *Shell) StartJoystick() {
	if s.jsCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.jsCancel, s.jsInput = cancel, s.Joystick.NewInput(s.Tx)
	go s.jsInput.Run(ctx)
}

// StopJoystick stops the joystick input and centers the axes.
func (s *Shell) StopJoystick() {
	if s.jsCancel == nil {
		return
	}
	s.jsCancel()
	s.jsCancel, s.jsInput = nil, nil
	s.Tx.Neutral()
}

// JoystickStatus describes the joystick input.
func (s *Shell) JoystickStatus() string {
	if s.jsInput == nil {
		return "off"
	}
	if name := s.jsInput.DeviceName(); name != "" {
		return "on: " + name
	}
	return "on: waiting for device"
}

// PrintStatus prints the transmitter status.
func (s *Shell) PrintStatus(c *ishell.Context) {
	st := s.Tx.Status()
	if s.OutputJSON {
		out, err := json.Marshal(&st)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	cmd := st.Command
	c.Printf("command  steering=%d throttle=%d aux=%d,%d speedlimit=%v ramplimit=%v\n",
		cmd.Steering, cmd.Throttle, cmd.Aux1, cmd.Aux2, cmd.SpeedLimit, cmd.RampLimit)
	c.Printf("link     paused=%v sent=%d failed=%d acks=%d\n", st.Paused, st.Sent, st.Failed, st.Acks)
	if st.AckAt.IsZero() {
		c.Println("battery  unknown")
	} else {
		state := "LOW"
		if st.Ack.BatteryOK {
			state = "ok"
		}
		c.Printf("battery  %.2fV %s (supply %.2fV, at %s)\n",
			st.Ack.BatteryVoltage, state, st.Ack.SupplyVoltage, st.AckAt.Format("15:04:05.000"))
	}
	c.Printf("joystick %s\n", s.JoystickStatus())
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func axisCmd(name string, aliases []string, set func(*transmitter.Transmitter, uint8)) ishell.Cmd {
	return ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    "VALUE (0-100, 50 is neutral)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect exactly one value"))
				return
			}
			v, err := ParseAxis(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			set(ShellFrom(c).Tx, v)
		},
	}
}

func switchCmd(name string, get func(*transmitter.Transmitter) bool, set func(*transmitter.Transmitter, bool)) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: "[on|off|toggle]",
		Func: func(c *ishell.Context) {
			tx := ShellFrom(c).Tx
			on, err := ParseSwitch(c.Args, get(tx))
			if err != nil {
				c.Err(err)
				return
			}
			set(tx, on)
			c.Printf("%s %v\n", name, on)
		},
	}
}

var (
	// SteerCmd sets the steering axis.
	SteerCmd = axisCmd("steer", []string{"s"}, (*transmitter.Transmitter).SetSteering)

	// ThrottleCmd sets the throttle axis.
	ThrottleCmd = axisCmd("throttle", []string{"t"}, (*transmitter.Transmitter).SetThrottle)

	// AuxCmd sets an auxiliary axis.
	AuxCmd = ishell.Cmd{
		Name: "aux",
		Help: "1|2 VALUE",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 || (c.Args[0] != "1" && c.Args[0] != "2") {
				c.Err(fmt.Errorf("expect aux 1|2 VALUE"))
				return
			}
			v, err := ParseAxis(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			n, _ := strconv.Atoi(c.Args[0])
			ShellFrom(c).Tx.SetAux(n, v)
		},
	}

	// NeutralCmd centers all axes.
	NeutralCmd = ishell.Cmd{
		Name:    "neutral",
		Aliases: []string{"n"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Tx.Neutral()
		},
	}

	// SpeedLimitCmd switches speed limit mode.
	SpeedLimitCmd = switchCmd("speedlimit",
		func(tx *transmitter.Transmitter) bool { return tx.Command().SpeedLimit },
		(*transmitter.Transmitter).SetSpeedLimit)

	// RampLimitCmd switches ramp limit mode.
	RampLimitCmd = switchCmd("ramplimit",
		func(tx *transmitter.Transmitter) bool { return tx.Command().RampLimit },
		(*transmitter.Transmitter).SetRampLimit)

	// PauseCmd stops transmission so the vehicle fails safe.
	PauseCmd = ishell.Cmd{
		Name: "pause",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Pause()
		},
	}

	// ResumeCmd restarts transmission.
	ResumeCmd = ishell.Cmd{
		Name: "resume",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Resume()
		},
	}

	// StatusCmd prints the transmitter status and latest telemetry.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).PrintStatus(c)
		},
	}

	// JoystickCmd controls the joystick input.
	JoystickCmd = ishell.Cmd{
		Name:    "joystick",
		Aliases: []string{"js"},
		Help:    "[on|off]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				on, err := ParseSwitch(c.Args, s.jsCancel != nil)
				if err != nil {
					c.Err(err)
					return
				}
				if on {
					s.StartJoystick()
				} else {
					s.StopJoystick()
				}
			}
			c.Printf("joystick %s\n", s.JoystickStatus())
		},
	}
)
