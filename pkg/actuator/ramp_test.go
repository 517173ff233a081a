package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rcvehicle/pkg/wire"
)

func TestSteeringAngle(t *testing.T) {
	conf := DefaultConfig()
	require.Equal(t, 101.0, conf.SteeringAngle(0))
	require.Equal(t, 84.5, conf.SteeringAngle(50))
	require.Equal(t, 68.0, conf.SteeringAngle(100))
	require.Equal(t, 68.0, conf.SteeringAngle(200))

	prev := conf.SteeringAngle(0)
	for s := 0; s <= 255; s++ {
		a := conf.SteeringAngle(uint8(s))
		require.True(t, a <= prev, "steering %d", s)
		require.True(t, a >= 68 && a <= 101, "steering %d", s)
		prev = a
	}
}

func TestTargetOutput(t *testing.T) {
	for _, maxPWM := range []int16{DefaultMaxPWM, DefaultLimitedMaxPWM} {
		for th := 0; th <= 255; th++ {
			out := TargetOutput(uint8(th), maxPWM)
			switch {
			case th < 50:
				require.True(t, out < 0, "throttle %d", th)
			case th == 50:
				require.Equal(t, int16(0), out)
			default:
				require.True(t, out > 0, "throttle %d", th)
			}
			require.True(t, out <= maxPWM && out >= -maxPWM)
		}
	}
	tests := []struct {
		throttle uint8
		maxPWM   int16
		expected int16
	}{
		{100, 255, 255},
		{0, 255, -255},
		{100, 170, 170},
		{0, 170, -170},
		{51, 255, 5},
		{49, 255, -5},
		{75, 170, 85},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, TargetOutput(test.throttle, test.maxPWM))
	}
}

func TestRampTiming(t *testing.T) {
	tests := []struct {
		name     string
		cmd      wire.CommandPacket
		interval time.Duration
		limit    int16
	}{
		{"normal", wire.CommandPacket{Throttle: 100}, 7 * time.Millisecond, 255},
		{"ramp limit", wire.CommandPacket{Throttle: 100, RampLimit: true}, 12 * time.Millisecond, 255},
		{"speed limit", wire.CommandPacket{Throttle: 0, SpeedLimit: true}, 7 * time.Millisecond, -170},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewController(DefaultConfig())
			base := time.Unix(0, 0)
			out := c.Update(base, test.cmd)
			require.Equal(t, int16(0), out.Drive)
			require.False(t, out.Brake)

			prev := c.State()
			for now := base.Add(time.Millisecond); ; now = now.Add(time.Millisecond) {
				out = c.Update(now, test.cmd)
				state := c.State()
				if now.Sub(prev.LastStep) < test.interval {
					require.Equal(t, prev.Current, state.Current)
				} else {
					diff := int(state.Current) - int(prev.Current)
					require.True(t, diff == 1 || diff == -1)
					prev = state
				}
				if state.Current == test.limit {
					steps := int(test.limit)
					if steps < 0 {
						steps = -steps
					}
					require.Equal(t, time.Duration(steps)*test.interval, now.Sub(base))
					break
				}
			}
			for i := 0; i < 100; i++ {
				out = c.Update(base.Add(time.Hour+time.Duration(i)*time.Second), test.cmd)
			}
			require.Equal(t, test.limit, out.Drive)
		})
	}
}

func TestRampBrake(t *testing.T) {
	c := NewController(DefaultConfig())
	base := time.Unix(0, 0)
	out := c.Update(base, wire.NeutralCommand())
	require.True(t, out.Brake)

	cmd := wire.CommandPacket{Steering: 50, Throttle: 51}
	out = c.Update(base.Add(7*time.Millisecond), cmd)
	require.Equal(t, int16(1), out.Drive)
	require.False(t, out.Brake)

	// target neutral but still moving: no brake until zero.
	out = c.Update(base.Add(8*time.Millisecond), wire.NeutralCommand())
	require.Equal(t, int16(1), out.Drive)
	require.False(t, out.Brake)
	out = c.Update(base.Add(14*time.Millisecond), wire.NeutralCommand())
	require.Equal(t, int16(0), out.Drive)
	require.True(t, out.Brake)
}

func TestSpeedLimitRampsDown(t *testing.T) {
	c := NewController(DefaultConfig())
	base := time.Unix(0, 0)
	now := base
	full := wire.CommandPacket{Throttle: 100}
	for c.State().Current < 255 {
		c.Update(now, full)
		now = now.Add(time.Millisecond)
	}
	limited := wire.CommandPacket{Throttle: 100, SpeedLimit: true}
	out := c.Update(now, limited)
	require.Equal(t, int16(170), c.State().Target)
	require.True(t, out.Drive >= 254)
	for i := 0; i < 85*7; i++ {
		now = now.Add(time.Millisecond)
		out = c.Update(now, limited)
	}
	require.Equal(t, int16(170), out.Drive)
}

type recorder struct {
	angle  float64
	drive  int16
	brakes int
	err    error
}

func (r *recorder) SetAngle(a float64) error {
	r.angle = a
	return r.err
}

func (r *recorder) Drive(m int16) error {
	r.drive = m
	return r.err
}

func (r *recorder) Brake() error {
	r.brakes++
	return r.err
}

func TestApply(t *testing.T) {
	r := &recorder{}
	Apply(Output{SteeringDegrees: 70, Drive: 12}, r, r)
	require.Equal(t, 70.0, r.angle)
	require.Equal(t, int16(12), r.drive)
	require.Equal(t, 0, r.brakes)

	r.err = errors.New("i2c timeout")
	Apply(Output{SteeringDegrees: 84.5, Brake: true}, r, r)
	require.Equal(t, 84.5, r.angle)
	require.Equal(t, 1, r.brakes)
	Apply(Output{}, nil, nil)
}
