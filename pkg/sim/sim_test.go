package sim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rcvehicle/pkg/telemetry"
)

func TestBatteryReadings(t *testing.T) {
	conf := telemetry.DefaultConfig()
	b := NewBattery(4.2, 5)
	raw, err := b.BatteryRaw()
	require.NoError(t, err)
	require.InDelta(t, 4.2, conf.BatteryVolts(raw), 0.01)
	ref, err := b.ReferenceRaw()
	require.NoError(t, err)
	require.InDelta(t, 5.0, conf.SupplyVolts(ref), 0.02)

	b.Drain(10)
	require.Equal(t, 0.0, b.Volts())
	raw, _ = b.BatteryRaw()
	require.Equal(t, uint16(0), raw)
}

func TestDevices(t *testing.T) {
	s := &Servo{}
	require.NoError(t, s.SetAngle(84.5))
	require.Equal(t, ErrAngleRange, s.SetAngle(200))
	require.Equal(t, 84.5, s.Angle())
	s.SetFault(true)
	require.Equal(t, ErrFault, s.SetAngle(90))

	m := &Motor{}
	require.NoError(t, m.Drive(-20))
	drive, braked := m.State()
	require.Equal(t, int16(-20), drive)
	require.False(t, braked)
	require.NoError(t, m.Brake())
	_, braked = m.State()
	require.True(t, braked)

	l := &Light{}
	l.Set(true)
	l.Set(true)
	l.Set(false)
	require.Equal(t, 2, l.Toggles())
	require.False(t, l.On())
}

func TestBodyAdvance(t *testing.T) {
	testCases := []struct {
		name  string
		angle float64
		drive int16
		check func(*testing.T, Pose2D)
	}{
		{
			name:  "straight",
			angle: DefaultSteeringCenter,
			drive: 255,
			check: func(t *testing.T, p Pose2D) {
				require.InDelta(t, 2000, p.X, 1e-6)
				require.InDelta(t, 0, p.Y, 1e-6)
			},
		},
		{
			name:  "reverse half",
			angle: DefaultSteeringCenter,
			drive: -128,
			check: func(t *testing.T, p Pose2D) {
				require.InDelta(t, -2000*128.0/255, p.X, 1e-6)
			},
		},
		{
			name:  "left",
			angle: 101,
			drive: 100,
			check: func(t *testing.T, p Pose2D) {
				require.True(t, p.Orientation > 0)
				require.True(t, p.Y > 0)
			},
		},
		{
			name:  "right",
			angle: 68,
			drive: 100,
			check: func(t *testing.T, p Pose2D) {
				require.True(t, p.Orientation < 0)
				require.True(t, p.Y < 0)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			servo, motor, battery := &Servo{}, &Motor{}, NewBattery(4, 5)
			require.NoError(t, servo.SetAngle(tc.angle))
			require.NoError(t, motor.Drive(tc.drive))
			b := NewBody(DefaultBody(), servo, motor, battery)
			base := time.Unix(0, 0)
			b.Advance(base)
			for i := 1; i <= 100; i++ {
				b.Advance(base.Add(time.Duration(i) * 10 * time.Millisecond))
			}
			tc.check(t, b.Pose())
			require.True(t, battery.Volts() < 4)
		})
	}
}

func TestBodyBraked(t *testing.T) {
	servo, motor := &Servo{}, &Motor{}
	servo.SetAngle(DefaultSteeringCenter)
	motor.Brake()
	b := NewBody(DefaultBody(), servo, motor, nil)
	base := time.Unix(0, 0)
	b.Advance(base)
	b.Advance(base.Add(time.Second))
	require.Equal(t, Pose2D{}, b.Pose())
	require.Equal(t, 0.0, b.Speed())
}

func TestAngle(t *testing.T) {
	require.InDelta(t, math.Pi/2, float64(AngleFromDegrees(90)), 1e-9)
	require.InDelta(t, -90, AngleFromDegrees(270).Degrees(), 1e-9)
	require.InDelta(t, 0, float64(AngleFromDegrees(30).AddRadians(-math.Pi/6)), 1e-9)
}
