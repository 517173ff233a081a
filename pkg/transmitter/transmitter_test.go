package transmitter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/link"
	"github.com/robotalks/rcvehicle/pkg/radio/virtual"
	"github.com/robotalks/rcvehicle/pkg/sim"
	"github.com/robotalks/rcvehicle/pkg/vehicle"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

func run(clock *fx.ManualClock, loop *fx.Loop, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(time.Millisecond)
		loop.Step(context.Background())
	}
}

func TestTransmitterDrivesVehicle(t *testing.T) {
	clock := fx.NewManualClock(time.Unix(100, 0))
	air := virtual.NewAir()
	conf := vehicle.DefaultConfig()
	conf.Identity = 3
	v, err := conf.New(vehicle.Hardware{
		Radio:   air.Transceiver(),
		Servo:   &sim.Servo{},
		Motor:   &sim.Motor{},
		Light:   &sim.Light{},
		Sensors: sim.NewBattery(3.9, 5),
	}, clock)
	require.NoError(t, err)
	tx := New(air.Transmitter(v.Profile.Address), 0)
	loop := v.NewLoop(clock).Add(tx)

	tx.SetThrottle(80)
	tx.SetSteering(30)
	run(clock, loop, 100)
	st := tx.Status()
	require.Equal(t, uint64(5), st.Sent)
	require.Equal(t, uint64(5), st.Acks)
	require.Zero(t, st.Failed)
	require.False(t, st.AckAt.IsZero())
	require.True(t, st.Ack.BatteryOK)
	require.InDelta(t, 3.9, st.Ack.BatteryVoltage, 0.05)

	vs := v.Status()
	require.Equal(t, link.Connected, vs.Link.State)
	require.Equal(t, uint8(80), vs.Link.Command.Throttle)
	require.True(t, vs.Motor.Current > 0)

	tx.Pause()
	run(clock, loop, 1100)
	require.Equal(t, uint64(5), tx.Status().Sent)
	vs = v.Status()
	require.Equal(t, link.Failsafe, vs.Link.State)
	require.Equal(t, wire.Neutral, vs.Link.Command.Throttle)

	tx.Resume()
	run(clock, loop, 2)
	require.Equal(t, link.Connected, v.Status().Link.State)
	require.Equal(t, uint64(6), tx.Status().Sent)
}

type fakeSender struct {
	err  error
	sent [][]byte
	acks [][]byte
}

func (s *fakeSender) Send(payload []byte) error {
	s.sent = append(s.sent, payload)
	return s.err
}

func (s *fakeSender) TakeAck() ([]byte, bool) {
	if len(s.acks) == 0 {
		return nil, false
	}
	ack := s.acks[0]
	s.acks = s.acks[1:]
	return ack, true
}

func TestTransmitterErrors(t *testing.T) {
	clock := fx.NewManualClock(time.Unix(100, 0))
	sender := &fakeSender{err: errors.New("offline")}
	tx := New(sender, 10*time.Millisecond)
	loop := fx.NewLoop().WithClock(clock).Add(tx)

	good := wire.AckPacket{SupplyVoltage: 5, BatteryVoltage: 3.2}
	sender.acks = [][]byte{good.Bytes(), {1, 2}}
	run(clock, loop, 25)
	st := tx.Status()
	require.Equal(t, uint64(3), st.Sent)
	require.Equal(t, uint64(3), st.Failed)
	require.Equal(t, uint64(1), st.Acks)
	require.False(t, st.Ack.BatteryOK)
	require.Len(t, sender.sent, 3)
	cmd, err := wire.DecodeCommand(sender.sent[0])
	require.NoError(t, err)
	require.Equal(t, wire.NeutralCommand(), cmd)
}

func TestTransmitterSetters(t *testing.T) {
	tx := New(&fakeSender{}, 0)
	require.Equal(t, DefaultPeriod, tx.Period)
	tx.SetSteering(250)
	tx.SetThrottle(0)
	tx.SetAux(1, 10)
	tx.SetAux(2, 90)
	cmd := tx.Command()
	require.Equal(t, wire.AxisMax, cmd.Steering)
	require.Equal(t, uint8(0), cmd.Throttle)
	require.Equal(t, uint8(10), cmd.Aux1)
	require.Equal(t, uint8(90), cmd.Aux2)

	require.True(t, tx.ToggleSpeedLimit())
	require.True(t, tx.ToggleRampLimit())
	require.False(t, tx.ToggleRampLimit())
	tx.SetRampLimit(true)
	tx.Neutral()
	cmd = tx.Command()
	require.Equal(t, wire.Neutral, cmd.Steering)
	require.Equal(t, wire.Neutral, cmd.Aux2)
	require.True(t, cmd.SpeedLimit)
	require.True(t, cmd.RampLimit)
	tx.SetSpeedLimit(false)
	require.False(t, tx.Command().SpeedLimit)
}
