package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSensors struct {
	battery, ref uint16
	err          error
	reads        int
}

func (s *fakeSensors) BatteryRaw() (uint16, error) {
	s.reads++
	return s.battery, s.err
}

func (s *fakeSensors) ReferenceRaw() (uint16, error) {
	return s.ref, s.err
}

func TestConversions(t *testing.T) {
	conf := DefaultConfig()
	require.InDelta(t, 4.2, conf.BatteryVolts(652), 0.005)
	require.InDelta(t, 5.0, conf.SupplyVolts(225), 0.002)
	require.Equal(t, 0.0, conf.SupplyVolts(0))

	require.True(t, conf.BatteryOK(3.5))
	require.False(t, conf.BatteryOK(3.499))
	require.True(t, conf.BatteryOK(4.2))
}

func TestSamplerPeriod(t *testing.T) {
	sensors := &fakeSensors{battery: 652, ref: 225}
	s := NewSampler(DefaultConfig(), sensors)
	base := time.Unix(0, 0)

	require.True(t, s.Tick(base))
	ack := s.Ack()
	require.True(t, ack.BatteryOK)
	require.InDelta(t, 4.2, ack.BatteryVoltage, 0.005)
	require.InDelta(t, 5.0, ack.SupplyVoltage, 0.002)

	for ms := 1; ms < 1000; ms += 7 {
		require.False(t, s.Tick(base.Add(time.Duration(ms)*time.Millisecond)))
	}
	require.Equal(t, 1, sensors.reads)

	sensors.battery = 500 // 3.22V
	require.True(t, s.Tick(base.Add(time.Second)))
	require.False(t, s.Ack().BatteryOK)
	require.Equal(t, uint64(2), s.Samples())
	require.Equal(t, base.Add(time.Second), s.Reading().At)
}

func TestSamplerKeepsValueOnError(t *testing.T) {
	sensors := &fakeSensors{battery: 652, ref: 225}
	s := NewSampler(DefaultConfig(), sensors)
	s.Sample(time.Unix(0, 0))
	before := s.Ack()

	sensors.err = errors.New("adc busy")
	sensors.battery = 0
	s.Sample(time.Unix(1, 0))
	require.Equal(t, before, s.Ack())
}
