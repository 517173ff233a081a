package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPatternLevel(t *testing.T) {
	p := IdentityPattern(3, DefaultTiming)
	require.Equal(t, 1900*time.Millisecond, p.Cycle())

	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	tests := []struct {
		at    int
		level bool
	}{
		{0, true},
		{99, true},
		{100, false},
		{299, false},
		{300, true},
		{600, true},
		{700, false},
		{899, false},
		{900, false},
		{1899, false},
		{1900, true},
	}
	for _, test := range tests {
		require.Equal(t, test.level, p.Level(ms(test.at)), "at %dms", test.at)
	}
}

func TestPulseCount(t *testing.T) {
	for id := 1; id <= 5; id++ {
		p := IdentityPattern(id, DefaultTiming)
		pulses, prev := 0, false
		for at := time.Duration(0); at < p.Cycle(); at += time.Millisecond {
			level := p.Level(at)
			if level && !prev {
				pulses++
			}
			prev = level
		}
		require.Equal(t, id, pulses)
	}
}

func TestCommandFor(t *testing.T) {
	p := IdentityPattern(2, DefaultTiming)
	require.Equal(t, Command{Mode: ModeBlink, Pattern: p}, CommandFor(true, p))
	cmd := CommandFor(false, p)
	require.Equal(t, ModeSolid, cmd.Mode)
	for at := time.Duration(0); at < 3*time.Second; at += 50 * time.Millisecond {
		require.True(t, cmd.Level(at))
	}
	require.False(t, Command{}.Level(0))
}

type light struct {
	writes []bool
}

func (l *light) Set(on bool) error {
	l.writes = append(l.writes, on)
	return nil
}

func TestIndicatorRefresh(t *testing.T) {
	l := &light{}
	ind := New(IdentityPattern(1, DefaultTiming), l)
	base := time.Unix(0, 0)

	require.True(t, ind.Refresh(base, true))
	require.True(t, ind.Refresh(base.Add(50*time.Millisecond), true))
	require.False(t, ind.Refresh(base.Add(150*time.Millisecond), true))
	require.Equal(t, []bool{true, false}, l.writes)

	// low battery switches to solid immediately.
	require.True(t, ind.Refresh(base.Add(160*time.Millisecond), false))
	require.Equal(t, ModeSolid, ind.Command().Mode)

	// recovering restarts the pattern.
	require.True(t, ind.Refresh(base.Add(2*time.Second), true))
	require.False(t, ind.Refresh(base.Add(2*time.Second+100*time.Millisecond), true))
	require.Equal(t, []bool{true, false, true, false}, l.writes)
}
