// +build linux

package device

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	var ev Event = axisEvent{rawEvent{value: -32768, kind: evAXIS | evINIT, number: 3}}
	axis, ok := ev.(AxisEvent)
	require.True(t, ok)
	require.True(t, axis.IsInit())
	require.Equal(t, 3, axis.Index())
	require.Equal(t, -AxisMax, axis.Value())
	_, ok = ev.(ButtonEvent)
	require.False(t, ok)

	ev = buttonEvent{rawEvent{value: 1, kind: evBTN, number: 1}}
	btn, ok := ev.(ButtonEvent)
	require.True(t, ok)
	require.False(t, btn.IsInit())
	require.True(t, btn.Pressed())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(MaxDevices + 1)
	require.True(t, os.IsNotExist(err))
	require.Equal(t, "/dev/input/js7", DevicePath(7))
}
