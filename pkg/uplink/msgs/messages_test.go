package msgs

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	status := &VehicleStatus{
		Identity:        3,
		Connected:       true,
		Throttle:        100,
		Drive:           -120,
		Target:          -255,
		SteeringDegrees: 84.5,
		BatteryVoltage:  3.75,
		BatteryOk:       true,
		AcksSent:        42,
	}
	data, err := Encode(status)
	require.NoError(t, err)
	msg, err := Decode(data)
	require.NoError(t, err)
	require.True(t, proto.Equal(status, msg))
	require.Equal(t, VehicleStatusTypeID, msg.TypeID())
}

func TestDecodeUnknown(t *testing.T) {
	data, err := proto.Marshal(&Envelope{TypeId: 0x1234})
	require.NoError(t, err)
	_, err = Decode(data)
	require.EqualError(t, err, "unknown type: 1234")
}

func TestEnvelopeKind(t *testing.T) {
	require.True(t, (&Envelope{TypeId: LinkStateEventTypeID}).IsEvent())
	require.False(t, (&Envelope{TypeId: VehicleInfoTypeID}).IsEvent())
}
