package netradio

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/transport/stream"
)

func TestFrame(t *testing.T) {
	addr := radio.DefaultAddresses[1]
	b := EncodeFrame(addr, []byte{1, 2})
	require.Equal(t, []byte{0xe8, 0xe8, 0xf0, 0xf0, 0xe2, 1, 2}, b)
	a, payload, err := DecodeFrame(b)
	require.NoError(t, err)
	require.Equal(t, addr, a)
	require.Equal(t, []byte{1, 2}, payload)

	_, _, err = DecodeFrame([]byte{1, 2, 3})
	require.Equal(t, ErrBadFrame, err)
	_, _, err = DecodeFrame(make([]byte, 5+33))
	require.Equal(t, ErrBadFrame, err)
}

func pollPayload(t *testing.T, trx *Transceiver) []byte {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		payload, err := trx.Poll()
		require.NoError(t, err)
		if payload != nil {
			return payload
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no payload received")
	return nil
}

func TestTransceiverRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c1, c2 := net.Pipe()
	addr := radio.DefaultAddresses[0]

	trx := NewTransceiver()
	require.NoError(t, trx.Open(radio.DefaultConfig(), addr))
	require.Equal(t, radio.ErrNoAck, trx.SendAck([]byte{1}))
	go trx.Serve(ctx, stream.New(c1))

	tx := NewTransmitter(stream.New(c2), addr)
	go tx.Run(ctx)

	// frames for other vehicles are ignored.
	other := NewTransmitter(stream.New(c2), radio.DefaultAddresses[4])
	require.NoError(t, other.Send([]byte{9, 9, 9, 9, 9, 9}))

	require.NoError(t, tx.Send([]byte{50, 50, 100, 50, 0, 0}))
	require.Equal(t, []byte{50, 50, 100, 50, 0, 0}, pollPayload(t, trx))
	payload, err := trx.Poll()
	require.NoError(t, err)
	require.Nil(t, payload)

	require.NoError(t, trx.SendAck([]byte{1, 2, 3}))
	deadline := time.Now().Add(time.Second)
	for {
		if ack, ok := tx.TakeAck(); ok {
			require.Equal(t, []byte{1, 2, 3}, ack)
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("ack not received")
		}
		time.Sleep(time.Millisecond)
	}

	require.Equal(t, radio.ErrPayloadTooLarge, tx.Send(make([]byte, 33)))
}

func TestServeListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := radio.DefaultAddresses[2]
	trx := NewTransceiver()
	require.NoError(t, trx.Open(radio.DefaultConfig(), addr))
	done := make(chan error, 1)
	go func() { done <- trx.ServeListener(ctx, ln) }()

	conn, err := Dial(ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	tx := NewTransmitter(conn, addr)
	require.NoError(t, tx.Send([]byte{1, 2, 3, 4, 5, 6}))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, pollPayload(t, trx))

	cancel()
	require.Equal(t, context.Canceled, <-done)
}

func TestDialUnsupported(t *testing.T) {
	_, err := Dial("udp://localhost:1")
	require.EqualError(t, err, `unsupported scheme "udp"`)
}
