// Package netradio emulates the radio link over packet transports.
//
// Every frame is the 5-byte pipe address followed by the payload. The
// vehicle side answers a command frame with an ack frame on the same
// connection, which is how the telemetry piggybacks on the transaction.
package netradio

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/transport"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

const addrLen = len(radio.Address{})

// InboxSize is the number of frames buffered between the network and Poll.
const InboxSize = 16

// ErrBadFrame indicates a frame is too short or too long.
var ErrBadFrame = errors.New("bad frame")

// EncodeFrame prepends the address to payload.
func EncodeFrame(addr radio.Address, payload []byte) []byte {
	b := make([]byte, addrLen+len(payload))
	copy(b, addr[:])
	copy(b[addrLen:], payload)
	return b
}

// DecodeFrame splits a frame into address and payload.
func DecodeFrame(b []byte) (addr radio.Address, payload []byte, err error) {
	if len(b) < addrLen || len(b) > addrLen+wire.MaxPayloadSize {
		return addr, nil, ErrBadFrame
	}
	copy(addr[:], b)
	return addr, b[addrLen:], nil
}

type inbound struct {
	payload []byte
	conn    transport.PacketWriter
}

// Transceiver implements radio.Transceiver for connections attached to it.
type Transceiver struct {
	inbox chan inbound

	lock sync.Mutex
	addr radio.Address
	open bool
	last transport.PacketWriter
}

// NewTransceiver creates a Transceiver.
func NewTransceiver() *Transceiver {
	return &Transceiver{inbox: make(chan inbound, InboxSize)}
}

// Open implements radio.Transceiver.
func (t *Transceiver) Open(conf radio.Config, addr radio.Address) error {
	t.lock.Lock()
	t.addr, t.open = addr, true
	t.lock.Unlock()
	return nil
}

// Poll implements radio.Transceiver.
func (t *Transceiver) Poll() ([]byte, error) {
	select {
	case in := <-t.inbox:
		t.lock.Lock()
		t.last = in.conn
		t.lock.Unlock()
		return in.payload, nil
	default:
		return nil, nil
	}
}

// SendAck implements radio.Transceiver.
func (t *Transceiver) SendAck(payload []byte) error {
	t.lock.Lock()
	conn, addr := t.last, t.addr
	t.lock.Unlock()
	if conn == nil {
		return radio.ErrNoAck
	}
	if err := conn.WritePacket(EncodeFrame(addr, payload)); err != nil {
		glog.V(2).Infof("ack write error: %v", err)
		return radio.ErrNoAck
	}
	return nil
}

// Serve reads frames from conn until it fails or ctx is done.
// Frames for other addresses are ignored, like a radio would.
func (t *Transceiver) Serve(ctx context.Context, conn transport.PacketConn) error {
	return fx.RunWithContextCloser(ctx, conn, func() error {
		for {
			pkt, err := conn.ReadPacket()
			if err != nil {
				return err
			}
			addr, payload, err := DecodeFrame(pkt)
			if err != nil {
				glog.Warningf("netradio: %v (%d bytes)", err, len(pkt))
				continue
			}
			t.lock.Lock()
			match := t.open && addr == t.addr
			t.lock.Unlock()
			if !match {
				continue
			}
			select {
			case t.inbox <- inbound{payload: payload, conn: conn}:
			default:
				glog.Warning("netradio: inbox full, frame dropped")
			}
		}
	})
}

// Transmitter is the operator side endpoint over a connection.
type Transmitter struct {
	Conn transport.PacketConn
	Addr radio.Address

	acks chan []byte
}

// NewTransmitter creates a Transmitter targeting addr.
func NewTransmitter(conn transport.PacketConn, addr radio.Address) *Transmitter {
	return &Transmitter{Conn: conn, Addr: addr, acks: make(chan []byte, InboxSize)}
}

// Send transmits payload.
func (t *Transmitter) Send(payload []byte) error {
	if len(payload) > wire.MaxPayloadSize {
		return radio.ErrPayloadTooLarge
	}
	return t.Conn.WritePacket(EncodeFrame(t.Addr, payload))
}

// TakeAck pops a received ack payload without blocking.
func (t *Transmitter) TakeAck() ([]byte, bool) {
	select {
	case ack := <-t.acks:
		return ack, true
	default:
		return nil, false
	}
}

// Run implements Runnable by receiving ack frames.
func (t *Transmitter) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, t.Conn, func() error {
		for {
			pkt, err := t.Conn.ReadPacket()
			if err != nil {
				return err
			}
			addr, payload, err := DecodeFrame(pkt)
			if err != nil || addr != t.Addr {
				continue
			}
			select {
			case t.acks <- payload:
			default:
				// keep the newest telemetry.
				select {
				case <-t.acks:
				default:
				}
				t.acks <- payload
			}
		}
	})
}
