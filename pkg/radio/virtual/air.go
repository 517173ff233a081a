// Package virtual provides an in-memory radio medium so the vehicle core
// can run without hardware. Delivery is synchronous and deterministic,
// with knobs to lose commands or acknowledgements.
package virtual

import (
	"errors"
	"sync"

	"github.com/robotalks/rcvehicle/pkg/radio"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

// ErrNoReceiver indicates nothing listens on the destination address.
var ErrNoReceiver = errors.New("no receiver")

// Air connects Transmitters to Transceivers by address.
type Air struct {
	lock      sync.Mutex
	receivers map[radio.Address]*Transceiver
	dropCmds  bool
	failAcks  int
}

// NewAir creates an empty medium.
func NewAir() *Air {
	return &Air{receivers: make(map[radio.Address]*Transceiver)}
}

// DropCommands makes every command transmission get lost.
func (a *Air) DropCommands(drop bool) {
	a.lock.Lock()
	a.dropCmds = drop
	a.lock.Unlock()
}

// FailAcks makes the next n ack delivery attempts fail.
func (a *Air) FailAcks(n int) {
	a.lock.Lock()
	a.failAcks = n
	a.lock.Unlock()
}

// Transceiver creates a vehicle side transceiver on this medium.
func (a *Air) Transceiver() *Transceiver {
	return &Transceiver{air: a}
}

// Transmitter creates an operator side transmitter targeting addr.
func (a *Air) Transmitter(addr radio.Address) *Transmitter {
	return &Transmitter{air: a, addr: addr}
}

type frame struct {
	payload []byte
	from    *Transmitter
}

// Transceiver implements radio.Transceiver.
type Transceiver struct {
	air   *Air
	addr  radio.Address
	open  bool
	inbox []frame
	last  *Transmitter
	conf  radio.Config
}

// Open implements radio.Transceiver.
func (t *Transceiver) Open(conf radio.Config, addr radio.Address) error {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	if t.open {
		delete(t.air.receivers, t.addr)
	}
	t.conf, t.addr, t.open = conf, addr, true
	t.air.receivers[addr] = t
	return nil
}

// Poll implements radio.Transceiver.
func (t *Transceiver) Poll() ([]byte, error) {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	if !t.open {
		return nil, radio.ErrNotOpen
	}
	if len(t.inbox) == 0 {
		return nil, nil
	}
	f := t.inbox[0]
	t.inbox = t.inbox[1:]
	t.last = f.from
	return f.payload, nil
}

// SendAck implements radio.Transceiver.
func (t *Transceiver) SendAck(payload []byte) error {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	if t.last == nil {
		return radio.ErrNoAck
	}
	if t.air.failAcks > 0 {
		t.air.failAcks--
		return radio.ErrNoAck
	}
	t.last.acks = append(t.last.acks, append([]byte(nil), payload...))
	return nil
}

// Pending returns the number of queued payloads.
func (t *Transceiver) Pending() int {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	return len(t.inbox)
}

// Transmitter sends payloads to one address and collects acks.
type Transmitter struct {
	air  *Air
	addr radio.Address
	acks [][]byte
	sent uint64
	lost uint64
}

// Send queues payload at the receiver. A dropped command is not an
// error: like on air, the sender only notices the missing ack.
func (t *Transmitter) Send(payload []byte) error {
	if len(payload) > wire.MaxPayloadSize {
		return radio.ErrPayloadTooLarge
	}
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	t.sent++
	if t.air.dropCmds {
		t.lost++
		return nil
	}
	rx := t.air.receivers[t.addr]
	if rx == nil {
		t.lost++
		return ErrNoReceiver
	}
	rx.inbox = append(rx.inbox, frame{payload: append([]byte(nil), payload...), from: t})
	return nil
}

// TakeAck pops the oldest received ack payload.
func (t *Transmitter) TakeAck() ([]byte, bool) {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	if len(t.acks) == 0 {
		return nil, false
	}
	ack := t.acks[0]
	t.acks = t.acks[1:]
	return ack, true
}

// Counts returns sent and lost transmissions.
func (t *Transmitter) Counts() (sent, lost uint64) {
	t.air.lock.Lock()
	defer t.air.lock.Unlock()
	return t.sent, t.lost
}
