package radio

import (
	"errors"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/wire"
)

var (
	// ErrInvalidIdentity indicates the identity is not in 1..MaxIdentities.
	ErrInvalidIdentity = errors.New("invalid vehicle identity")
	// ErrNoAck indicates a single delivery attempt of the ack failed.
	ErrNoAck = errors.New("ack not delivered")
	// ErrNotOpen indicates the transceiver is not listening yet.
	ErrNotOpen = errors.New("transceiver not open")
	// ErrPayloadTooLarge indicates the payload exceeds wire.MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Transceiver is the raw radio wrapper. It performs no retries.
type Transceiver interface {
	// Open configures the radio and starts listening on addr.
	Open(conf Config, addr Address) error
	// Poll returns the next pending payload without blocking,
	// or nil when nothing is pending.
	Poll() ([]byte, error)
	// SendAck attempts once to deliver payload with the
	// acknowledgement of the last received transaction.
	SendAck(payload []byte) error
}

// Stats counts link-layer events.
type Stats struct {
	Received    uint64
	AcksSent    uint64
	AckRetries  uint64
	AcksDropped uint64
}

// Port is the vehicle endpoint on one pipe: a Transceiver plus the
// bounded retry policy for outbound acknowledgements.
type Port struct {
	Config  Config
	Address Address
	Clock   fx.Clock

	trx   Transceiver
	stats Stats
}

// Open resolves the identity and opens the transceiver.
func Open(trx Transceiver, conf Config, id Identity, clock fx.Clock) (*Port, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	addr, err := id.Address(conf.Addresses)
	if err != nil {
		return nil, err
	}
	if err = trx.Open(conf, addr); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = fx.SystemClock{}
	}
	glog.Infof("radio listening on %s channel %d %s power %s", addr, conf.Channel, conf.Rate, conf.Power)
	return &Port{Config: conf, Address: addr, Clock: clock, trx: trx}, nil
}

// Poll returns the next payload if any, never blocking.
func (p *Port) Poll() ([]byte, error) {
	payload, err := p.trx.Poll()
	if err != nil {
		return nil, err
	}
	if payload != nil {
		p.stats.Received++
	}
	return payload, nil
}

// Ack delivers payload with the acknowledgement, retrying up to
// Config.RetryCount times with Config.RetryDelay in between. An ack
// which still fails is dropped: telemetry is best-effort, so the only
// outcome reported is whether it got through.
func (p *Port) Ack(payload []byte) (bool, error) {
	if len(payload) > wire.MaxPayloadSize {
		return false, ErrPayloadTooLarge
	}
	for attempt := 0; ; attempt++ {
		err := p.trx.SendAck(payload)
		if err == nil {
			p.stats.AcksSent++
			return true, nil
		}
		if err != ErrNoAck {
			return false, err
		}
		if attempt >= p.Config.RetryCount {
			break
		}
		p.stats.AckRetries++
		p.Clock.Sleep(p.Config.RetryDelay)
	}
	p.stats.AcksDropped++
	if glog.V(2) {
		glog.Infof("ack dropped after %d retries", p.Config.RetryCount)
	}
	return false, nil
}

// Stats returns a copy of the counters.
func (p *Port) Stats() Stats {
	return p.stats
}
