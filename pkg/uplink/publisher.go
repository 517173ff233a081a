// Package uplink publishes vehicle status to an MQTT broker for
// monitoring. Publishing is best-effort and never blocks the loop.
package uplink

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/link"
	"github.com/robotalks/rcvehicle/pkg/uplink/mqtt"
	"github.com/robotalks/rcvehicle/pkg/uplink/msgs"
	"github.com/robotalks/rcvehicle/pkg/vehicle"
)

// DefaultPeriod is the status publishing period.
const DefaultPeriod = time.Second

// Sink accepts publications. mqtt.Queue implements it.
type Sink interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// MachineID retrieves the ID of this machine, hashed for the app.
func MachineID() string {
	id, err := machineid.ProtectedID("rcvehicle")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "unknown"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// Topics of a vehicle, relative to the queue prefix.
func Topics(identity int) (meta, status, linkState string) {
	base := fmt.Sprintf("vehicle/%d/", identity)
	return base + "meta", base + "status", base + "link"
}

// Publisher is a vehicle.Observer and link.StateNotifier publishing to
// a Sink.
type Publisher struct {
	published uint64 // atomic, first for alignment

	Sink   Sink
	Info   msgs.VehicleInfo
	Period time.Duration

	metaTopic, statusTopic, linkTopic string
	timer                             *fx.Periodic
}

// NewPublisher creates a Publisher for the vehicle.
func NewPublisher(sink Sink, info msgs.VehicleInfo, period time.Duration) *Publisher {
	if period <= 0 {
		period = DefaultPeriod
	}
	p := &Publisher{Sink: sink, Info: info, Period: period, timer: fx.NewPeriodic(period)}
	p.metaTopic, p.statusTopic, p.linkTopic = Topics(int(info.Identity))
	return p
}

// InfoFrom builds VehicleInfo from a vehicle.
func InfoFrom(v *vehicle.Vehicle, clientID string) msgs.VehicleInfo {
	return msgs.VehicleInfo{
		Identity: uint32(v.Profile.Identity),
		Address:  v.Profile.Address.String(),
		Pulses:   uint32(v.Profile.Pattern.Pulses),
		Channel:  uint32(v.Config.Radio.Channel),
		ClientId: clientID,
	}
}

// StatusMessage converts a vehicle status.
func StatusMessage(st *vehicle.Status) *msgs.VehicleStatus {
	cmd := st.Link.Command
	return &msgs.VehicleStatus{
		Identity:        uint32(st.Identity),
		Timestamp:       st.Time.UnixNano(),
		Connected:       st.Link.State == link.Connected,
		Steering:        uint32(cmd.Steering),
		Throttle:        uint32(cmd.Throttle),
		SpeedLimit:      cmd.SpeedLimit,
		RampLimit:       cmd.RampLimit,
		Drive:           int32(st.Motor.Current),
		Target:          int32(st.Motor.Target),
		Brake:           st.Output.Brake,
		SteeringDegrees: float32(st.Output.SteeringDegrees),
		SupplyVoltage:   st.Ack.SupplyVoltage,
		BatteryVoltage:  st.Ack.BatteryVoltage,
		BatteryOk:       st.Ack.BatteryOK,
		Received:        st.Radio.Received,
		AcksSent:        st.Radio.AcksSent,
		AcksDropped:     st.Radio.AcksDropped,
		Malformed:       st.LinkStats.Malformed,
	}
}

// Announce publishes the retained VehicleInfo.
func (p *Publisher) Announce() {
	p.publish(p.metaTopic, &p.Info, 1, true)
}

// Withdraw clears the retained VehicleInfo.
func (p *Publisher) Withdraw() paho.Token {
	return p.Sink.PubWith(p.metaTopic, nil, 1, true)
}

// VehicleStatus implements vehicle.Observer.
func (p *Publisher) VehicleStatus(cc fx.ControlContext, st *vehicle.Status) {
	if p.timer.Due(cc.Time()) {
		p.publish(p.statusTopic, StatusMessage(st), 0, false)
	}
}

// LinkStateChanged implements link.StateNotifier.
func (p *Publisher) LinkStateChanged(from, to link.State, at time.Time) {
	p.publish(p.linkTopic, &msgs.LinkStateEvent{
		Identity:  p.Info.Identity,
		Connected: to == link.Connected,
		Timestamp: at.UnixNano(),
	}, 0, false)
	// report the new state right away.
	p.timer.Reset()
}

// Published counts the messages handed to the sink.
func (p *Publisher) Published() uint64 {
	return atomic.LoadUint64(&p.published)
}

func (p *Publisher) publish(topic string, msg msgs.Message, qos byte, retain bool) {
	data, err := msgs.Encode(msg)
	if err != nil {
		glog.Errorf("encode %s error: %v", topic, err)
		return
	}
	p.Sink.PubWith(topic, data, qos, retain)
	atomic.AddUint64(&p.published, 1)
}

// Uplink owns the MQTT connection of a Publisher.
type Uplink struct {
	*Publisher
	Queue *mqtt.Queue
}

// New connects a Publisher to the broker at brokerURL. The retained
// VehicleInfo is cleared by the broker if the vehicle disappears.
func New(brokerURL string, v *vehicle.Vehicle) (*Uplink, error) {
	opts, prefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %v", err)
	}
	if opts.ClientID == "" {
		opts.SetClientID(fmt.Sprintf("rcvehicle:%d:%s", v.Profile.Identity, MachineID()))
	}
	metaTopic, _, _ := Topics(v.Config.Identity)
	opts.SetBinaryWill(prefix+metaTopic, nil, 1, true)
	u := &Uplink{Queue: mqtt.NewQueue(opts, prefix)}
	u.Publisher = NewPublisher(u.Queue, InfoFrom(v, opts.ClientID), v.Config.Telemetry.Period)
	u.Queue.OnConnect = func(*mqtt.Queue) { u.Announce() }
	return u, nil
}

// AddToLoop implements LoopAdder.
func (u *Uplink) AddToLoop(l *fx.Loop) {
	l.AddRunnable(u)
}

// Run implements Runnable.
func (u *Uplink) Run(ctx context.Context) error {
	if token := u.Queue.Connect(); token.Wait() && token.Error() != nil {
		glog.Warningf("mqtt connect error: %v", token.Error())
	}
	<-ctx.Done()
	u.Withdraw().WaitTimeout(time.Second)
	return u.Queue.Close()
}
