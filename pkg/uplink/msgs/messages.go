// Package msgs defines the messages published on the status uplink.
//
// Every message travels inside an Envelope carrying its type ID.
//
// Producer: vehicle
// Consumer: monitors
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// VehicleInfo is published retained when the vehicle comes online.
type VehicleInfo struct {
	Identity uint32 `protobuf:"varint,1,opt,name=identity,proto3" json:"identity,omitempty"`
	Address  string `protobuf:"bytes,2,opt,name=address,proto3" json:"address,omitempty"`
	Pulses   uint32 `protobuf:"varint,3,opt,name=pulses,proto3" json:"pulses,omitempty"`
	Channel  uint32 `protobuf:"varint,4,opt,name=channel,proto3" json:"channel,omitempty"`
	ClientId string `protobuf:"bytes,5,opt,name=client_id,json=clientId,proto3" json:"client_id,omitempty"`
}

// TypeID implements Message.
func (m *VehicleInfo) TypeID() uint32 { return VehicleInfoTypeID }

// ProtoMessage implements proto.Message.
func (m *VehicleInfo) ProtoMessage() {}

// Reset implements proto.Message.
func (m *VehicleInfo) Reset() { *m = VehicleInfo{} }

// String implements proto.Message.
func (m *VehicleInfo) String() string { return proto.CompactTextString(m) }

// VehicleStatus is the periodic state report.
type VehicleStatus struct {
	Identity        uint32  `protobuf:"varint,1,opt,name=identity,proto3" json:"identity,omitempty"`
	Timestamp       int64   `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Connected       bool    `protobuf:"varint,3,opt,name=connected,proto3" json:"connected,omitempty"`
	Steering        uint32  `protobuf:"varint,4,opt,name=steering,proto3" json:"steering,omitempty"`
	Throttle        uint32  `protobuf:"varint,5,opt,name=throttle,proto3" json:"throttle,omitempty"`
	SpeedLimit      bool    `protobuf:"varint,6,opt,name=speed_limit,json=speedLimit,proto3" json:"speed_limit,omitempty"`
	RampLimit       bool    `protobuf:"varint,7,opt,name=ramp_limit,json=rampLimit,proto3" json:"ramp_limit,omitempty"`
	Drive           int32   `protobuf:"zigzag32,8,opt,name=drive,proto3" json:"drive,omitempty"`
	Target          int32   `protobuf:"zigzag32,9,opt,name=target,proto3" json:"target,omitempty"`
	Brake           bool    `protobuf:"varint,10,opt,name=brake,proto3" json:"brake,omitempty"`
	SteeringDegrees float32 `protobuf:"fixed32,11,opt,name=steering_degrees,json=steeringDegrees,proto3" json:"steering_degrees,omitempty"`
	SupplyVoltage   float32 `protobuf:"fixed32,12,opt,name=supply_voltage,json=supplyVoltage,proto3" json:"supply_voltage,omitempty"`
	BatteryVoltage  float32 `protobuf:"fixed32,13,opt,name=battery_voltage,json=batteryVoltage,proto3" json:"battery_voltage,omitempty"`
	BatteryOk       bool    `protobuf:"varint,14,opt,name=battery_ok,json=batteryOk,proto3" json:"battery_ok,omitempty"`
	Received        uint64  `protobuf:"varint,15,opt,name=received,proto3" json:"received,omitempty"`
	AcksSent        uint64  `protobuf:"varint,16,opt,name=acks_sent,json=acksSent,proto3" json:"acks_sent,omitempty"`
	AcksDropped     uint64  `protobuf:"varint,17,opt,name=acks_dropped,json=acksDropped,proto3" json:"acks_dropped,omitempty"`
	Malformed       uint64  `protobuf:"varint,18,opt,name=malformed,proto3" json:"malformed,omitempty"`
}

// TypeID implements Message.
func (m *VehicleStatus) TypeID() uint32 { return VehicleStatusTypeID }

// ProtoMessage implements proto.Message.
func (m *VehicleStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *VehicleStatus) Reset() { *m = VehicleStatus{} }

// String implements proto.Message.
func (m *VehicleStatus) String() string { return proto.CompactTextString(m) }

// LinkStateEvent reports a fail-safe transition.
type LinkStateEvent struct {
	Identity  uint32 `protobuf:"varint,1,opt,name=identity,proto3" json:"identity,omitempty"`
	Connected bool   `protobuf:"varint,2,opt,name=connected,proto3" json:"connected,omitempty"`
	Timestamp int64  `protobuf:"varint,3,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// TypeID implements Message.
func (m *LinkStateEvent) TypeID() uint32 { return LinkStateEventTypeID }

// ProtoMessage implements proto.Message.
func (m *LinkStateEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStateEvent) Reset() { *m = LinkStateEvent{} }

// String implements proto.Message.
func (m *LinkStateEvent) String() string { return proto.CompactTextString(m) }
