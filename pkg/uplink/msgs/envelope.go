package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// Message is a typed uplink message.
type Message interface {
	proto.Message
	TypeID() uint32
}

// TypeIDs
const (
	VehicleInfoTypeID    uint32 = 0x00010001
	VehicleStatusTypeID  uint32 = 0x80010001
	LinkStateEventTypeID uint32 = 0x80010002
)

// TypeIDKindEvent marks event messages.
const TypeIDKindEvent uint32 = 0x80000000

// MessageTypes maps type IDs to message constructors.
var MessageTypes = map[uint32]func() Message{
	VehicleInfoTypeID:    func() Message { return &VehicleInfo{} },
	VehicleStatusTypeID:  func() Message { return &VehicleStatus{} },
	LinkStateEventTypeID: func() Message { return &LinkStateEvent{} },
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// Envelope wraps a message with type information.
type Envelope struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// IsEvent determines if the message is an event.
func (m *Envelope) IsEvent() bool {
	return m.TypeId&TypeIDKindEvent != 0
}

// Encode wraps msg in an Envelope and serializes it.
func Encode(msg Message) ([]byte, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&Envelope{TypeId: msg.TypeID(), Message: data})
}

// Decode parses an Envelope and the message inside.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	create, ok := MessageTypes[env.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: env.TypeId}
	}
	msg := create()
	if err := proto.Unmarshal(env.Message, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
