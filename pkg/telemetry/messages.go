package telemetry

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// TypeID masks.
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDKindEvent uint32 = 0x80000000
)

// Message type IDs.
const (
	StateEventTypeID   uint32 = 0x80010001
	PacketEventTypeID  uint32 = 0x80010002
	StatsEventTypeID   uint32 = 0x80010003
	MouseCommandTypeID uint32 = 0x00010001
)

// Message is a payload carried by an Envelope.
type Message interface {
	proto.Message
	TypeID() uint32
}

// ErrUnknownType indicates an unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

var messageTypes = map[uint32]func() Message{
	StateEventTypeID:   func() Message { return &StateEvent{} },
	PacketEventTypeID:  func() Message { return &PacketEvent{} },
	StatsEventTypeID:   func() Message { return &StatsEvent{} },
	MouseCommandTypeID: func() Message { return &MouseCommand{} },
}

// Envelope wraps a message with its origin and type.
type Envelope struct {
	AdapterID string `protobuf:"bytes,1,opt,name=adapter_id,proto3" json:"adapter_id,omitempty"`
	Seq       uint32 `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	TimeNanos int64  `protobuf:"varint,3,opt,name=time_nanos,proto3" json:"time_nanos,omitempty"`
	TypeID    uint32 `protobuf:"varint,4,opt,name=type_id,proto3" json:"type_id,omitempty"`
	Payload   []byte `protobuf:"bytes,5,opt,name=payload,proto3" json:"payload,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Envelope) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Envelope) Reset() { *m = Envelope{} }

// String implements proto.Message.
func (m *Envelope) String() string { return proto.CompactTextString(m) }

// IsEvent determines if the envelope carries an event.
func (m *Envelope) IsEvent() bool {
	return m.TypeID&TypeIDMaskKind == TypeIDKindEvent
}

// Wrap creates an Envelope from msg.
func Wrap(msg Message) (*Envelope, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Envelope{TypeID: msg.TypeID(), Payload: data}, nil
}

// Encode encodes the envelope to bytes.
func (m *Envelope) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Decode decodes the payload into the message type it carries.
func (m *Envelope) Decode() (Message, error) {
	newMsg, ok := messageTypes[m.TypeID]
	if !ok {
		return nil, &ErrUnknownType{TypeID: m.TypeID}
	}
	msg := newMsg()
	if err := proto.Unmarshal(m.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeEnvelope decodes bytes into an Envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var m Envelope
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// StateEvent reports a controller state change.
type StateEvent struct {
	State string `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
	Mode  string `protobuf:"bytes,2,opt,name=mode,proto3" json:"mode,omitempty"`
}

// TypeID implements Message.
func (m *StateEvent) TypeID() uint32 { return StateEventTypeID }

// ProtoMessage implements proto.Message.
func (m *StateEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StateEvent) Reset() { *m = StateEvent{} }

// String implements proto.Message.
func (m *StateEvent) String() string { return proto.CompactTextString(m) }

// PacketEvent carries a packet sent to the serial host.
type PacketEvent struct {
	Data []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
}

// TypeID implements Message.
func (m *PacketEvent) TypeID() uint32 { return PacketEventTypeID }

// ProtoMessage implements proto.Message.
func (m *PacketEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PacketEvent) Reset() { *m = PacketEvent{} }

// String implements proto.Message.
func (m *PacketEvent) String() string { return proto.CompactTextString(m) }

// StatsEvent carries the controller counters.
type StatsEvent struct {
	Reports     uint32 `protobuf:"varint,1,opt,name=reports,proto3" json:"reports,omitempty"`
	Packets     uint32 `protobuf:"varint,2,opt,name=packets,proto3" json:"packets,omitempty"`
	Handshakes  uint32 `protobuf:"varint,3,opt,name=handshakes,proto3" json:"handshakes,omitempty"`
	Skipped     uint32 `protobuf:"varint,4,opt,name=skipped,proto3" json:"skipped,omitempty"`
	RxDropped   uint32 `protobuf:"varint,5,opt,name=rx_dropped,proto3" json:"rx_dropped,omitempty"`
	RxErrors    uint32 `protobuf:"varint,6,opt,name=rx_errors,proto3" json:"rx_errors,omitempty"`
	TxDropped   uint32 `protobuf:"varint,7,opt,name=tx_dropped,proto3" json:"tx_dropped,omitempty"`
	Retransmits uint32 `protobuf:"varint,8,opt,name=retransmits,proto3" json:"retransmits,omitempty"`
}

// TypeID implements Message.
func (m *StatsEvent) TypeID() uint32 { return StatsEventTypeID }

// ProtoMessage implements proto.Message.
func (m *StatsEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatsEvent) Reset() { *m = StatsEvent{} }

// String implements proto.Message.
func (m *StatsEvent) String() string { return proto.CompactTextString(m) }

// MouseCommand drives the simulated mouse remotely.
type MouseCommand struct {
	DX    int32 `protobuf:"zigzag32,1,opt,name=dx,proto3" json:"dx,omitempty"`
	DY    int32 `protobuf:"zigzag32,2,opt,name=dy,proto3" json:"dy,omitempty"`
	Wheel int32 `protobuf:"zigzag32,3,opt,name=wheel,proto3" json:"wheel,omitempty"`
	// Buttons replaces the button state when SetButtons is true.
	Buttons    uint32 `protobuf:"varint,4,opt,name=buttons,proto3" json:"buttons,omitempty"`
	SetButtons bool   `protobuf:"varint,5,opt,name=set_buttons,proto3" json:"set_buttons,omitempty"`
	// RTS toggles the host ready line.
	RTS bool `protobuf:"varint,6,opt,name=rts,proto3" json:"rts,omitempty"`
}

// TypeID implements Message.
func (m *MouseCommand) TypeID() uint32 { return MouseCommandTypeID }

// ProtoMessage implements proto.Message.
func (m *MouseCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MouseCommand) Reset() { *m = MouseCommand{} }

// String implements proto.Message.
func (m *MouseCommand) String() string { return proto.CompactTextString(m) }
