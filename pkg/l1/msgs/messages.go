package msgs

import (
	"github.com/golang/protobuf/proto"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() Message { return &CommandOK{} }

// TypeID implements Message.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return NewCommandErrFromMsg(err.Error())
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() Message { return &CommandErr{} }

// TypeID implements Message.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// LED modes
const (
	LedModeOff uint32 = iota
	LedModeOn
	LedModeBlink
)

// LedSet sets the status LED pattern.
type LedSet struct {
	Mode       uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
	IntervalMs uint64 `protobuf:"varint,2,opt,name=interval_ms,proto3" json:"interval_ms,omitempty"`
}

// NewMessage implements Message.
func (m *LedSet) NewMessage() Message { return &LedSet{} }

// TypeID implements Message.
func (m *LedSet) TypeID() uint32 { return LedSetTypeID }

// ProtoMessage implements proto.Message.
func (m *LedSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LedSet) Reset() { *m = LedSet{} }

// String implements proto.Message.
func (m *LedSet) String() string { return proto.CompactTextString(m) }

// MoveSet sets the speed of both sides, nominally in [-1, 1].
type MoveSet struct {
	Left  float32 `protobuf:"fixed32,1,opt,name=left,proto3" json:"left,omitempty"`
	Right float32 `protobuf:"fixed32,2,opt,name=right,proto3" json:"right,omitempty"`
}

// NewMessage implements Message.
func (m *MoveSet) NewMessage() Message { return &MoveSet{} }

// TypeID implements Message.
func (m *MoveSet) TypeID() uint32 { return MoveSetTypeID }

// ProtoMessage implements proto.Message.
func (m *MoveSet) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveSet) Reset() { *m = MoveSet{} }

// String implements proto.Message.
func (m *MoveSet) String() string { return proto.CompactTextString(m) }

// Sensor kinds on the wire.
const (
	SensorDistance uint32 = iota
	SensorCliff
	SensorImu
)

// SensorSubscribe sets the poll interval of a sensor kind.
// Zero interval disables polling.
type SensorSubscribe struct {
	Sensor         uint32 `protobuf:"varint,1,opt,name=sensor,proto3" json:"sensor,omitempty"`
	PollIntervalMs uint64 `protobuf:"varint,2,opt,name=poll_interval_ms,proto3" json:"poll_interval_ms,omitempty"`
}

// NewMessage implements Message.
func (m *SensorSubscribe) NewMessage() Message { return &SensorSubscribe{} }

// TypeID implements Message.
func (m *SensorSubscribe) TypeID() uint32 { return SensorSubscribeTypeID }

// ProtoMessage implements proto.Message.
func (m *SensorSubscribe) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SensorSubscribe) Reset() { *m = SensorSubscribe{} }

// String implements proto.Message.
func (m *SensorSubscribe) String() string { return proto.CompactTextString(m) }

// EmergencyClear releases a latched emergency stop.
type EmergencyClear struct {
}

// NewMessage implements Message.
func (m *EmergencyClear) NewMessage() Message { return &EmergencyClear{} }

// TypeID implements Message.
func (m *EmergencyClear) TypeID() uint32 { return EmergencyClearTypeID }

// ProtoMessage implements proto.Message.
func (m *EmergencyClear) ProtoMessage() {}

// Reset implements proto.Message.
func (m *EmergencyClear) Reset() { *m = EmergencyClear{} }

// String implements proto.Message.
func (m *EmergencyClear) String() string { return proto.CompactTextString(m) }

// StatusQuery asks for the safety and subscription state.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() Message { return &StatusQuery{} }

// TypeID implements Message.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// ProtoMessage implements proto.Message.
func (m *StatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusQuery) Reset() { *m = StatusQuery{} }

// String implements proto.Message.
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }

// StatusReply answers StatusQuery. DistanceIntervalMs is 0 while distance
// polling is disabled.
type StatusReply struct {
	Stopped            bool   `protobuf:"varint,1,opt,name=stopped,proto3" json:"stopped,omitempty"`
	Cause              string `protobuf:"bytes,2,opt,name=cause,proto3" json:"cause,omitempty"`
	DistanceIntervalMs uint64 `protobuf:"varint,3,opt,name=distance_interval_ms,proto3" json:"distance_interval_ms,omitempty"`
}

// NewMessage implements Message.
func (m *StatusReply) NewMessage() Message { return &StatusReply{} }

// TypeID implements Message.
func (m *StatusReply) TypeID() uint32 { return StatusReplyTypeID }

// ProtoMessage implements proto.Message.
func (m *StatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReply) Reset() { *m = StatusReply{} }

// String implements proto.Message.
func (m *StatusReply) String() string { return proto.CompactTextString(m) }

// Distance sensor positions.
const (
	PositionFront uint32 = iota
	PositionBack
)

// TelemetryEvent is a distance reading.
type TelemetryEvent struct {
	Position uint32 `protobuf:"varint,1,opt,name=position,proto3" json:"position,omitempty"`
	Mm       uint32 `protobuf:"varint,2,opt,name=mm,proto3" json:"mm,omitempty"`
}

// NewMessage implements Message.
func (m *TelemetryEvent) NewMessage() Message { return &TelemetryEvent{} }

// TypeID implements Message.
func (m *TelemetryEvent) TypeID() uint32 { return TelemetryEventTypeID }

// ProtoMessage implements proto.Message.
func (m *TelemetryEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TelemetryEvent) Reset() { *m = TelemetryEvent{} }

// String implements proto.Message.
func (m *TelemetryEvent) String() string { return proto.CompactTextString(m) }

// Severities on the wire.
const (
	SeverityRecoverable uint32 = iota
	SeverityCritical
)

// SystemErrorEvent reports a classified system error.
type SystemErrorEvent struct {
	Sensor   uint32 `protobuf:"varint,1,opt,name=sensor,proto3" json:"sensor,omitempty"`
	Severity uint32 `protobuf:"varint,2,opt,name=severity,proto3" json:"severity,omitempty"`
	Message  string `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// NewMessage implements Message.
func (m *SystemErrorEvent) NewMessage() Message { return &SystemErrorEvent{} }

// TypeID implements Message.
func (m *SystemErrorEvent) TypeID() uint32 { return SystemErrorEventTypeID }

// ProtoMessage implements proto.Message.
func (m *SystemErrorEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SystemErrorEvent) Reset() { *m = SystemErrorEvent{} }

// String implements proto.Message.
func (m *SystemErrorEvent) String() string { return proto.CompactTextString(m) }

// ReflexStatusEvent reports a change of the emergency stop.
type ReflexStatusEvent struct {
	Stopped bool   `protobuf:"varint,1,opt,name=stopped,proto3" json:"stopped,omitempty"`
	Cause   string `protobuf:"bytes,2,opt,name=cause,proto3" json:"cause,omitempty"`
}

// NewMessage implements Message.
func (m *ReflexStatusEvent) NewMessage() Message { return &ReflexStatusEvent{} }

// TypeID implements Message.
func (m *ReflexStatusEvent) TypeID() uint32 { return ReflexStatusEventTypeID }

// ProtoMessage implements proto.Message.
func (m *ReflexStatusEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReflexStatusEvent) Reset() { *m = ReflexStatusEvent{} }

// String implements proto.Message.
func (m *ReflexStatusEvent) String() string { return proto.CompactTextString(m) }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupRover   uint32 = 0x00010000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID         uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID        uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	LedSetTypeID            uint32 = GroupRover | 0x0001
	MoveSetTypeID           uint32 = GroupRover | 0x0002
	SensorSubscribeTypeID   uint32 = GroupRover | 0x0003
	EmergencyClearTypeID    uint32 = GroupRover | 0x0004
	StatusQueryTypeID       uint32 = GroupRover | 0x0005
	StatusReplyTypeID       uint32 = GroupRover | TypeIDMaskReply | 0x0005
	TelemetryEventTypeID    uint32 = GroupRover | TypeIDKindEvent | 0x0001
	SystemErrorEventTypeID  uint32 = GroupRover | TypeIDKindEvent | 0x0002
	ReflexStatusEventTypeID uint32 = GroupRover | TypeIDKindEvent | 0x0003
)
