package msgs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedKinds(t *testing.T) {
	testCases := []struct {
		msg   Message
		event bool
	}{
		{&CommandOK{}, false},
		{&CommandErr{}, false},
		{&LedSet{}, false},
		{&MoveSet{}, false},
		{&SensorSubscribe{}, false},
		{&EmergencyClear{}, false},
		{&StatusQuery{}, false},
		{&StatusReply{}, false},
		{&TelemetryEvent{}, true},
		{&SystemErrorEvent{}, true},
		{&ReflexStatusEvent{}, true},
	}
	for _, tc := range testCases {
		typed, err := TypedFrom(tc.msg)
		require.NoError(t, err)
		require.Equal(t, tc.event, typed.IsEvent(), "%T", tc.msg)
		require.Equal(t, !tc.event, typed.IsCommand(), "%T", tc.msg)
		require.Contains(t, MessageTypes, tc.msg.TypeID())
	}
}

func TestTypedEnvelope(t *testing.T) {
	typed, err := TypedFrom(&MoveSet{Left: 0.5, Right: -1})
	require.NoError(t, err)
	typed.Sequence = 7
	data, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(7), decoded.Sequence)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, &MoveSet{Left: 0.5, Right: -1}, msg)
}

func TestUnknownType(t *testing.T) {
	_, err := (&Typed{TypeId: GroupCustom | 0x42}).Decode()
	var unknown *ErrUnknownType
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, GroupCustom|0x42, unknown.TypeID)
}
