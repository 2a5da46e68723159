package rover

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/l1/msgs"
)

func TestParseLed(t *testing.T) {
	msg, err := ParseLed([]string{"blink", "250"})
	require.NoError(t, err)
	require.Equal(t, &msgs.LedSet{Mode: msgs.LedModeBlink, IntervalMs: 250}, msg)

	msg, err = ParseLed([]string{"on"})
	require.NoError(t, err)
	require.Equal(t, uint32(msgs.LedModeOn), msg.Mode)

	for _, args := range [][]string{nil, {"blink"}, {"blink", "0"}, {"dim"}} {
		_, err = ParseLed(args)
		require.Error(t, err, "%v", args)
	}
}

func TestParseMove(t *testing.T) {
	msg, err := ParseMove([]string{"0.5", "-1"})
	require.NoError(t, err)
	require.Equal(t, &msgs.MoveSet{Left: 0.5, Right: -1}, msg)

	_, err = ParseMove([]string{"0.5"})
	require.Error(t, err)
	_, err = ParseMove([]string{"fast", "0"})
	require.Error(t, err)
}

func TestParseSubscribe(t *testing.T) {
	msg, err := ParseSubscribe([]string{"cliff", "10"})
	require.NoError(t, err)
	require.Equal(t, &msgs.SensorSubscribe{Sensor: msgs.SensorCliff, PollIntervalMs: 10}, msg)

	_, err = ParseSubscribe([]string{"lidar", "10"})
	require.Error(t, err)
	_, err = ParseSubscribe([]string{"imu"})
	require.Error(t, err)
}
