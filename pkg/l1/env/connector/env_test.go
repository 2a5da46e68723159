package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
)

func TestNewConnector(t *testing.T) {
	testCases := []struct {
		url      string
		expected interface{}
	}{
		{"mqtt://localhost:1883/robo/", &mqtt.Connector{}},
		{"ws://rover.local:8080/link", &comm.DirectConnector{}},
		{"tcp://rover.local:7001", &comm.DirectConnector{}},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			conf := NewConfig()
			conf.RegistryURL = tc.url
			conn, err := conf.NewConnector()
			require.NoError(t, err)
			require.IsType(t, tc.expected, conn)
		})
	}

	conf := NewConfig()
	conf.RegistryURL = "udp://x"
	_, err := conf.NewConnector()
	require.Error(t, err)
}

func TestDirectDiscover(t *testing.T) {
	conf := NewConfig()
	conf.Ref = l1.ControllerRef{}
	conf.RegistryURL = "tcp://rover.local:7001"
	conn, err := conf.NewConnector()
	require.NoError(t, err)
	infos, err := conn.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []l1.ControllerInfo{{Ref: l1.ControllerRef{Type: "rover", ID: "rover.local:7001"}}}, infos)
}
