package controller

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	fx "github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	"github.com/robotalks/rover.go/pkg/l1/comm"
	"github.com/robotalks/rover.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/rover.go/pkg/l1/comm/stream"
	"github.com/robotalks/rover.go/pkg/l1/comm/websocket"
	"github.com/robotalks/rover.go/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// LinkListen accepts a host dialing in directly.
	// e.g. ws://:8080/link or tcp://:7001
	LinkListen string
}

var defaultConfig = Config{
	Info: l1.ControllerInfo{
		Ref: l1.ControllerRef{Type: "rover"},
	},
	MQTTBrokerURL: "mqtt://localhost:1883/robo/",
}

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ROBO_LINK_LISTEN"); val != "" {
		defaultConfig.LinkListen = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Controller type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Controller ID, defaults to machine ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.LinkListen, "link-listen", defaultConfig.LinkListen, "Direct host link, ws://addr/path or tcp://addr")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerMeta should be called in init with basic info about the controller.
func SetControllerMeta(meta l1.ControllerMeta) {
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux

	servers []fx.LoopAdder
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config. An Env without any registrar is
// valid: the firmware then runs offline.
func (c *Config) NewEnv() (*Env, error) {
	if c.Info.Ref.ID == "" {
		c.Info.Ref.ID = env.MachineID()
	}
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("robot type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.LinkListen != "" {
		u, err := url.Parse(c.LinkListen)
		if err != nil {
			return nil, fmt.Errorf("invalid link address: %v", err)
		}
		peer := &comm.PeerRegistrar{}
		switch u.Scheme {
		case "ws":
			e.servers = append(e.servers, websocket.NewServer(u.Host, u.Path, peer))
		case "tcp":
			e.servers = append(e.servers, stream.NewServer(u.Host, peer))
		default:
			return nil, fmt.Errorf("unknown link scheme: %q", u.Scheme)
		}
		e.Registrar.Add(peer)
		e.RegistryURLs = append(e.RegistryURLs, c.LinkListen)
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop adds registrars and link servers to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(e.servers...)
}
