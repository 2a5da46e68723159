package firmware

import (
	"flag"
	"time"

	"github.com/robotalks/rover.go/pkg/bus"
	"github.com/robotalks/rover.go/pkg/safety"
	"github.com/robotalks/rover.go/pkg/sensors"
)

// Config defines the firmware options.
type Config struct {
	QueueCapacity    int
	FastBlink        time.Duration
	BootBlink        time.Duration
	DistanceInterval time.Duration
	FrontAddr        uint
	BackAddr         uint
}

// DefaultBootBlink is the LED pattern shown at startup.
const DefaultBootBlink = 100 * time.Millisecond

var defaultConfig = Config{
	QueueCapacity: bus.DefaultCapacity,
	FastBlink:     safety.DefaultFastBlink,
	BootBlink:     DefaultBootBlink,
	FrontAddr:     uint(sensors.FrontAddr),
	BackAddr:      uint(sensors.BackAddr),
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.QueueCapacity, "queue-capacity", defaultConfig.QueueCapacity, "Capacity of each bus queue.")
	flag.DurationVar(&defaultConfig.FastBlink, "fast-blink", defaultConfig.FastBlink, "LED blink interval on emergency stop.")
	flag.DurationVar(&defaultConfig.BootBlink, "boot-blink", defaultConfig.BootBlink, "LED blink interval at startup, 0 keeps the LED off.")
	flag.DurationVar(&defaultConfig.DistanceInterval, "distance-interval", defaultConfig.DistanceInterval, "Initial distance poll interval, 0 waits for a subscription.")
	flag.UintVar(&defaultConfig.FrontAddr, "front-addr", defaultConfig.FrontAddr, "I2C address of the front distance sensor.")
	flag.UintVar(&defaultConfig.BackAddr, "back-addr", defaultConfig.BackAddr, "I2C address of the back distance sensor.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
