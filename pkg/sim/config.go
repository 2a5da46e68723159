package sim

import (
	"flag"
	"time"
)

// Config defines the simulated hardware.
type Config struct {
	FrontMM   uint
	BackMM    uint
	NoiseMM   uint
	FailEvery uint
	SpeedMax  float64
	MaxDuty   uint
}

// Defaults
const (
	DefaultFrontMM  = 800
	DefaultBackMM   = 400
	DefaultSpeedMax = 300
	DefaultMaxDuty  = 1000
)

var defaultConfig = Config{
	FrontMM:  DefaultFrontMM,
	BackMM:   DefaultBackMM,
	SpeedMax: DefaultSpeedMax,
	MaxDuty:  DefaultMaxDuty,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.FrontMM, "sim-front-mm", defaultConfig.FrontMM, "Initial distance (mm) to the obstacle ahead.")
	flag.UintVar(&defaultConfig.BackMM, "sim-back-mm", defaultConfig.BackMM, "Initial distance (mm) to the obstacle behind.")
	flag.UintVar(&defaultConfig.NoiseMM, "sim-noise-mm", defaultConfig.NoiseMM, "Maximum range noise (mm).")
	flag.UintVar(&defaultConfig.FailEvery, "sim-fail-every", defaultConfig.FailEvery, "Fail every Nth I2C transaction, 0 never fails.")
	flag.Float64Var(&defaultConfig.SpeedMax, "sim-speed-max", defaultConfig.SpeedMax, "Drive speed (mm/s) at full duty.")
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

// NewHardware creates the simulated hardware.
func (c *Config) NewHardware() *Hardware {
	world := NewCorridor(float64(c.BackMM), float64(c.FrontMM), c.SpeedMax, time.Now)
	maxDuty := uint16(c.MaxDuty)
	if maxDuty == 0 {
		maxDuty = DefaultMaxDuty
	}
	hw := &Hardware{
		World: world,
		LED:   &LED{},
		Left:  &Motor{Name: "left", Max: maxDuty, World: world},
		Right: &Motor{Name: "right", Max: maxDuty, World: world},
		I2C:   NewI2C(c.FailEvery),
	}
	hw.I2C.Attach(FrontAddr, &RangeDevice{Range: world.FrontMM, NoiseMM: c.NoiseMM})
	hw.I2C.Attach(BackAddr, &RangeDevice{Range: world.BackMM, NoiseMM: c.NoiseMM})
	return hw
}
