package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/rover.go/pkg/firmware"
	"github.com/robotalks/rover.go/pkg/framework"
	"github.com/robotalks/rover.go/pkg/l1"
	env "github.com/robotalks/rover.go/pkg/l1/env/controller"
	"github.com/robotalks/rover.go/pkg/sim"
)

func init() {
	env.SetControllerMeta(l1.ControllerMeta{Description: "Simulated Rover"})
	env.SetupFlags()
	firmware.SetupFlags()
	sim.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	hw := sim.NewConfig().NewHardware()
	fw := firmware.NewConfig().New(firmware.Hardware{
		LED:   hw.LED,
		Left:  hw.Left,
		Right: hw.Right,
		I2C:   hw.I2C,
	}, env.Registrar)
	framework.NewLoop().Add(env, fw).RunOrFail()
}
