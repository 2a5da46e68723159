package main

import (
	"github.com/robotalks/rover.go/pkg/cli/sh"
	env "github.com/robotalks/rover.go/pkg/l1/env/connector"

	_ "github.com/robotalks/rover.go/pkg/cli/cmds/rover"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
