package main

import (
	"github.com/robotalks/newbridge/pkg/bridge"
	"github.com/robotalks/newbridge/pkg/cli/sh"
)

//go-build: CGO_ENABLED=0

func init() {
	bridge.SetupFlags()
}

func main() {
	sh.Main()
}
