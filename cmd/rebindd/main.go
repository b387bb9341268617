// Package main is the entry point for the rebind daemon.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/rebind/cmd/rebindd/app"
)

func main() {
	app.NewApp().Run()
}
