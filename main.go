// Package main is the entry point for the vidsan application.
package main

import (
	"github.com/samber/lo"
	"github.com/vidsan-cli/vidsan/cmd"
	"github.com/vidsan-cli/vidsan/config"
	"github.com/vidsan-cli/vidsan/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())
	cmd.Execute()
}
