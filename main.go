// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/azure-samples/appservice-ai-planner/cmd"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/pflag"
)

func main() {
	restoreColorMode := colorable.EnableColorsStdout(nil)
	defer restoreColorMode()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !isDebugEnabled() {
		log.SetOutput(io.Discard)
	}

	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ERROR: %s", err.Error()))
		os.Exit(1)
	}
}

// isDebugEnabled checks to see if `--debug` was passed with a truthy
// value.
func isDebugEnabled() bool {
	debug := false
	flags := pflag.NewFlagSet("temp", pflag.ContinueOnError)

	flags.BoolVar(&debug, "debug", false, "")
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Usage = func() {}

	// if flag `--debug` is not within the args, the previous value (false) is not updated.
	_ = flags.Parse(os.Args[1:])

	return debug
}
