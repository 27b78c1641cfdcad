// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// clevo-wmid exposes the hotkeys, VGA LED and fan speed of Clevo
// laptops. Without arguments, or with "serve", it runs the daemon.
// The led, fan and notify commands talk to a running daemon.
//
//	clevo-wmid serve [-config file] [flags]
//	clevo-wmid led [green|yellow]
//	clevo-wmid fan
//	clevo-wmid notify pre|post suspend|hibernate|hybrid-sleep|suspend-then-hibernate
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/u-root/clevo-wmi/pkg/logger"
	_ "github.com/u-root/clevo-wmi/platform/clevo-w35_37et/pkg/platform"
)

var log = logger.LogContainer.GetSimpleLogger()

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [serve|led|fan|notify] [args]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	var err error
	switch cmd {
	case "serve":
		err = serve(args)
	case "led":
		err = led(args)
	case "fan":
		err = fan(args)
	case "notify":
		err = notify(args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
	}
	if err != nil {
		log.Errorf("%s: %v", cmd, err)
		logger.LogContainer.Sync()
		os.Exit(1)
	}
}
