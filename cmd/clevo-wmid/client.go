// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/u-root/clevo-wmi/config"
	"github.com/u-root/clevo-wmi/pkg/service/control"
)

func clientFlags(name string) (*flag.FlagSet, *string, *time.Duration) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	socket := fs.String("socket", config.DefaultConfig.Socket, "Control socket of the daemon")
	timeout := fs.Duration("timeout", 5*time.Second, "Request timeout")
	return fs, socket, timeout
}

func led(args []string) error {
	fs, socket, timeout := clientFlags("led")
	fs.Parse(args)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	c := control.Dial(*socket)
	switch fs.NArg() {
	case 0:
		color, err := c.LED(ctx)
		if err != nil {
			return err
		}
		fmt.Println(color)
		return nil
	case 1:
		return c.SetLED(ctx, fs.Arg(0))
	}
	return fmt.Errorf("expected at most one color, got %v", fs.Args())
}

func fan(args []string) error {
	fs, socket, timeout := clientFlags("fan")
	fs.Parse(args)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	rpm, err := control.Dial(*socket).FanRPM(ctx)
	if err != nil {
		return err
	}
	fmt.Println(rpm)
	return nil
}

// notify is meant to be linked into /usr/lib/systemd/system-sleep/,
// systemd calls it with the phase and the kind of sleep.
func notify(args []string) error {
	fs, socket, timeout := clientFlags("notify")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("expected <phase> <kind>, got %v", fs.Args())
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	return control.Dial(*socket).Notify(ctx, fs.Arg(0), fs.Arg(1))
}
