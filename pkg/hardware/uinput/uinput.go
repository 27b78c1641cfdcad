// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uinput creates a virtual keyboard through /dev/uinput.
package uinput

import (
	"errors"
	"fmt"
)

// DefaultPath is the uinput character device.
const DefaultPath = "/dev/uinput"

// Key is a Linux input event code from input-event-codes.h.
type Key uint16

const (
	KeyEsc   Key = 1
	KeyProg1 Key = 148
	KeyProg2 Key = 149
)

func (k Key) String() string {
	switch k {
	case KeyEsc:
		return "KEY_ESC"
	case KeyProg1:
		return "KEY_PROG1"
	case KeyProg2:
		return "KEY_PROG2"
	}
	return fmt.Sprintf("KEY_%d", uint16(k))
}

const (
	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0
	busHost   = 0x19
)

var ErrUnsupported = errors.New("uinput: not supported on this platform")

// Keyboard is a registered input device able to report key events.
type Keyboard interface {
	// ReportKey queues a key state change, pressed or released.
	ReportKey(k Key, pressed bool) error
	// Sync flushes queued changes as one input transaction.
	Sync() error
	Close() error
}

// Device describes the keyboard to register.
type Device struct {
	Name    string
	Vendor  uint16
	Product uint16
	Keys    []Key
}
