// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uinput

import (
	"fmt"
	"sync"
)

// FakeKeyboard records the reported events. A key report renders as
// "KEY_PROG1 down" or "KEY_PROG1 up", a sync as "SYN".
type FakeKeyboard struct {
	lock   sync.Mutex
	events []string
	closed bool
}

var _ Keyboard = &FakeKeyboard{}

func (f *FakeKeyboard) ReportKey(k Key, pressed bool) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	state := "up"
	if pressed {
		state = "down"
	}
	f.events = append(f.events, fmt.Sprintf("%v %s", k, state))
	return nil
}

func (f *FakeKeyboard) Sync() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.events = append(f.events, "SYN")
	return nil
}

func (f *FakeKeyboard) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.closed = true
	return nil
}

// Events returns everything reported so far.
func (f *FakeKeyboard) Events() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.events...)
}

func (f *FakeKeyboard) Closed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.closed
}
