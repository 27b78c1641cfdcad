// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"sync"
)

// FakeRegisters is an in-memory register space.
type FakeRegisters struct {
	lock  sync.Mutex
	regs  [256]uint8
	reads int
}

var _ Registers = &FakeRegisters{}

func (f *FakeRegisters) Set(offset, v uint8) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.regs[offset] = v
}

func (f *FakeRegisters) Read8(offset uint8) (uint8, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.reads++
	return f.regs[offset], nil
}

// Reads returns the number of register reads so far.
func (f *FakeRegisters) Reads() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.reads
}
