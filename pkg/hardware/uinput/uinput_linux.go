// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package uinput

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl requests from linux/uinput.h
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiDevSetup   = 0x405c5503
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
)

const maxNameSize = 80

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID           inputID
	Name         [maxNameSize]byte
	FFEffectsMax uint32
}

// struct input_event is a timeval followed by type, code and value.
const (
	timevalSize = int(unsafe.Sizeof(unix.Timeval{}))
	eventSize   = timevalSize + 8
)

type keyboard struct {
	f *os.File
	m sync.Mutex
}

// Open registers d as a new input device on the uinput node at path.
func Open(path string, d Device) (Keyboard, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", path, err)
	}
	fd := int(f.Fd())
	if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_SET_EVBIT: %v", err)
	}
	for _, k := range d.Keys {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(k)); err != nil {
			f.Close()
			return nil, fmt.Errorf("UI_SET_KEYBIT %v: %v", k, err)
		}
	}
	s := uinputSetup{ID: inputID{Bustype: busHost, Vendor: d.Vendor, Product: d.Product}}
	copy(s.Name[:maxNameSize-1], d.Name)
	if err := ioctl(fd, uiDevSetup, uintptr(unsafe.Pointer(&s))); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_SETUP: %v", err)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_CREATE: %v", err)
	}
	return &keyboard{f: f}, nil
}

func ioctl(fd int, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func encodeEvent(typ, code uint16, value int32) []byte {
	// The kernel stamps events itself, the time field stays zero.
	b := make([]byte, eventSize)
	o := NativeEndian()
	o.PutUint16(b[timevalSize:], typ)
	o.PutUint16(b[timevalSize+2:], code)
	o.PutUint32(b[timevalSize+4:], uint32(value))
	return b
}

func (k *keyboard) write(typ, code uint16, value int32) error {
	k.m.Lock()
	defer k.m.Unlock()
	_, err := k.f.Write(encodeEvent(typ, code, value))
	return err
}

func (k *keyboard) ReportKey(key Key, pressed bool) error {
	v := int32(0)
	if pressed {
		v = 1
	}
	return k.write(evKey, uint16(key), v)
}

func (k *keyboard) Sync() error {
	return k.write(evSyn, synReport, 0)
}

func (k *keyboard) Close() error {
	k.m.Lock()
	defer k.m.Unlock()
	if err := ioctl(int(k.f.Fd()), uiDevDestroy, 0); err != nil {
		k.f.Close()
		return fmt.Errorf("UI_DEV_DESTROY: %v", err)
	}
	return k.f.Close()
}
