// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform describes the firmware interface of a supported
// laptop: WMI identifiers, opcodes, EC register layout and hotkeys.
package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/hardware/wmi"
)

// Hotkey is a firmware event delivered to userspace as a key press.
type Hotkey struct {
	Name string
	Key  uinput.Key
}

// Functions holds the opcodes of the vendor WMI method.
type Functions struct {
	GetEvent            wmi.Function
	EnableNotifications wmi.Function
	SetLED              wmi.Function
}

type Platform struct {
	Name string
	// MethodGUID identifies the WMI method object used for calls.
	MethodGUID string
	// MethodPath is the ACPI path of that method, as acpi_call needs it.
	MethodPath string
	// EventGUID identifies the WMI event object notifications come from.
	EventGUID string
	// NotifyID is the ACPI notify value of the event object.
	NotifyID  uint32
	Functions Functions
	EC        ec.Layout
	// Hotkeys maps GET_EVENT codes to keys, unknown codes are dropped.
	Hotkeys     map[wmi.MethodResult]Hotkey
	InputDevice uinput.Device
}

// Keys returns the keys the input device must announce.
func (p *Platform) Keys() []uinput.Key {
	var keys []uinput.Key
	seen := map[uinput.Key]bool{}
	for _, h := range p.Hotkeys {
		if !seen[h.Key] {
			seen[h.Key] = true
			keys = append(keys, h.Key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

var (
	m         sync.Mutex
	platforms = map[string]*Platform{}
)

// Register makes p selectable by its name.
func Register(p *Platform) {
	m.Lock()
	defer m.Unlock()
	if _, dup := platforms[p.Name]; dup {
		panic("platform: Register called twice for " + p.Name)
	}
	platforms[p.Name] = p
}

// Lookup returns the platform registered as name.
func Lookup(name string) (*Platform, error) {
	m.Lock()
	defer m.Unlock()
	p, ok := platforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", name)
	}
	return p, nil
}

// Names lists the registered platforms.
func Names() []string {
	m.Lock()
	defer m.Unlock()
	var r []string
	for n := range platforms {
		r = append(r, n)
	}
	sort.Strings(r)
	return r
}
