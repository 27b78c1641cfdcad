// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"testing"

	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/platform"
)

func TestRegistered(t *testing.T) {
	p, err := platform.Lookup(Name)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.MethodGUID == p.EventGUID {
		t.Error("Method and event GUIDs must differ")
	}
}

func TestHotkeys(t *testing.T) {
	p := Platform()
	if h, ok := p.Hotkeys[0xA3]; !ok || h.Key != uinput.KeyProg1 {
		t.Errorf("Event 0xa3 does not map to KEY_PROG1: %+v", h)
	}
	if h, ok := p.Hotkeys[0x9A]; !ok || h.Key != uinput.KeyProg2 {
		t.Errorf("Event 0x9a does not map to KEY_PROG2: %+v", h)
	}
	if _, ok := p.Hotkeys[0x50]; ok {
		t.Error("Event 0x50 must not be mapped")
	}
	keys := p.Keys()
	if len(keys) != 2 || keys[0] != uinput.KeyProg1 || keys[1] != uinput.KeyProg2 {
		t.Errorf("Unexpected key set %v", keys)
	}
}
