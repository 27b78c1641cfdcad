// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform registers the Clevo W35_37ET.
package platform

import (
	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/hardware/wmi"
	"github.com/u-root/clevo-wmi/pkg/platform"
)

const Name = "w35_37et"

func init() {
	platform.Register(Platform())
}

func Platform() *platform.Platform {
	return &platform.Platform{
		Name: Name,
		// The GUIDs are the ones of the WMI sample documents, Clevo
		// firmware reuses them.
		MethodGUID: "ABBC0F6D-8EA1-11D1-00A0-C90629100000",
		MethodPath: `\_SB.WMI.WMBB`,
		EventGUID:  "ABBC0F6B-8EA1-11D1-00A0-C90629100000",
		NotifyID:   0xD0,
		Functions: platform.Functions{
			GetEvent:            wmi.FuncGetEvent,
			EnableNotifications: wmi.FuncEnableNotifications,
			SetLED:              wmi.FuncSetLED,
		},
		EC: ec.Layout{
			LEDStatus: 249,
			FanHigh:   208,
			FanLow:    209,
			FanMagic:  1966080,
		},
		Hotkeys: map[wmi.MethodResult]platform.Hotkey{
			0xA3: {Name: "vga", Key: uinput.KeyProg1},
			0x9A: {Name: "esc", Key: uinput.KeyProg2},
		},
		InputDevice: uinput.Device{
			Name: "Clevo WMI hotkeys",
		},
	}
}
