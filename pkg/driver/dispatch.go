// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"github.com/u-root/clevo-wmi/pkg/acpi/event"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
)

// dispatch handles one firmware notification. The notification itself
// carries nothing useful, the event code has to be fetched with
// GET_EVENT.
func (d *Driver) dispatch(e event.Event) {
	if d.State() != Enabled {
		d.log.Debugf("Ignoring WMI event while notifications are disabled: %v", e)
		droppedEvents.WithLabelValues("disarmed").Inc()
		return
	}
	code, err := d.call(d.p.Functions.GetEvent, 0)
	if err != nil {
		d.log.Warnf("Could not get WMI event number: %v", err)
		droppedEvents.WithLabelValues("get_event_failed").Inc()
		return
	}
	d.log.Debugf("Event number: %#02x", uint32(code))
	hk, ok := d.p.Hotkeys[code]
	if !ok {
		d.log.Infof("Unknown WMI event %#x", uint32(code))
		hotkeyEvents.WithLabelValues("unknown").Inc()
		return
	}
	d.log.Infof("key %x pressed", uint32(code))
	hotkeyEvents.WithLabelValues(hk.Name).Inc()
	d.sendKey(hk.Key)
}

// sendKey reports a press and release with no hold time in between.
func (d *Driver) sendKey(k uinput.Key) {
	for _, pressed := range []bool{true, false} {
		if err := d.kbd.ReportKey(k, pressed); err != nil {
			d.log.Warnf("Reporting %v failed: %v", k, err)
			return
		}
		if err := d.kbd.Sync(); err != nil {
			d.log.Warnf("Syncing input device failed: %v", err)
			return
		}
	}
}
