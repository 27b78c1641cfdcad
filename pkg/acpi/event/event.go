// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package event receives ACPI notifications broadcast by the kernel on
// the acpi_event generic netlink family.
package event

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	FamilyName = "acpi_event"
	GroupName  = "acpi_mc_group"

	cmdEvent  = 1
	attrEvent = 1

	deviceClassLen = 20
	busIDLen       = 15
	// device_class, bus_id, one byte of padding, type, data
	payloadLen = deviceClassLen + busIDLen + 1 + 4 + 4
)

var ErrShortPayload = errors.New("event: short acpi_genl_event payload")

// Event is one struct acpi_genl_event.
type Event struct {
	DeviceClass string
	BusID       string
	Type        uint32
	Data        uint32
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s %08x %08x", e.DeviceClass, e.BusID, e.Type, e.Data)
}

// Handler is called for every matching event, one at a time.
type Handler func(Event)

// Decode parses the payload of an ACPI_GENL_ATTR_EVENT attribute.
func Decode(b []byte, order binary.ByteOrder) (Event, error) {
	if len(b) < payloadLen {
		return Event{}, fmt.Errorf("%w: %d bytes", ErrShortPayload, len(b))
	}
	return Event{
		DeviceClass: cstring(b[:deviceClassLen]),
		BusID:       cstring(b[deviceClassLen : deviceClassLen+busIDLen]),
		Type:        order.Uint32(b[36:40]),
		Data:        order.Uint32(b[40:44]),
	}, nil
}

// Encode renders e as the kernel would. Strings are truncated to fit.
func Encode(e Event, order binary.ByteOrder) []byte {
	b := make([]byte, payloadLen)
	copy(b[:deviceClassLen-1], e.DeviceClass)
	copy(b[deviceClassLen:deviceClassLen+busIDLen-1], e.BusID)
	order.PutUint32(b[36:40], e.Type)
	order.PutUint32(b[40:44], e.Data)
	return b
}

func cstring(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Filter selects the notifications of one WMI event GUID.
//
// The WMI bus forwards notifications nobody claims in the kernel with
// the device name as bus id. That name is the GUID cut to the width of
// bus_id, so such an event matches only on the whole truncated GUID.
// Older kernels report the ACPI device (PNP0C14:nn) or nothing instead,
// those are matched on the WMI device class and the notify id.
type Filter struct {
	GUID     string
	NotifyID uint32
}

func (f Filter) Match(e Event) bool {
	id := strings.ToUpper(e.BusID)
	if id != "" && !strings.HasPrefix(id, "PNP0C14:") {
		guid := strings.ToUpper(f.GUID)
		if n := busIDLen - 1; len(guid) > n {
			guid = guid[:n]
		}
		return guid != "" && id == guid
	}
	if f.NotifyID == 0 || e.Type != f.NotifyID {
		return false
	}
	dc := strings.ToUpper(e.DeviceClass)
	return strings.HasPrefix(dc, "WMI") || strings.HasPrefix(dc, "PNP0C14")
}
