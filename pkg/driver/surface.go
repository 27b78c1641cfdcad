// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
)

// Surface is the LED and fan interface offered to users.
type Surface interface {
	LEDColor() (ec.LEDColor, error)
	// WriteLED takes "g" or "y" in either case as first byte. The
	// whole input is always reported as consumed.
	WriteLED(p []byte) (int, error)
	FanRPM() (uint32, error)
}

var _ Surface = &Driver{}

func (d *Driver) LEDColor() (ec.LEDColor, error) {
	d.hw.Lock()
	defer d.hw.Unlock()
	return ec.ReadLED(d.ec, d.layout)
}

func (d *Driver) WriteLED(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	switch p[0] {
	case 'g', 'G':
		d.SetLED(ec.Green)
	case 'y', 'Y':
		d.SetLED(ec.Yellow)
	}
	return len(p), nil
}

// SetLED switches the LED color. Failures are logged only.
func (d *Driver) SetLED(c ec.LEDColor) {
	if _, err := d.call(d.p.Functions.SetLED, c.SetArgument()); err != nil {
		d.log.Warnf("Setting VGA_LED to %s failed: %v", c, err)
		return
	}
	d.log.Infof("Setting VGA_LED to %s", c)
}

func (d *Driver) FanRPM() (uint32, error) {
	d.hw.Lock()
	rpm, err := ec.ReadFanRPM(d.ec, d.layout)
	d.hw.Unlock()
	if err != nil {
		return 0, err
	}
	fanRPM.Set(float64(rpm))
	return rpm, nil
}
