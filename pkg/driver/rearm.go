// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"time"

	"github.com/jpillora/backoff"

	"github.com/u-root/clevo-wmi/pkg/power"
)

// handlePower re-arms notifications after every resume, the firmware
// drops them across suspend, hibernate and restore.
func (d *Driver) handlePower(t power.Transition) {
	switch {
	case t.IsPrepare():
		d.log.Debugf("%v: notifications disarmed until resume", t)
		d.setState(Disabled)
	case t.IsResume():
		d.log.Infof("%v: re-enabling WMI notifications", t)
		d.reArm()
	}
}

func (d *Driver) reArm() {
	b := &backoff.Backoff{
		Min:    d.rearm.Min,
		Max:    d.rearm.Max,
		Factor: 2,
	}
	if b.Min <= 0 {
		b.Min = 100 * time.Millisecond
	}
	if b.Max < b.Min {
		b.Max = b.Min
	}
	for attempt := 0; ; attempt++ {
		if err := d.enable(); err == nil {
			rearms.WithLabelValues("ok").Inc()
			return
		}
		if attempt >= d.rearm.Retries {
			break
		}
		delay := b.Duration()
		d.log.Warnf("Waiting %v before retrying to enable WMI notifications", delay)
		d.rearm.Clock.Sleep(delay)
	}
	rearms.WithLabelValues("failed").Inc()
	d.log.Errorf("WMI notifications stay disabled until the next resume")
}
