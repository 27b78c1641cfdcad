// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"github.com/u-root/clevo-wmi/pkg/metric"
)

var (
	firmwareCalls = metric.Counter(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Subsystem: "firmware",
		Name:      "calls_total",
		Help:      "WMI method calls by function and result.",
	}, []string{"function", "result"})

	firmwareLatency = metric.Histogram(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Subsystem: "firmware",
		Name:      "call_duration_seconds",
		Help:      "Time spent in WMI method calls, including waiting for the hardware lock.",
	}, []string{"function"})

	hotkeyEvents = metric.Counter(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Name:      "events_total",
		Help:      "Firmware events by resulting key, unknown for unmapped codes.",
	}, []string{"key"})

	droppedEvents = metric.Counter(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Name:      "events_dropped_total",
		Help:      "Firmware notifications that produced no key press.",
	}, []string{"reason"})

	rearms = metric.Counter(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Name:      "rearm_total",
		Help:      "Notification re-arms after resume by result.",
	}, []string{"result"})

	notificationsArmed = metric.Gauge(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Name:      "notifications_armed",
		Help:      "1 while firmware notifications are enabled.",
	})

	fanRPM = metric.Gauge(metric.MetricOpts{
		Namespace: "clevo_wmi",
		Subsystem: "fan",
		Name:      "rpm",
		Help:      "Last fan speed read from the EC.",
	})
)
