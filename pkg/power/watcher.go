// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package power

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepClock returns the total time the system spent suspended so far.
type SleepClock func() (time.Duration, error)

// Watcher detects resumes without help from the init system: the gap
// between CLOCK_BOOTTIME and CLOCK_MONOTONIC grows only while the
// system sleeps.
type Watcher struct {
	Interval  time.Duration
	Threshold time.Duration
	Clock     SleepClock
	Notify    func(Transition)
	Log       *zap.SugaredLogger

	// tick overrides the interval ticker in tests
	tick <-chan time.Time
}

// Run samples the clock until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Clock == nil {
		w.Clock = SystemSleepClock
	}
	if w.Log == nil {
		w.Log = zap.NewNop().Sugar()
	}
	last, err := w.Clock()
	if err != nil {
		return err
	}
	tick := w.tick
	if tick == nil {
		t := time.NewTicker(w.Interval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
		cur, err := w.Clock()
		if err != nil {
			w.Log.Warnf("Reading sleep clock failed: %v", err)
			continue
		}
		if slept := cur - last; slept > w.Threshold {
			w.Log.Infof("System slept for %v", slept)
			w.Notify(PostSuspend)
		}
		last = cur
	}
}
