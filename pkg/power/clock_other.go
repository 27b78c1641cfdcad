// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package power

import (
	"errors"
	"time"
)

func SystemSleepClock() (time.Duration, error) {
	return 0, errors.New("sleep clock not supported on this platform")
}
