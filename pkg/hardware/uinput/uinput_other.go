// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package uinput

func Open(path string, d Device) (Keyboard, error) {
	return nil, ErrUnsupported
}
