// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build 386 || amd64 || arm || arm64 || loong64 || mips64le || mipsle || ppc64le || riscv64

package uinput

import (
	"encoding/binary"
)

func NativeEndian() binary.ByteOrder {
	return binary.LittleEndian
}
