// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wmi

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSysfsRoot is where the kernel WMI bus lists its devices.
const DefaultSysfsRoot = "/sys/bus/wmi/devices"

// HasGUID reports whether the firmware exposes guid. Devices are named
// after their GUID, newer kernels append "-<n>" to keep names unique.
func HasGUID(fs afero.Fs, root, guid string) bool {
	if root == "" {
		root = DefaultSysfsRoot
	}
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return false
	}
	guid = strings.ToUpper(guid)
	for _, e := range entries {
		name := strings.ToUpper(filepath.Base(e.Name()))
		if name == guid || strings.HasPrefix(name, guid+"-") {
			return true
		}
	}
	return false
}
