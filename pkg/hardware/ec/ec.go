// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ec reads embedded controller registers and decodes the ones
// carrying the VGA LED state and the fan tachometer.
package ec

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// DefaultIOPath is the register window exposed by the ec_sys module.
const DefaultIOPath = "/sys/kernel/debug/ec/ec0/io"

// Registers is byte addressable EC register space.
type Registers interface {
	Read8(offset uint8) (uint8, error)
}

// IOFile accesses the EC register window of ec_sys. Every read opens
// the file anew, the window is small and debugfs keeps no state.
type IOFile struct {
	fs   afero.Fs
	path string
}

var _ Registers = &IOFile{}

func NewIOFile(fs afero.Fs, path string) *IOFile {
	if path == "" {
		path = DefaultIOPath
	}
	return &IOFile{fs: fs, path: path}
}

// Available reports whether the register window exists.
func (e *IOFile) Available() bool {
	ok, err := afero.Exists(e.fs, e.path)
	return ok && err == nil
}

func (e *IOFile) Path() string {
	return e.path
}

func (e *IOFile) Read8(offset uint8) (uint8, error) {
	f, err := e.fs.OpenFile(e.path, os.O_RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open EC file: %w", err)
	}
	defer f.Close()
	b := make([]byte, 1)
	n, err := f.ReadAt(b, int64(offset))
	if n == 1 {
		return b[0], nil
	}
	if err == nil || err == io.EOF {
		return 0, fmt.Errorf("EC register %#02x out of range", offset)
	}
	return 0, fmt.Errorf("failed to read EC register %#02x: %w", offset, err)
}
