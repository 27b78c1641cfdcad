// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wmi

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// DefaultACPICallPath is the control file of the acpi_call module.
const DefaultACPICallPath = "/proc/acpi/call"

// Status is a non-success ACPI status reported by the firmware layer,
// e.g. AE_NOT_FOUND.
type Status string

func (s Status) Error() string {
	return string(s)
}

// ACPICall evaluates WMI methods from userspace through the acpi_call
// module. The module keeps a single result buffer, so a write and the
// read that follows it form one critical section.
type ACPICall struct {
	fs   afero.Fs
	path string
	// methods maps a method GUID to the ACPI path of its WMxx method.
	methods map[string]string
	m       sync.Mutex
}

var _ Transport = &ACPICall{}

func NewACPICall(fs afero.Fs, path string, methods map[string]string) *ACPICall {
	if path == "" {
		path = DefaultACPICallPath
	}
	m := make(map[string]string, len(methods))
	for guid, p := range methods {
		m[strings.ToUpper(guid)] = p
	}
	return &ACPICall{fs: fs, path: path, methods: m}
}

// Available reports whether the acpi_call control file exists.
func (a *ACPICall) Available() bool {
	ok, err := afero.Exists(a.fs, a.path)
	return ok && err == nil
}

func (a *ACPICall) Evaluate(guid string, instance uint8, method uint32, in []byte) (*Object, error) {
	mp, ok := a.methods[strings.ToUpper(guid)]
	if !ok {
		return nil, Status("AE_NOT_FOUND")
	}
	cmd := formatCall(mp, instance, method, in)

	a.m.Lock()
	defer a.m.Unlock()
	f, err := a.fs.OpenFile(a.path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", a.path, err)
	}
	if _, err := f.Write([]byte(cmd)); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %v", a.path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %v", a.path, err)
	}
	b, err := afero.ReadFile(a.fs, a.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v", a.path, err)
	}
	o, err := parseResponse(string(b))
	if err != nil {
		return nil, err
	}
	// The module result buffer is overwritten by the next call, there
	// is nothing to free on our side.
	return NewObject(o, func() {}), nil
}

// formatCall renders a WMxx invocation: instance, method id and the
// input buffer, e.g. `\_SB.WMI.WMBB 0x0 0x46 b00`.
func formatCall(path string, instance uint8, method uint32, in []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %#x %#x b", path, instance, method)
	for _, c := range in {
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

func parseResponse(s string) (Object, error) {
	s = strings.TrimRight(s, "\x00\n\r\t ")
	switch {
	case s == "" || s == "not called":
		return Object{}, Status("AE_NOT_EXIST")
	case strings.HasPrefix(s, "Error:"):
		return Object{}, Status(strings.TrimSpace(strings.TrimPrefix(s, "Error:")))
	case strings.HasPrefix(s, "0x"):
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return Object{}, fmt.Errorf("malformed integer %q: %v", s, err)
		}
		return Object{Type: TypeInteger, Integer: v}, nil
	case strings.HasPrefix(s, `"`):
		return Object{Type: TypeString, String: strings.Trim(s, `"`)}, nil
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		var buf []byte
		for _, e := range splitElements(s[1 : len(s)-1]) {
			v, err := strconv.ParseUint(strings.TrimPrefix(e, "0x"), 16, 8)
			if err != nil {
				return Object{}, fmt.Errorf("malformed buffer %q: %v", s, err)
			}
			buf = append(buf, byte(v))
		}
		return Object{Type: TypeBuffer, Buffer: buf}, nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return Object{Type: TypePackage, Package: splitElements(s[1 : len(s)-1])}, nil
	}
	return Object{}, fmt.Errorf("unrecognized acpi_call response %q", s)
}

func splitElements(s string) []string {
	var r []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			r = append(r, e)
		}
	}
	return r
}
