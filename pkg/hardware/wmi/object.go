// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wmi

import (
	"fmt"
	"strings"
)

// Function is the opcode passed as the method id of a WMI method call.
type Function uint8

const (
	FuncGetEvent            Function = 0x01
	FuncEnableNotifications Function = 0x46
	FuncSetLED              Function = 0x56
)

func (f Function) String() string {
	switch f {
	case FuncGetEvent:
		return "GET_EVENT"
	case FuncEnableNotifications:
		return "ENABLE_NOTIFICATIONS"
	case FuncSetLED:
		return "SET_LED"
	}
	return fmt.Sprintf("FUNC_%#02x", uint8(f))
}

// MethodResult is the 32 bit value returned by a successful call.
type MethodResult uint32

// InvalidResult is what the firmware returns for an unknown opcode.
const InvalidResult MethodResult = 0xFFFFFFFF

// ObjectType mirrors the ACPI object types a method can return.
type ObjectType int

const (
	TypeAny ObjectType = iota
	TypeInteger
	TypeString
	TypeBuffer
	TypePackage
)

func (t ObjectType) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeInteger:
		return "integer"
	case TypeString:
		return "string"
	case TypeBuffer:
		return "buffer"
	case TypePackage:
		return "package"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Object is a decoded firmware response. Release must be called once
// the caller is done with it.
type Object struct {
	Type    ObjectType
	Integer uint64
	String  string
	Buffer  []byte
	// Package holds the raw elements of a package response.
	Package []string

	release func()
}

// NewObject wraps a decoded response together with the function that
// frees its backing storage.
func NewObject(o Object, release func()) *Object {
	o.release = release
	return &o
}

// Release frees the backing storage of the response. It is safe to
// call more than once.
func (o *Object) Release() {
	if o == nil || o.release == nil {
		return
	}
	r := o.release
	o.release = nil
	r()
}

func (o *Object) describe() string {
	switch o.Type {
	case TypeInteger:
		return fmt.Sprintf("%#x", o.Integer)
	case TypeString:
		return fmt.Sprintf("%q", o.String)
	case TypeBuffer:
		return fmt.Sprintf("% x", o.Buffer)
	case TypePackage:
		return "[" + strings.Join(o.Package, ", ") + "]"
	}
	return o.Type.String()
}
