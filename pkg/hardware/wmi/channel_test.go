// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wmi

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testGUID = "ABBC0F6D-8EA1-11D1-00A0-C90629100000"

func TestCallSentinelIsInvalidFunction(t *testing.T) {
	for _, fn := range []Function{FuncGetEvent, FuncEnableNotifications, FuncSetLED, Function(0x7f)} {
		ft := NewFakeTransport()
		ft.SetResult(fn, 0xFFFFFFFF)
		c := NewChannel(ft, testGUID, nil)
		v, err := c.Call(fn, 0)
		if !errors.Is(err, ErrInvalidFunction) {
			t.Errorf("%s: expected ErrInvalidFunction, got %v (value %#x)", fn, err, v)
		}
		if n := ft.Outstanding(); n != 0 {
			t.Errorf("%s: %d responses not released", fn, n)
		}
	}
}

func TestCallSentinelLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ft := NewFakeTransport()
	ft.SetResult(FuncSetLED, 0xFFFFFFFF)
	c := NewChannel(ft, testGUID, zap.New(core).Sugar())
	c.Call(FuncSetLED, 1)
	if n := logs.FilterMessage("Invalid function").Len(); n != 1 {
		t.Errorf("Expected one warning about the invalid function, got %d", n)
	}
}

func TestCallTruncatesTo32Bit(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetResult(FuncGetEvent, 0x1_0000_00A3)
	c := NewChannel(ft, testGUID, nil)
	v, err := c.Call(FuncGetEvent, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 0xA3 {
		t.Errorf("Expected 0xa3, got %#x", v)
	}
}

func TestCallUnexpectedType(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetObject(FuncGetEvent, Object{Type: TypeBuffer, Buffer: []byte{1, 2}})
	c := NewChannel(ft, testGUID, nil)
	if _, err := c.Call(FuncGetEvent, 0); !errors.Is(err, ErrUnexpectedResultType) {
		t.Errorf("Expected ErrUnexpectedResultType, got %v", err)
	}
	if n := ft.Outstanding(); n != 0 {
		t.Errorf("%d responses not released", n)
	}
}

func TestCallUnknownObjectType(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetObject(FuncGetEvent, Object{Type: ObjectType(9)})
	c := NewChannel(ft, testGUID, nil)
	if _, err := c.Call(FuncGetEvent, 0); !errors.Is(err, ErrUnexpectedResultType) {
		t.Errorf("Expected ErrUnexpectedResultType, got %v", err)
	}
	if s := ObjectType(9).String(); s != "type(9)" {
		t.Errorf("ObjectType(9) renders as %q", s)
	}
	if s := TypePackage.String(); s != "package" {
		t.Errorf("TypePackage renders as %q", s)
	}
}

func TestCallTransportFailure(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetFailure(FuncEnableNotifications, Status("AE_NOT_FOUND"))
	c := NewChannel(ft, testGUID, nil)
	_, err := c.Call(FuncEnableNotifications, 0)
	if !errors.Is(err, ErrTransportFailure) {
		t.Errorf("Expected ErrTransportFailure, got %v", err)
	}
}

func TestCallPassesArgument(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetResult(FuncSetLED, 0)
	c := NewChannel(ft, testGUID, nil)
	if _, err := c.Call(FuncSetLED, 1); err != nil {
		t.Fatalf("Call: %v", err)
	}
	calls := ft.Calls(FuncSetLED)
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}
	if calls[0].GUID != testGUID || len(calls[0].Arg) != 1 || calls[0].Arg[0] != 1 {
		t.Errorf("Unexpected call %+v", calls[0])
	}
	if n := ft.Outstanding(); n != 0 {
		t.Errorf("%d responses not released", n)
	}
}

func TestObjectReleaseOnce(t *testing.T) {
	n := 0
	o := NewObject(Object{Type: TypeInteger}, func() { n++ })
	o.Release()
	o.Release()
	if n != 1 {
		t.Errorf("Expected release to run once, ran %d times", n)
	}
}
