// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wmi implements the method-call channel to the vendor WMI
// method of the platform firmware.
//
// The firmware overlays its error indicator on the data channel: an
// unknown opcode yields 0xFFFFFFFF instead of a status. Call turns that
// into ErrInvalidFunction so no caller can mistake it for data.
package wmi

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrTransportFailure     = errors.New("wmi: method could not be executed")
	ErrUnexpectedResultType = errors.New("wmi: unexpected result type")
	ErrInvalidFunction      = errors.New("wmi: invalid function")
)

// Transport evaluates one WMI method. A returned error is a non-success
// status of the firmware layer.
type Transport interface {
	Evaluate(guid string, instance uint8, method uint32, in []byte) (*Object, error)
}

// Caller is what the driver needs from a Channel.
type Caller interface {
	Call(fn Function, arg byte) (MethodResult, error)
}

// Channel issues one-byte-argument calls to a single method GUID.
type Channel struct {
	guid string
	t    Transport
	log  *zap.SugaredLogger
}

var _ Caller = &Channel{}

func NewChannel(t Transport, guid string, log *zap.SugaredLogger) *Channel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Channel{guid: guid, t: t, log: log}
}

// GUID returns the method GUID the channel talks to.
func (c *Channel) GUID() string {
	return c.guid
}

// Call invokes fn with arg as the sole input byte. The instance is
// ignored by the firmware and always 0.
func (c *Channel) Call(fn Function, arg byte) (MethodResult, error) {
	out, err := c.t.Evaluate(c.guid, 0, uint32(fn), []byte{arg})
	if err != nil {
		c.log.Warnw("Failed to execute function", "function", fmt.Sprintf("%#02x", uint8(fn)), "status", err)
		return 0, fmt.Errorf("%w: %s: %v", ErrTransportFailure, fn, err)
	}
	defer out.Release()

	if out.Type != TypeInteger {
		c.log.Warnw("Unexpected output type", "function", fn.String(), "type", out.Type.String(), "value", out.describe())
		return 0, fmt.Errorf("%w: %s returned %s", ErrUnexpectedResultType, fn, out.Type)
	}
	v := MethodResult(uint32(out.Integer))
	if v == InvalidResult {
		c.log.Warnw("Invalid function", "function", fmt.Sprintf("%#02x", uint8(fn)))
		return 0, fmt.Errorf("%w: %#02x", ErrInvalidFunction, uint8(fn))
	}
	return v, nil
}
