// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements driver.Host on a running Linux system.
package host

import (
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/u-root/clevo-wmi/pkg/acpi/event"
	"github.com/u-root/clevo-wmi/pkg/driver"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/hardware/wmi"
	"github.com/u-root/clevo-wmi/pkg/power"
	"github.com/u-root/clevo-wmi/pkg/service/control"
)

type Options struct {
	Fs         afero.Fs
	SysfsRoot  string
	UinputPath string
	Control    *control.Server
	Power      *power.Notifier
	Log        *zap.SugaredLogger
}

type Linux struct {
	o Options

	openKeyboard func(path string, d uinput.Device) (uinput.Keyboard, error)
	subscribe    func(f event.Filter, h event.Handler, log *zap.SugaredLogger) (io.Closer, error)
}

var _ driver.Host = &Linux{}

func New(o Options) *Linux {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.UinputPath == "" {
		o.UinputPath = uinput.DefaultPath
	}
	if o.Power == nil {
		o.Power = power.NewNotifier()
	}
	if o.Control == nil {
		o.Control = control.New(o.Power.Notify, o.Log)
	}
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
	return &Linux{
		o:            o,
		openKeyboard: uinput.Open,
		subscribe: func(f event.Filter, h event.Handler, log *zap.SugaredLogger) (io.Closer, error) {
			return event.Subscribe(f, h, log)
		},
	}
}

func (l *Linux) HasGUID(guid string) bool {
	return wmi.HasGUID(l.o.Fs, l.o.SysfsRoot, guid)
}

func (l *Linux) NewKeyboard(d uinput.Device) (uinput.Keyboard, error) {
	l.o.Log.Debugf("Creating input device %q on %s", d.Name, l.o.UinputPath)
	return l.openKeyboard(l.o.UinputPath, d)
}

func (l *Linux) RegisterSurface(s driver.Surface) (func(), error) {
	return l.o.Control.Mount(s)
}

func (l *Linux) SubscribeEvents(f event.Filter, h event.Handler) (io.Closer, error) {
	return l.subscribe(f, h, l.o.Log)
}

func (l *Linux) SubscribePower(h power.Handler) (func(), error) {
	return l.o.Power.Register(h), nil
}
