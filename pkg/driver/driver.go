// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver ties the firmware method channel, the EC registers,
// the virtual keyboard and the host notifications together.
//
// Load returns a *Driver that owns every registration it made. All
// handlers the host invokes are closures over that Driver, there is no
// package level state apart from metrics.
package driver

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"github.com/u-root/clevo-wmi/pkg/acpi/event"
	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/hardware/wmi"
	"github.com/u-root/clevo-wmi/pkg/platform"
	"github.com/u-root/clevo-wmi/pkg/power"
)

var (
	ErrDeviceUnavailable   = errors.New("driver: firmware device unavailable")
	ErrRegistrationFailure = errors.New("driver: registration failed")
)

// State of the firmware notifications.
type State int32

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Host provides the registrations the driver makes at load time.
type Host interface {
	HasGUID(guid string) bool
	NewKeyboard(d uinput.Device) (uinput.Keyboard, error)
	RegisterSurface(s Surface) (unregister func(), err error)
	SubscribeEvents(f event.Filter, h event.Handler) (io.Closer, error)
	SubscribePower(h power.Handler) (unregister func(), err error)
}

// ReArmPolicy controls retries of a failed re-arm after resume. The
// zero value tries once.
type ReArmPolicy struct {
	Retries int
	Min     time.Duration
	Max     time.Duration
	Clock   clock.Clock
}

type Options struct {
	Platform *platform.Platform
	Firmware wmi.Caller
	EC       ec.Registers
	Host     Host
	// InitColor is the SET_LED argument applied at load, 1 for green
	// and 0 for yellow. Other values leave the LED alone.
	InitColor    int
	LegacyFanHex bool
	ReArm        ReArmPolicy
	Log          *zap.SugaredLogger
	// OnStateChange is called after every change of the arm state.
	OnStateChange func(State)
}

type Driver struct {
	p     *platform.Platform
	fw    wmi.Caller
	ec    ec.Registers
	host  Host
	log   *zap.SugaredLogger
	rearm ReArmPolicy
	onSt  func(State)

	layout ec.Layout
	kbd    uinput.Keyboard
	state  atomic.Int32
	// stateMu orders state changes with their publication, readers
	// only load state.
	stateMu sync.Mutex

	// hw serializes every firmware call and EC register access, the
	// firmware channel is not reentrant.
	hw sync.Mutex

	unwind []func() error
}

// Load brings the driver up. Any failure undoes the registrations made
// so far, in reverse order.
func Load(o Options) (*Driver, error) {
	if o.Platform == nil || o.Firmware == nil || o.EC == nil || o.Host == nil {
		return nil, errors.New("driver: incomplete options")
	}
	d := &Driver{
		p:      o.Platform,
		fw:     o.Firmware,
		ec:     o.EC,
		host:   o.Host,
		log:    o.Log,
		rearm:  o.ReArm,
		onSt:   o.OnStateChange,
		layout: o.Platform.EC,
	}
	if d.log == nil {
		d.log = zap.NewNop().Sugar()
	}
	if d.rearm.Clock == nil {
		d.rearm.Clock = clock.Default()
	}
	d.layout.LegacyFanHex = o.LegacyFanHex

	if err := d.load(o.InitColor); err != nil {
		d.teardown()
		return nil, err
	}
	d.log.Infof("Clevo WMI driver loaded for platform %s", d.p.Name)
	return d, nil
}

func (d *Driver) load(initColor int) error {
	dev := d.p.InputDevice
	dev.Keys = d.p.Keys()
	kbd, err := d.host.NewKeyboard(dev)
	if err != nil {
		d.log.Errorf("Failed to register input device: %v", err)
		return fmt.Errorf("%w: input device: %v", ErrRegistrationFailure, err)
	}
	d.kbd = kbd
	d.push(kbd.Close)

	unreg, err := d.host.RegisterSurface(d)
	if err != nil {
		d.log.Errorf("Failed to register control surface: %v", err)
		return fmt.Errorf("%w: control surface: %v", ErrRegistrationFailure, err)
	}
	d.push(func() error { unreg(); return nil })

	if initColor == 0 || initColor == 1 {
		d.call(d.p.Functions.SetLED, byte(initColor))
	} else {
		d.log.Warnf("Invalid init_color parameter %d! Ignoring...", initColor)
	}

	for _, guid := range []string{d.p.MethodGUID, d.p.EventGUID} {
		if !d.host.HasGUID(guid) {
			d.log.Errorf("Clevo WMI GUID %s not found", guid)
			return fmt.Errorf("%w: GUID %s", ErrDeviceUnavailable, guid)
		}
	}

	if err := d.enable(); err != nil {
		return fmt.Errorf("%w: enabling notifications: %w", ErrDeviceUnavailable, err)
	}

	sub, err := d.host.SubscribeEvents(event.Filter{GUID: d.p.EventGUID, NotifyID: d.p.NotifyID}, d.dispatch)
	if err != nil {
		d.log.Errorf("Could not register WMI notifier: %v", err)
		return fmt.Errorf("%w: event notifier: %v", ErrRegistrationFailure, err)
	}
	d.push(sub.Close)

	unpm, err := d.host.SubscribePower(d.handlePower)
	if err != nil {
		d.log.Errorf("Could not register power notifier: %v", err)
		return fmt.Errorf("%w: power notifier: %v", ErrRegistrationFailure, err)
	}
	d.push(func() error { unpm(); return nil })
	return nil
}

func (d *Driver) push(f func() error) {
	d.unwind = append(d.unwind, f)
}

func (d *Driver) teardown() error {
	var first error
	for i := len(d.unwind) - 1; i >= 0; i-- {
		if err := d.unwind[i](); err != nil {
			d.log.Warnf("Unregistering failed: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	d.unwind = nil
	d.setState(Disabled)
	return first
}

// Unload removes every registration, the input device goes last.
func (d *Driver) Unload() error {
	err := d.teardown()
	d.log.Info("Clevo WMI driver unloaded")
	return err
}

// State returns whether notifications are armed.
func (d *Driver) State() State {
	return State(d.state.Load())
}

func (d *Driver) setState(s State) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	if State(d.state.Swap(int32(s))) == s {
		return
	}
	if s == Enabled {
		notificationsArmed.Set(1)
	} else {
		notificationsArmed.Set(0)
	}
	if d.onSt != nil {
		d.onSt(s)
	}
}

// call issues a firmware call under the hardware lock.
func (d *Driver) call(fn wmi.Function, arg byte) (wmi.MethodResult, error) {
	start := time.Now()
	d.hw.Lock()
	v, err := d.fw.Call(fn, arg)
	d.hw.Unlock()
	firmwareLatency.WithLabelValues(fn.String()).Observe(time.Since(start).Seconds())
	firmwareCalls.WithLabelValues(fn.String(), resultLabel(err)).Inc()
	return v, err
}

// enable makes the firmware generate WMI events.
func (d *Driver) enable() error {
	v, err := d.call(d.p.Functions.EnableNotifications, 0)
	if err != nil {
		d.log.Errorf("Unable to enable WMI notifications: %v", err)
		d.setState(Disabled)
		return err
	}
	d.log.Debugf("Enabling WMI notifications yields: %#04x", uint32(v))
	d.setState(Enabled)
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wmi.ErrInvalidFunction):
		return "invalid_function"
	case errors.Is(err, wmi.ErrUnexpectedResultType):
		return "unexpected_type"
	}
	return "transport_failure"
}
