// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/u-root/clevo-wmi/pkg/acpi/event"
	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/hardware/uinput"
	"github.com/u-root/clevo-wmi/pkg/power"
	"github.com/u-root/clevo-wmi/pkg/service/control"
)

type nopCloser struct{ closed *bool }

func (n nopCloser) Close() error { *n.closed = true; return nil }

type fakeSurface struct{}

func (fakeSurface) LEDColor() (ec.LEDColor, error) { return ec.Green, nil }
func (fakeSurface) FanRPM() (uint32, error)        { return 0, nil }
func (fakeSurface) WriteLED(p []byte) (int, error) { return len(p), nil }

func TestHasGUID(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("/sys/bus/wmi/devices/ABBC0F6B-8EA1-11D1-00A0-C90629100000-1", 0o755)
	h := New(Options{Fs: fs})
	if !h.HasGUID("abbc0f6b-8ea1-11d1-00a0-c90629100000") {
		t.Error("Expected event GUID to be present")
	}
	if h.HasGUID("ABBC0F6D-8EA1-11D1-00A0-C90629100000") {
		t.Error("Unexpected method GUID")
	}
}

func TestKeyboard(t *testing.T) {
	h := New(Options{Fs: afero.NewMemMapFs(), UinputPath: "/dev/test-uinput"})
	var path string
	fake := &uinput.FakeKeyboard{}
	h.openKeyboard = func(p string, _ uinput.Device) (uinput.Keyboard, error) {
		path = p
		return fake, nil
	}
	k, err := h.NewKeyboard(uinput.Device{Name: "test"})
	if err != nil || k != fake {
		t.Fatalf("NewKeyboard = %v, %v", k, err)
	}
	if path != "/dev/test-uinput" {
		t.Errorf("Opened %q", path)
	}
}

func TestSurfaceMount(t *testing.T) {
	c := control.New(nil, nil)
	h := New(Options{Fs: afero.NewMemMapFs(), Control: c})
	unmount, err := h.RegisterSurface(fakeSurface{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Mount(fakeSurface{}); err == nil {
		t.Error("Surface not mounted on the control server")
	}
	unmount()
	if _, err := c.Mount(fakeSurface{}); err != nil {
		t.Errorf("Surface still mounted after unregister: %v", err)
	}
}

func TestEvents(t *testing.T) {
	h := New(Options{Fs: afero.NewMemMapFs()})
	closed := false
	var got event.Filter
	h.subscribe = func(f event.Filter, _ event.Handler, _ *zap.SugaredLogger) (io.Closer, error) {
		got = f
		return nopCloser{&closed}, nil
	}
	sub, err := h.SubscribeEvents(event.Filter{NotifyID: 0xD0}, func(event.Event) {})
	if err != nil {
		t.Fatal(err)
	}
	if got.NotifyID != 0xD0 {
		t.Errorf("Subscribed with %+v", got)
	}
	sub.Close()
	if !closed {
		t.Error("Subscription not closed")
	}
}

func TestPowerChain(t *testing.T) {
	n := power.NewNotifier()
	h := New(Options{Fs: afero.NewMemMapFs(), Power: n})
	var seen []power.Transition
	unreg, err := h.SubscribePower(func(t power.Transition) { seen = append(seen, t) })
	if err != nil {
		t.Fatal(err)
	}
	n.Notify(power.PostSuspend)
	unreg()
	n.Notify(power.PostRestore)
	if len(seen) != 1 || seen[0] != power.PostSuspend {
		t.Errorf("Saw %v, expected only PM_POST_SUSPEND", seen)
	}
}
