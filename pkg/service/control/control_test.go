// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/u-root/clevo-wmi/pkg/hardware/ec"
	"github.com/u-root/clevo-wmi/pkg/power"
)

type fakeSurface struct {
	color  ec.LEDColor
	rpm    uint32
	err    error
	writes []string
}

func (f *fakeSurface) LEDColor() (ec.LEDColor, error) { return f.color, f.err }
func (f *fakeSurface) FanRPM() (uint32, error)        { return f.rpm, f.err }
func (f *fakeSurface) WriteLED(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Server, *[]power.Transition) {
	var seen []power.Transition
	s := New(func(tr power.Transition) { seen = append(seen, tr) }, nil)
	mux := http.NewServeMux()
	s.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, s, &seen
}

func request(t *testing.T, method, url, body string) (int, string) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestUnmounted(t *testing.T) {
	ts, _, _ := newTestServer(t)
	for _, path := range []string{"/vga_led", "/fan_rpm"} {
		if code, _ := request(t, http.MethodGet, ts.URL+path, ""); code != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, expected 503", path, code)
		}
	}
}

func TestMountTwice(t *testing.T) {
	s := New(nil, nil)
	unmount, err := s.Mount(&fakeSurface{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Mount(&fakeSurface{}); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("Second mount returned %v", err)
	}
	unmount()
	if _, err := s.Mount(&fakeSurface{}); err != nil {
		t.Errorf("Mount after unmount: %v", err)
	}
}

func TestLED(t *testing.T) {
	ts, s, _ := newTestServer(t)
	surf := &fakeSurface{color: ec.Yellow}
	s.Mount(surf)

	code, body := request(t, http.MethodGet, ts.URL+"/vga_led", "")
	if code != http.StatusOK || body != "YELLOW\n" {
		t.Errorf("GET /vga_led = %d %q", code, body)
	}
	surf.color = ec.Green
	if _, body := request(t, http.MethodGet, ts.URL+"/vga_led", ""); body != "GREEN\n" {
		t.Errorf("GET /vga_led = %q", body)
	}

	for _, in := range []string{"g\n", "yellow", "x"} {
		if code, _ := request(t, http.MethodPut, ts.URL+"/vga_led", in); code != http.StatusNoContent {
			t.Errorf("PUT %q = %d, expected 204", in, code)
		}
	}
	want := []string{"g\n", "ye", "x"}
	if strings.Join(surf.writes, "|") != strings.Join(want, "|") {
		t.Errorf("Surface saw %q, expected %q", surf.writes, want)
	}

	if code, _ := request(t, http.MethodDelete, ts.URL+"/vga_led", ""); code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /vga_led = %d", code)
	}
}

func TestFan(t *testing.T) {
	ts, s, _ := newTestServer(t)
	surf := &fakeSurface{rpm: 512}
	s.Mount(surf)
	code, body := request(t, http.MethodGet, ts.URL+"/fan_rpm", "")
	if code != http.StatusOK || body != "512\n" {
		t.Errorf("GET /fan_rpm = %d %q", code, body)
	}
	surf.err = ec.ErrFanParse
	if code, _ := request(t, http.MethodGet, ts.URL+"/fan_rpm", ""); code != http.StatusInternalServerError {
		t.Errorf("GET /fan_rpm with parse failure = %d", code)
	}
}

func TestPowerHook(t *testing.T) {
	ts, _, seen := newTestServer(t)
	tests := []struct {
		body string
		code int
	}{
		{"pre suspend", http.StatusNoContent},
		{"post suspend\n", http.StatusNoContent},
		{"post hibernate", http.StatusNoContent},
		{"post", http.StatusBadRequest},
		{"later suspend", http.StatusBadRequest},
		{"post nap", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code, _ := request(t, http.MethodPost, ts.URL+"/power", tt.body); code != tt.code {
			t.Errorf("POST /power %q = %d, expected %d", tt.body, code, tt.code)
		}
	}
	want := []power.Transition{power.PrepareSuspend, power.PostSuspend, power.PostHibernation}
	if len(*seen) != len(want) {
		t.Fatalf("Notified %v, expected %v", *seen, want)
	}
	for i := range want {
		if (*seen)[i] != want[i] {
			t.Errorf("Transition %d is %v, expected %v", i, (*seen)[i], want[i])
		}
	}
}

func TestClient(t *testing.T) {
	ts, s, seen := newTestServer(t)
	surf := &fakeSurface{color: ec.Green, rpm: 2048}
	s.Mount(surf)
	c := &Client{HTTP: ts.Client(), Base: ts.URL}
	ctx := context.Background()

	if led, err := c.LED(ctx); err != nil || led != "GREEN" {
		t.Errorf("LED() = %q, %v", led, err)
	}
	if err := c.SetLED(ctx, "yellow"); err != nil {
		t.Errorf("SetLED: %v", err)
	}
	if rpm, err := c.FanRPM(ctx); err != nil || rpm != 2048 {
		t.Errorf("FanRPM() = %d, %v", rpm, err)
	}
	if err := c.Notify(ctx, "post", "suspend"); err != nil || len(*seen) != 1 {
		t.Errorf("Notify: %v, seen %v", err, *seen)
	}
	if err := c.Notify(ctx, "post", "nap"); err == nil {
		t.Error("Expected error for unknown sleep kind")
	}
}
