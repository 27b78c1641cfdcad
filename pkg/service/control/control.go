// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package control serves the LED, fan and power hook endpoints over
// HTTP, normally on a root-only unix socket.
package control

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/u-root/clevo-wmi/pkg/driver"
	"github.com/u-root/clevo-wmi/pkg/power"
)

var ErrAlreadyMounted = errors.New("control: a surface is already mounted")

const (
	// Only the first byte is interpreted, a second one leaves room for
	// the newline of "echo g > ...".
	maxLEDWrite  = 2
	maxHookWrite = 128
)

type Server struct {
	lock    sync.RWMutex
	surface driver.Surface
	notify  func(power.Transition)
	log     *zap.SugaredLogger
}

// New returns a Server passing parsed hook requests to notify.
func New(notify func(power.Transition), log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{notify: notify, log: log}
}

// Mount makes s answer LED and fan requests. Until then they get 503.
func (s *Server) Mount(surf driver.Surface) (func(), error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.surface != nil {
		return nil, ErrAlreadyMounted
	}
	s.surface = surf
	return func() {
		s.lock.Lock()
		s.surface = nil
		s.lock.Unlock()
	}, nil
}

// Register adds the endpoints to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/vga_led", s.handleLED)
	mux.HandleFunc("/fan_rpm", s.handleFan)
	mux.HandleFunc("/power", s.handlePower)
}

func (s *Server) mounted(w http.ResponseWriter) driver.Surface {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.surface == nil {
		http.Error(w, "driver not loaded", http.StatusServiceUnavailable)
	}
	return s.surface
}

func (s *Server) handleLED(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		surf := s.mounted(w)
		if surf == nil {
			return
		}
		c, err := surf.LEDColor()
		if err != nil {
			s.log.Warnf("Reading VGA_LED failed: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, "%s\n", c)
	case http.MethodPut, http.MethodPost:
		surf := s.mounted(w)
		if surf == nil {
			return
		}
		p, err := io.ReadAll(io.LimitReader(r.Body, maxLEDWrite))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		surf.WriteLED(p)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	surf := s.mounted(w)
	if surf == nil {
		return
	}
	rpm, err := surf.FanRPM()
	if err != nil {
		s.log.Warnf("Reading fan speed failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "%d\n", rpm)
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, err := io.ReadAll(io.LimitReader(r.Body, maxHookWrite))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := strings.Fields(string(p))
	if len(f) != 2 {
		http.Error(w, "expected \"<phase> <kind>\"", http.StatusBadRequest)
		return
	}
	t, err := power.ParseHook(f[0], f[1])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Debugf("Power hook %s %s: %v", f[0], f[1], t)
	if s.notify != nil {
		s.notify(t)
	}
	w.WriteHeader(http.StatusNoContent)
}
