// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
)

// WebServer is the struct that holds all necessary information
// for a single listener on which web services are served on
type WebServer struct {
	Mux      *http.ServeMux
	Serv     *http.Server
	Listener net.Listener
}

// NewWebserver returns a pointer to a new WebServer struct and
// initialises it with a new http.ServeMux
func NewWebserver() *WebServer {
	return &WebServer{
		Mux: http.NewServeMux(),
	}
}

// Network returns "unix" for addresses that look like a path and "tcp"
// for everything else.
func Network(addr string) string {
	if strings.HasPrefix(addr, "/") || strings.HasPrefix(addr, "@") {
		return "unix"
	}
	return "tcp"
}

// SetServer fills the WebServer struct and starts a net.Listener on
// addr. A stale unix socket left by a previous run is removed first.
func (w *WebServer) SetServer(addr string) error {
	network := Network(addr)
	if network == "unix" && !strings.HasPrefix(addr, "@") {
		if err := os.Remove(addr); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	w.Serv = &http.Server{
		Addr:    addr,
		Handler: w.Mux,
	}
	var err error
	w.Listener, err = net.Listen(network, addr)
	if err != nil {
		return err
	}
	if network == "unix" && !strings.HasPrefix(addr, "@") {
		// Hooks and the CLI run as root, nobody else gets to poke the LED.
		if err := os.Chmod(addr, 0o600); err != nil {
			w.Listener.Close()
			return err
		}
	}
	return nil
}

// Serve blocks serving the mux until Shutdown is called.
func (w *WebServer) Serve() error {
	err := w.Serv.Serve(w.Listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for active requests until ctx
// expires.
func (w *WebServer) Shutdown(ctx context.Context) error {
	if w.Serv == nil {
		return nil
	}
	return w.Serv.Shutdown(ctx)
}
