// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package control

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/u-root/clevo-wmi/pkg/network/web"
)

// Client talks to a running daemon.
type Client struct {
	HTTP *http.Client
	// Base is prepended to every endpoint, e.g. "http://unix".
	Base string
}

// Dial returns a Client for the daemon listening on addr, a unix socket
// path or a host:port.
func Dial(addr string) *Client {
	if web.Network(addr) == "tcp" {
		return &Client{HTTP: http.DefaultClient, Base: "http://" + addr}
	}
	return &Client{
		HTTP: &http.Client{Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", addr)
			},
		}},
		Base: "http://unix",
	}
}

func (c *Client) do(ctx context.Context, method, path, body string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(b)))
	}
	return strings.TrimSpace(string(b)), nil
}

// LED returns "GREEN" or "YELLOW".
func (c *Client) LED(ctx context.Context) (string, error) {
	return c.do(ctx, http.MethodGet, "/vga_led", "")
}

// SetLED writes color, of which only the first letter matters.
func (c *Client) SetLED(ctx context.Context, color string) error {
	_, err := c.do(ctx, http.MethodPut, "/vga_led", color)
	return err
}

func (c *Client) FanRPM(ctx context.Context) (uint32, error) {
	s, err := c.do(ctx, http.MethodGet, "/fan_rpm", "")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed fan speed %q: %v", s, err)
	}
	return uint32(v), nil
}

// Notify forwards systemd-sleep hook arguments.
func (c *Client) Notify(ctx context.Context, phase, kind string) error {
	_, err := c.do(ctx, http.MethodPost, "/power", phase+" "+kind)
	return err
}
