// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"log"
	"net"
	"os"
	"testing"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	pt "github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var (
	addr = ""
	srv  *Server
)

func startServer() {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		log.Fatalf("net.Listen: %v", err)
	}
	addr = l.Addr().String()
	srv = NewServer(nil)
	go srv.Serve(l)
}

func newClient(t *testing.T) healthpb.HealthClient {
	c, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		t.Fatalf("grpc.Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return healthpb.NewHealthClient(c)
}

func TestMain(m *testing.M) {
	startServer()
	os.Exit(m.Run())
}

func check(t *testing.T, c healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	r, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: NotificationsService})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return r.Status
}

func TestArmedHealth(t *testing.T) {
	c := newClient(t)
	srv.SetArmed(false)
	if st := check(t, c); st != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING while disarmed, got %v", st)
	}
	srv.SetArmed(true)
	if st := check(t, c); st != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING while armed, got %v", st)
	}
}

func TestUnknownService(t *testing.T) {
	c := newClient(t)
	_, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "nope"})
	if err == nil {
		t.Error("Expected NotFound for unknown service")
	}
}

func TestMetrics(t *testing.T) {
	c := newClient(t)
	check(t, c)
	if n := pt.CollectAndCount(grpc_prometheus.DefaultServerMetrics); n == 0 {
		t.Error("Expected handled call metrics")
	}
}
