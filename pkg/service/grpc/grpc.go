// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grpc exports the notification arm state as a gRPC health
// status so supervisors can probe the daemon.
package grpc

import (
	"net"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NotificationsService is SERVING while firmware notifications are armed.
const NotificationsService = "clevo.wmi.Notifications"

type Server struct {
	gServ  *grpc.Server
	health *health.Server
	log    *zap.SugaredLogger
}

func NewServer(log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	gServ := grpc.NewServer(
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(gServ, h)
	reflection.Register(gServ)
	grpc_prometheus.Register(gServ)
	h.SetServingStatus(NotificationsService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Server{gServ: gServ, health: h, log: log}
}

// SetArmed updates the health of NotificationsService.
func (s *Server) SetArmed(armed bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if armed {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.log.Debugf("%s health: %v", NotificationsService, st)
	s.health.SetServingStatus(NotificationsService, st)
}

// Serve blocks until Stop is called.
func (s *Server) Serve(l net.Listener) error {
	s.log.Infof("Serving gRPC on %v", l.Addr())
	return s.gServ.Serve(l)
}

// Stop reports every service as not serving and drains open calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.gServ.GracefulStop()
}
