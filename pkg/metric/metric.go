// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricOpts contains naming pieces of the exposed metric
type MetricOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

// StartMetrics adds the metrics handler to a http.ServeMux
func StartMetrics(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
}

// Counter creates, registers and returns a prometheus.CounterVec
func Counter(opts MetricOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	}, labels)
	prometheus.MustRegister(c)
	return c
}

// Gauge creates, registers and returns a prometheus.Gauge
func Gauge(opts MetricOpts) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	})
	prometheus.MustRegister(g)
	return g
}

// Histogram creates, registers and returns a prometheus.HistogramVec
func Histogram(opts MetricOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Subsystem: opts.Subsystem,
		Name:      opts.Name,
		Help:      help(opts),
	}, labels)
	prometheus.MustRegister(h)
	return h
}

func help(opts MetricOpts) string {
	if opts.Help != "" {
		return opts.Help
	}
	return prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
}
