// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics exports Prometheus metrics about the requests a
// restclient.Client executes. Install a Collector's handlers into the
// client's HandlerGroup:
//
//	handlers := &restclient.HandlerGroup{}
//	c := metrics.NewCollector("myapp", prometheus.DefaultRegisterer)
//	c.Install(handlers)
//	client := &restclient.Client{Handlers: handlers}
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	restclient "github.com/rest-client/rest-client-sub000"
	"github.com/rest-client/rest-client-sub000/request"
)

// A Collector holds the client metrics.
type Collector struct {
	// Attempts counts wire exchanges by method and status code. An
	// exchange that ended without a response has code "error".
	Attempts *prometheus.CounterVec
	// Redirects counts followed redirects.
	Redirects prometheus.Counter
	// Timeouts counts wire exchanges that timed out.
	Timeouts prometheus.Counter
	// Duration observes the duration of whole calls, redirects
	// included, by method and outcome.
	Duration *prometheus.HistogramVec
	// ResponseSize observes decoded response body sizes.
	ResponseSize prometheus.Histogram
}

// NewCollector creates the client metrics under namespace and
// registers them with reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restclient_requests_total",
				Help:      "Total number of wire requests sent",
			},
			[]string{"method", "code"},
		),
		Redirects: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restclient_redirects_total",
				Help:      "Total number of redirects followed",
			},
		),
		Timeouts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "restclient_timeouts_total",
				Help:      "Total number of wire requests that timed out",
			},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "restclient_request_duration_seconds",
				Help:      "Call duration in seconds, redirects included",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "outcome"},
		),
		ResponseSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "restclient_response_size_bytes",
				Help:      "Decoded response body size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
		),
	}
}

// Install adds the collector's handlers to g.
func (c *Collector) Install(g *restclient.HandlerGroup) {
	g.PushBack(restclient.AfterAttempt, restclient.HandlerFunc(c.afterAttempt))
	g.PushBack(restclient.AfterAttemptTimeout, restclient.HandlerFunc(c.afterAttemptTimeout))
	g.PushBack(restclient.BeforeRedirect, restclient.HandlerFunc(c.beforeRedirect))
	g.PushBack(restclient.AfterExecutionEnd, restclient.HandlerFunc(c.afterExecutionEnd))
}

func (c *Collector) afterAttempt(_ restclient.Event, e *request.Execution) {
	code := "error"
	if e.Record != nil {
		code = strconv.Itoa(e.Record.Code)
		c.ResponseSize.Observe(float64(e.Record.Body.Len()))
	}
	c.Attempts.WithLabelValues(e.Spec.Method().String(), code).Inc()
}

func (c *Collector) afterAttemptTimeout(restclient.Event, *request.Execution) {
	c.Timeouts.Inc()
}

func (c *Collector) beforeRedirect(restclient.Event, *request.Execution) {
	c.Redirects.Inc()
}

func (c *Collector) afterExecutionEnd(_ restclient.Event, e *request.Execution) {
	outcome := "success"
	if e.Err != nil {
		outcome = "error"
	}
	c.Duration.WithLabelValues(e.Spec.Method().String(), outcome).Observe(e.Duration().Seconds())
}
