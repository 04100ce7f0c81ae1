// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	DispatchCounter = "pskr_dispatch_events_total"
	DroppedCounter  = "pskr_dispatch_dropped_total"
	DeliveryCounter = "pskr_dispatch_deliveries_total"
	EvictionCounter = "pskr_dispatch_evictions_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	MatchedOutcome   = "matched"
	UnmatchedOutcome = "unmatched"
	MalformedOutcome = "malformed"
	PanicOutcome     = "panic"
)

// ProvideMetrics returns the metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: DispatchCounter,
				Help: "Number of normalized events, by whether any session matched.",
			},
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: DroppedCounter,
				Help: "Number of events dropped before reaching any session.",
			},
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: DeliveryCounter,
				Help: "Number of spots appended to session buffers.",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: EvictionCounter,
				Help: "Number of buffered spots evicted by newer ones.",
			},
		),
	)
}

// Measures holds the dispatch metrics. Nil fields are ignored.
type Measures struct {
	fx.In
	Dispatched *prometheus.CounterVec `name:"pskr_dispatch_events_total"`
	Dropped    *prometheus.CounterVec `name:"pskr_dispatch_dropped_total"`
	Deliveries prometheus.Counter     `name:"pskr_dispatch_deliveries_total"`
	Evicted    prometheus.Counter     `name:"pskr_dispatch_evictions_total"`
}

func (r *Router) count(c *prometheus.CounterVec, outcome string) {
	if c != nil {
		c.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()
	}
}
