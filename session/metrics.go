// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ActiveGauge    = "pskr_sessions_active"
	StartedCounter = "pskr_sessions_started_total"
	StoppedCounter = "pskr_sessions_stopped_total"
	ReapedCounter  = "pskr_sessions_reaped_total"
	DrainedCounter = "pskr_session_spots_drained_total"
)

// Labels
const (
	ReasonLabel = "reason"
)

// Label Values
const (
	ClientReason   = "client"
	IdleReason     = "idle"
	ShutdownReason = "shutdown"
)

// ProvideMetrics returns the metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: ActiveGauge,
				Help: "Number of live sessions.",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: StartedCounter,
				Help: "Number of sessions started.",
			},
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: StoppedCounter,
				Help: "Number of sessions stopped, by reason.",
			},
			ReasonLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: ReapedCounter,
				Help: "Number of sessions stopped for not being pulled.",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: DrainedCounter,
				Help: "Number of spots handed to clients.",
			},
		),
	)
}

// Measures holds the session metrics. Nil fields are ignored.
type Measures struct {
	fx.In
	Active  prometheus.Gauge       `name:"pskr_sessions_active"`
	Started prometheus.Counter     `name:"pskr_sessions_started_total"`
	Stopped *prometheus.CounterVec `name:"pskr_sessions_stopped_total"`
	Reaped  prometheus.Counter     `name:"pskr_sessions_reaped_total"`
	Drained prometheus.Counter     `name:"pskr_session_spots_drained_total"`
}
