// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	ConnectedGauge    = "pskr_upstream_connected"
	SubscriptionGauge = "pskr_upstream_subscriptions"
	MessageCounter    = "pskr_upstream_messages_total"
)

// ProvideMetrics returns the metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: ConnectedGauge,
				Help: "1 while the broker connection is up.",
			},
		),
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: SubscriptionGauge,
				Help: "Number of distinct topics referenced by sessions.",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: MessageCounter,
				Help: "Number of messages delivered by the broker.",
			},
		),
	)
}

// Measures holds the upstream metrics. Nil fields are ignored.
type Measures struct {
	fx.In
	Connected     prometheus.Gauge   `name:"pskr_upstream_connected"`
	Subscriptions prometheus.Gauge   `name:"pskr_upstream_subscriptions"`
	Messages      prometheus.Counter `name:"pskr_upstream_messages_total"`
}
