// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	DroppedCounter        = "pskr_archive_dropped_total"
	WriteCounter          = "pskr_archive_writes_total"
	WrittenCounter        = "pskr_archive_spots_written_total"
	WriteDurationSeconds  = "pskr_archive_write_duration_seconds"
	ConsumedCapacityUnits = "pskr_archive_consumed_capacity_units_total"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the metrics relevant to this package.
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: DroppedCounter,
				Help: "Number of spots dropped because the archive queue was full.",
			},
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCounter,
				Help: "Number of batch writes to the archive, by outcome.",
			},
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: WrittenCounter,
				Help: "Number of spots written to the archive.",
			},
		),
		touchstone.Histogram(
			prometheus.HistogramOpts{
				Name:    WriteDurationSeconds,
				Help:    "A histogram of archive write latencies.",
				Buckets: []float64{0.0625, 0.125, .25, .5, 1, 5, 10},
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: ConsumedCapacityUnits,
				Help: "DynamoDB capacity units consumed by archive writes.",
			},
		),
	)
}

// Measures holds the archive metrics. Nil fields are ignored.
type Measures struct {
	fx.In
	Dropped          prometheus.Counter     `name:"pskr_archive_dropped_total"`
	Writes           *prometheus.CounterVec `name:"pskr_archive_writes_total"`
	Written          prometheus.Counter     `name:"pskr_archive_spots_written_total"`
	WriteDuration    prometheus.Observer    `name:"pskr_archive_write_duration_seconds"`
	ConsumedCapacity prometheus.Counter     `name:"pskr_archive_consumed_capacity_units_total"`
}
