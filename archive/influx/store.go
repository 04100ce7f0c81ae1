// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package influx

import (
	"context"

	"emperror.dev/errors"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
)

const (
	defaultMeasurement = "spot"
	defaultBucket      = "pskr"
)

var errNoURL = errors.New("influx url is required")

// Config is the `archive.influx` section.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	UseGzip     bool
}

// Store writes spots as InfluxDB points tagged by band, mode and country.
type Store struct {
	client      influxdb2.Client
	write       api.WriteAPIBlocking
	measurement string
}

// New builds a Store. No connection is made until the first write.
func New(config Config) (*Store, error) {
	if config.URL == "" {
		return nil, errNoURL
	}
	if config.Bucket == "" {
		config.Bucket = defaultBucket
	}
	if config.Measurement == "" {
		config.Measurement = defaultMeasurement
	}

	opt := influxdb2.DefaultOptions().SetUseGZip(config.UseGzip)
	c := influxdb2.NewClientWithOptions(config.URL, config.Token, opt)
	return &Store{
		client:      c,
		write:       c.WriteAPIBlocking(config.Org, config.Bucket),
		measurement: config.Measurement,
	}, nil
}

func (s *Store) Name() string {
	return "influx"
}

// Point converts spot to a point of measurement.
func Point(measurement string, spot model.Spot) *write.Point {
	tags := map[string]string{
		"callsign": spot.Callsign,
		"mode":     spot.Mode,
		"country":  spot.Country,
	}
	if spot.Band != "" {
		tags["band"] = spot.Band
	}
	fields := map[string]interface{}{
		"frequency": spot.Frequency,
		"snr":       spot.SNR,
		"locator":   spot.Locator,
	}
	return write.NewPoint(measurement, tags, fields, spot.Time.Time)
}

func (s *Store) Write(ctx context.Context, spots []model.Spot) error {
	if len(spots) == 0 {
		return nil
	}
	points := make([]*write.Point, len(spots))
	for i, spot := range spots {
		points[i] = Point(s.measurement, spot)
	}
	if err := s.write.WritePoint(ctx, points...); err != nil {
		return errors.WrapWithDetails(err, "influx write failed", "count", len(spots))
	}
	return nil
}

func (s *Store) Close() error {
	s.client.Close()
	return nil
}
