// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"

	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"go.uber.org/zap"
)

const insertSpot = "INSERT INTO spots (callsign, time, frequency, mode, locator, snr, country, country_code, band) " +
	"VALUES (?,?,?,?,?,?,?,?,?) USING TTL ?"

var serverClosed = errors.New("server is closed")

type executor interface {
	Insert(ctx context.Context, spots []model.Spot, ttl int) error
	Close()
	Ping() error
}

type cassandraExecutor struct {
	session *gocql.Session
	logger  *zap.Logger
}

func connect(clusterConfig *gocql.ClusterConfig, logger *zap.Logger) (executor, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, logger: logger}, nil
}

// Insert writes spots as one unlogged batch, since rows land in different
// partitions.
func (s *cassandraExecutor) Insert(ctx context.Context, spots []model.Spot, ttl int) error {
	batch := s.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	for _, spot := range spots {
		batch.Query(insertSpot,
			spot.Callsign, spot.Time.Time, spot.Frequency, spot.Mode, spot.Locator,
			spot.SNR, spot.Country, spot.CountryCode, spot.Band, ttl,
		)
	}
	return s.session.ExecuteBatch(batch)
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return serverClosed
	}
	return nil
}
