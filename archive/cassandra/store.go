// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"time"

	"emperror.dev/emperror"
	"github.com/gocql/gocql"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"go.uber.org/zap"
)

const (
	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "pskr"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
	defaultPingInterval          = 5 * time.Second
)

var errNoHosts = errors.New("number of hosts must be > 0")

// Config is the `archive.yugabyte` section.
type Config struct {
	// Hosts to connect to. Must have at least one
	Hosts []string

	// Database aka Keyspace for cassandra
	Database string

	OpTimeout time.Duration

	// SSLRootCert, SSLKey and SSLCert must all be set to enable tls.
	SSLRootCert string
	SSLKey      string
	SSLCert     string

	// EnableHostVerification verifies the hostname and server cert.
	EnableHostVerification bool

	// Username and Password authenticate into the cluster. Both are required.
	Username string
	Password string

	// NumRetries for connecting to the db
	NumRetries int

	// WaitTimeMult multiplies the wait before each connect retry
	WaitTimeMult time.Duration

	MaxConnsPerHost int

	// TTL of every row. Zero keeps rows forever.
	TTL time.Duration

	PingInterval time.Duration
}

// Store writes spots to a Cassandra or YugabyteDB keyspace.
type Store struct {
	client executor
	config Config
	logger *zap.Logger
	ticker *time.Ticker
}

// New connects to the cluster and starts pinging it in the background.
func New(config Config, logger *zap.Logger) (*Store, error) {
	if len(config.Hosts) == 0 {
		return nil, errNoHosts
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	validateConfig(&config)

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	client, err := connect(clusterConfig, logger)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		client, err = connect(clusterConfig, logger)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperror.WrapWith(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	s := newStore(client, config, logger)
	s.ticker = doEvery(config.PingInterval, func(time.Time) {
		if err := s.Ping(); err != nil {
			logger.Error("ping failed", zap.Error(err))
		}
	})
	return s, nil
}

func newStore(client executor, config Config, logger *zap.Logger) *Store {
	return &Store{client: client, config: config, logger: logger}
}

func doEvery(d time.Duration, f func(time.Time)) *time.Ticker {
	ticker := time.NewTicker(d)
	go func() {
		for x := range ticker.C {
			f(x)
		}
	}()
	return ticker
}

func (s *Store) Name() string {
	return "yugabyte"
}

func (s *Store) Write(ctx context.Context, spots []model.Spot) error {
	if len(spots) == 0 {
		return nil
	}
	if err := s.client.Insert(ctx, spots, int(s.config.TTL/time.Second)); err != nil {
		return emperror.WrapWith(err, "Inserting spots failed", "count", len(spots))
	}
	return nil
}

// Ping verifies that the connection is still good.
func (s *Store) Ping() error {
	if err := s.client.Ping(); err != nil {
		return emperror.WrapWith(err, "Pinging connection failed")
	}
	return nil
}

func (s *Store) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.client.Close()
	return nil
}

func validateConfig(config *Config) {
	if config.OpTimeout <= 0 {
		config.OpTimeout = defaultOpTimeout
	}
	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
	if config.TTL < 0 {
		config.TTL = 0
	}
}
