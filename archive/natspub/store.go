// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package natspub

import (
	"context"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/nats-io/nats.go"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
)

const (
	defaultSubjectPrefix = "pskr.spots"
	defaultFlushTimeout  = 2 * time.Second
)

var errNoURL = errors.New("nats url is required")

// Config is the `archive.nats` section.
type Config struct {
	URL           string
	Name          string
	SubjectPrefix string
	FlushTimeout  time.Duration
}

type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
	Close()
}

// Store republishes spots on NATS as <prefix>.<band>.<mode>.<callsign>.
type Store struct {
	conn   publisher
	config Config
	logger *zap.Logger
}

// New connects to the NATS server in config.
func New(config Config, logger *zap.Logger) (*Store, error) {
	if config.URL == "" {
		return nil, errNoURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Name == "" {
		config.Name = "pskr-bridge"
	}

	nc, err := nats.Connect(config.URL,
		nats.Name(config.Name),
		nats.MaxReconnects(-1),
		nats.DisconnectHandler(func(nc *nats.Conn) {
			logger.Warn("nats disconnected", zap.Error(nc.LastError()))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, errors.WrapWithDetails(err, "failed to connect to nats", "url", config.URL)
	}
	return newStore(nc, config, logger), nil
}

func newStore(conn publisher, config Config, logger *zap.Logger) *Store {
	if config.SubjectPrefix == "" {
		config.SubjectPrefix = defaultSubjectPrefix
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = defaultFlushTimeout
	}
	return &Store{conn: conn, config: config, logger: logger}
}

func (s *Store) Name() string {
	return "nats"
}

// token makes v usable as a single subject token.
func token(v string) string {
	if v == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, v)
}

// Subject returns the subject spot is published on.
func (s *Store) Subject(spot model.Spot) string {
	return s.config.SubjectPrefix + "." + token(spot.Band) + "." + token(spot.Mode) + "." + token(spot.Callsign)
}

func (s *Store) Write(ctx context.Context, spots []model.Spot) error {
	for _, spot := range spots {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(spot)
		if err != nil {
			return err
		}
		if err := s.conn.Publish(s.Subject(spot), data); err != nil {
			return errors.WrapWithDetails(err, "nats publish failed", "callsign", spot.Callsign)
		}
	}
	if len(spots) == 0 {
		return nil
	}

	timeout := s.config.FlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < timeout {
			timeout = left
		}
	}
	return s.conn.FlushTimeout(timeout)
}

func (s *Store) Close() error {
	err := s.conn.Drain()
	s.conn.Close()
	return err
}
