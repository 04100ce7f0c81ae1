// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"

	"github.com/rokhmanov/mcp-server-pskreporter/archive/cassandra"
	"github.com/rokhmanov/mcp-server-pskreporter/archive/dynamodb"
	"github.com/rokhmanov/mcp-server-pskreporter/archive/influx"
	"github.com/rokhmanov/mcp-server-pskreporter/archive/natspub"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section read by Provide.
const ConfigKey = "archive"

// Configs is the `archive` section. The first configured backend, in field
// order, is used.
type Configs struct {
	Worker   WorkerConfig
	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
	Influx   *influx.Config
	NATS     *natspub.Config
}

type SetupIn struct {
	fx.In
	Viper    *viper.Viper
	Measures Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

// Provide builds the archive Worker. When no backend is configured the
// Worker is nil and nothing is archived.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			SetupWorker,
		),
	)
}

// SetupStore builds the first configured backend, or returns nil.
func SetupStore(ctx context.Context, configs Configs, measures Measures, logger *zap.Logger) (Store, error) {
	if configs.Dynamo != nil {
		logger.Info("using dynamodb archive implementation")
		return dynamodb.New(ctx, *configs.Dynamo, func(units float64) {
			if measures.ConsumedCapacity != nil {
				measures.ConsumedCapacity.Add(units)
			}
		}, logger)
	}
	if configs.Yugabyte != nil {
		logger.Info("using yugabyte archive implementation")
		return cassandra.New(*configs.Yugabyte, logger)
	}
	if configs.Influx != nil {
		logger.Info("using influx archive implementation")
		return influx.New(*configs.Influx)
	}
	if configs.NATS != nil {
		logger.Info("using nats archive implementation")
		return natspub.New(*configs.NATS, logger)
	}
	logger.Info("spot archive disabled")
	return nil, nil
}

func SetupWorker(in SetupIn) (*Worker, error) {
	var configs Configs
	if err := in.Viper.UnmarshalKey(ConfigKey, &configs); err != nil {
		return nil, err
	}

	s, err := SetupStore(context.Background(), configs, in.Measures, in.Logger)
	if err != nil || s == nil {
		return nil, err
	}

	w, err := NewWorker(configs.Worker, s, in.Measures, in.Logger)
	if err != nil {
		return nil, err
	}
	in.LC.Append(fx.Hook{
		OnStart: w.Start,
		OnStop:  w.Stop,
	})
	return w, nil
}
