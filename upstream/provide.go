// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"

	"emperror.dev/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section read by Provide.
const ConfigKey = "upstream"

var errUnknownMode = errors.New("unknown upstream mode")

type clientIn struct {
	fx.In
	Viper     *viper.Viper
	Logger    *zap.Logger
	Measures  Measures
	Lifecycle fx.Lifecycle
}

type acquirerIn struct {
	fx.In
	Client    *Client
	Config    Config
	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
}

// Provide wires the broker connection and the Acquirer sessions use.
// The Acquirer depends on the configured mode.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			func(in clientIn) (Config, error) {
				var c Config
				if err := in.Viper.UnmarshalKey(ConfigKey, &c); err != nil {
					return Config{}, err
				}
				c.setDefaults()
				if c.Mode != PerSessionMode && c.Mode != SharedMode {
					return Config{}, errors.WithDetails(errUnknownMode, "mode", c.Mode)
				}
				return c, nil
			},
			func(in clientIn, c Config) *Client {
				client := NewClient(c, in.Measures, in.Logger)
				in.Lifecycle.Append(fx.Hook{
					OnStart: func(context.Context) error {
						if err := client.Connect(); err != nil {
							// paho keeps retrying, sessions are replayed on connect
							in.Logger.Warn("broker not reachable at startup", zap.String("broker", c.Broker), zap.Error(err))
						}
						return nil
					},
					OnStop: func(context.Context) error {
						client.Disconnect()
						return nil
					},
				})
				return client
			},
			func(in acquirerIn) Acquirer {
				if in.Config.Mode != SharedMode {
					return in.Client
				}

				shared := NewShared(in.Client, in.Config.SharedPattern)
				in.Lifecycle.Append(fx.Hook{
					OnStart: func(context.Context) error {
						in.Logger.Info("using shared subscription", zap.String("topic", shared.Pattern()))
						return shared.Open()
					},
					OnStop: func(context.Context) error {
						return shared.Close()
					},
				})
				return shared
			},
		),
	)
}
