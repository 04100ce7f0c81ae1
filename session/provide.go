// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"

	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigKey is the configuration section read by Provide.
const ConfigKey = "sessions"

type registryIn struct {
	fx.In
	Viper     *viper.Viper
	Acquirer  upstream.Acquirer
	Measures  Measures
	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
}

// Provide builds the Registry and, when an idle timeout is configured,
// runs a Reaper for the life of the application.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			func(in registryIn) (*Registry, error) {
				var c Config
				if err := in.Viper.UnmarshalKey(ConfigKey, &c); err != nil {
					return nil, err
				}

				r, err := NewRegistry(c, in.Acquirer, in.Measures, in.Logger)
				if err != nil {
					return nil, err
				}

				in.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						r.StopAll()
						return nil
					},
				})

				reaper, err := NewReaper(r)
				if err != nil {
					in.Logger.Info("idle session reaper disabled")
					return r, nil
				}
				in.Lifecycle.Append(fx.Hook{
					OnStart: reaper.Start,
					OnStop:  reaper.Stop,
				})
				return r, nil
			},
		),
	)
}
