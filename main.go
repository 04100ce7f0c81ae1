// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rokhmanov/mcp-server-pskreporter/api"
	"github.com/rokhmanov/mcp-server-pskreporter/archive"
	"github.com/rokhmanov/mcp-server-pskreporter/dispatch"
	"github.com/rokhmanov/mcp-server-pskreporter/dxcc"
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/candlelight"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	applicationName = "pskr-bridge"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		arrange.ForViper(v),
		fx.Supply(logger, v),
		provideMetrics(),
		dxcc.Provide(),
		upstream.Provide(),
		session.Provide(),
		archive.Provide(),
		dispatch.Provide(),
		api.ProvideHandlers(),
		provideServers(),
		fx.Provide(
			candlelight.New,
			func(v *viper.Viper) (candlelight.Config, error) {
				var config candlelight.Config
				err := v.UnmarshalKey("tracing", &config)
				if err != nil {
					return candlelight.Config{}, err
				}
				config.ApplicationName = applicationName
				return config, nil
			},
		),
		fx.Invoke(
			recordBuildInfo,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		logger.Info("starting", zap.String("version", Version), zap.String("gitCommit", GitCommit))
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
