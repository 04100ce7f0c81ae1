// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/justinas/alice"
	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/arrange/arrangehttp"
	"go.uber.org/fx"
)

const (
	primaryServer = "servers.primary"
	metricsServer = "servers.metrics"
	healthServer  = "servers.health"

	defaultReadHeaderTimeout = 5 * time.Second
)

// PrimaryMiddlewareIn is injected into the primary server and decorates its router.
type PrimaryMiddlewareIn struct {
	fx.In
	Middleware alice.Chain `name:"middleware_primary"`
}

// HealthMiddlewareIn is injected into the health server and decorates its router.
type HealthMiddlewareIn struct {
	fx.In
	Middleware alice.Chain `name:"middleware_health"`
}

// provideServers binds the primary, metrics and health listeners to the app.
// Each server is configured from its key and exposes a *mux.Router of the
// same name, which the route invokes populate. Values missing from the
// configuration fall back to the server's factory defaults.
func provideServers() fx.Option {
	return fx.Options(
		provideRoutes(),
		arrangehttp.Server{
			Name:          primaryServer,
			Key:           primaryServer,
			ServerFactory: serverDefaults(":6600"),
			Inject:        arrange.Inject{PrimaryMiddlewareIn{}},
		}.Provide(),
		arrangehttp.Server{
			Name:          metricsServer,
			Key:           metricsServer,
			ServerFactory: serverDefaults(":6601"),
		}.Provide(),
		arrangehttp.Server{
			Name:          healthServer,
			Key:           healthServer,
			ServerFactory: serverDefaults(":6602"),
			Inject:        arrange.Inject{HealthMiddlewareIn{}},
		}.Provide(),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
			BuildHealthRoutes,
		),
	)
}

func serverDefaults(address string) arrangehttp.ServerConfig {
	return arrangehttp.ServerConfig{
		Address:           address,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
}
