// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rokhmanov/mcp-server-pskreporter/api"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// recoveredStatusCode is written when a handler panics.
	recoveredStatusCode = 555

	defaultMetricsPath = "/metrics"
	defaultHealthPath  = "/health"
)

// MetricsPath is the route the prometheus handler is served on.
type MetricsPath string

// HealthPath is the route the health check is served on.
type HealthPath string

type MiddlewareIn struct {
	fx.In
	PrimaryMetrics touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	HealthMetrics  touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	Logger         *zap.Logger
}

type MiddlewareOut struct {
	fx.Out
	Primary alice.Chain `name:"middleware_primary"`
	Health  alice.Chain `name:"middleware_health"`
}

type PrimaryRoutesIn struct {
	fx.In
	Router   *mux.Router `name:"servers.primary"`
	Handlers api.Handlers
	Tracing  candlelight.Tracing
}

type MetricsRoutesIn struct {
	fx.In
	Router  *mux.Router `name:"servers.metrics"`
	Handler touchhttp.Handler
	Path    MetricsPath
}

type HealthRoutesIn struct {
	fx.In
	Router *mux.Router `name:"servers.health"`
	Path   HealthPath
}

func provideRoutes() fx.Option {
	return fx.Options(
		touchhttp.Provide(),
		fx.Provide(
			fx.Annotated{
				Name: "servers.primary.metrics",
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, "primary",
				),
			},
			fx.Annotated{
				Name: "servers.health.metrics",
				Target: touchhttp.ServerBundle{}.NewInstrumenter(
					touchhttp.ServerLabel, "health",
				),
			},
			provideMiddleware,
			func(v *viper.Viper) MetricsPath {
				return MetricsPath(pathOr(v.GetString(metricsServer+".path"), defaultMetricsPath))
			},
			func(v *viper.Viper) HealthPath {
				return HealthPath(pathOr(v.GetString(healthServer+".path"), defaultHealthPath))
			},
		),
	)
}

func pathOr(p, def string) string {
	if p == "" {
		return def
	}
	return p
}

func provideMiddleware(in MiddlewareIn) MiddlewareOut {
	return MiddlewareOut{
		Primary: alice.New(
			in.PrimaryMetrics.Then,
			recovery.Middleware(recovery.WithStatusCode(recoveredStatusCode)),
			api.RequestLogger(in.Logger),
		),
		Health: alice.New(in.HealthMetrics.Then),
	}
}

func BuildPrimaryRoutes(in PrimaryRoutesIn) {
	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	in.Router.Use(
		otelmux.Middleware("server_primary", options...),
		candlelight.EchoFirstTraceNodeInfo(in.Tracing, false),
	)

	api.Mount(in.Router, in.Handlers)
}

func BuildMetricsRoutes(in MetricsRoutesIn) {
	in.Router.Handle(string(in.Path), in.Handler).Methods(http.MethodGet)
}

func BuildHealthRoutes(in HealthRoutesIn) {
	in.Router.Handle(string(in.Path), httpaux.ConstantHandler{
		StatusCode: http.StatusOK,
	}).Methods(http.MethodGet)
}
