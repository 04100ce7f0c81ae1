// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"github.com/rokhmanov/mcp-server-pskreporter/archive"
	"github.com/rokhmanov/mcp-server-pskreporter/dxcc"
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"github.com/rokhmanov/mcp-server-pskreporter/spot"
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type routerIn struct {
	fx.In
	Table    *dxcc.Table
	Registry *session.Registry
	Archive  *archive.Worker `optional:"true"`
	Measures Measures
	Logger   *zap.Logger
}

// Provide builds the Router and installs it as the broker message handler.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(
			func(in routerIn) *Router {
				var a Archiver
				if in.Archive != nil {
					a = in.Archive
				}
				return NewRouter(
					spot.NewNormalizer(in.Table, in.Logger),
					in.Registry,
					a,
					in.Measures,
					in.Logger,
				)
			},
		),
		fx.Invoke(
			func(c *upstream.Client, r *Router) {
				c.SetHandler(r.OnEvent)
			},
		),
	)
}
