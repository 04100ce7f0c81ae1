// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"go.uber.org/fx"
)

type handlerIn struct {
	fx.In
	Registry *session.Registry
}

// Handlers is the set of named handlers built by ProvideHandlers.
type Handlers struct {
	fx.In
	Start   Handler `name:"start_handler"`
	Stop    Handler `name:"stop_handler"`
	Updates Handler `name:"updates_handler"`
	List    Handler `name:"list_handler"`
}

// ProvideHandlers builds the four session handlers over the registry.
func ProvideHandlers() fx.Option {
	return fx.Provide(
		fx.Annotated{
			Name:   "start_handler",
			Target: func(in handlerIn) Handler { return newStartHandler(in.Registry) },
		},
		fx.Annotated{
			Name:   "stop_handler",
			Target: func(in handlerIn) Handler { return newStopHandler(in.Registry) },
		},
		fx.Annotated{
			Name:   "updates_handler",
			Target: func(in handlerIn) Handler { return newUpdatesHandler(in.Registry) },
		},
		fx.Annotated{
			Name:   "list_handler",
			Target: func(in handlerIn) Handler { return newListHandler(in.Registry) },
		},
	)
}
