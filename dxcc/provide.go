// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dxcc

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	configKey   = "dxcc"
	defaultFile = "dxcc.txt"
)

// Config locates the entity table file.
type Config struct {
	File string
}

type tableIn struct {
	fx.In
	Viper  *viper.Viper
	Logger *zap.Logger
}

// Provide loads the entity table once at startup. An unreadable file is fatal.
func Provide() fx.Option {
	return fx.Provide(
		func(in tableIn) (*Table, error) {
			var c Config
			if err := in.Viper.UnmarshalKey(configKey, &c); err != nil {
				return nil, err
			}
			if c.File == "" {
				c.File = defaultFile
			}
			t, err := LoadFile(c.File, in.Logger)
			if err != nil {
				return nil, err
			}
			in.Logger.Info("loaded dxcc entities", zap.String("file", c.File), zap.Int("count", t.Len()))
			return t, nil
		},
	)
}
