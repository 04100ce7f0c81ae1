// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

const (
	// BuildInfoGauge is always 1, labeled with the running build.
	BuildInfoGauge = "pskr_build_info"

	versionLabel   = "version"
	commitLabel    = "commit"
	goVersionLabel = "goversion"
)

type buildInfoIn struct {
	fx.In
	BuildInfo *prometheus.GaugeVec `name:"pskr_build_info"`
}

// provideMetrics sets up the prometheus registry the package metrics are
// registered with, configured from the prometheus key.
func provideMetrics() fx.Option {
	return fx.Options(
		touchstone.Provide(),
		fx.Provide(
			func(v *viper.Viper) (touchstone.Config, error) {
				var c touchstone.Config
				err := v.UnmarshalKey("prometheus", &c)
				return c, err
			},
		),
		touchstone.GaugeVec(
			prometheus.GaugeOpts{
				Name: BuildInfoGauge,
				Help: "Information about the running build.",
			},
			versionLabel,
			commitLabel,
			goVersionLabel,
		),
	)
}

func recordBuildInfo(in buildInfoIn) {
	in.BuildInfo.With(prometheus.Labels{
		versionLabel:   Version,
		commitLabel:    GitCommit,
		goVersionLabel: runtime.Version(),
	}).Set(1)
}
