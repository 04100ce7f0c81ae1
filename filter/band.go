// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package filter

type bandEdge struct {
	name string
	low  float64
	high float64
}

// amateur band edges in MHz, union of the IARU region allocations.
var bandPlan = []bandEdge{
	{"2200m", 0.1357, 0.1378},
	{"630m", 0.472, 0.479},
	{"160m", 1.8, 2.0},
	{"80m", 3.5, 4.0},
	{"60m", 5.06, 5.45},
	{"40m", 7.0, 7.3},
	{"30m", 10.1, 10.15},
	{"20m", 14.0, 14.35},
	{"17m", 18.068, 18.168},
	{"15m", 21.0, 21.45},
	{"12m", 24.89, 24.99},
	{"10m", 28.0, 29.7},
	{"6m", 50.0, 54.0},
	{"4m", 70.0, 71.0},
	{"2m", 144.0, 148.0},
	{"1.25m", 222.0, 225.0},
	{"70cm", 420.0, 450.0},
	{"23cm", 1240.0, 1300.0},
}

// BandFor returns the band name covering mhz, or the empty string when the
// frequency is outside every amateur allocation.
func BandFor(mhz float64) string {
	for _, b := range bandPlan {
		if mhz >= b.low && mhz <= b.high {
			return b.name
		}
	}
	return ""
}
