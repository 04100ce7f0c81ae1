// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import "github.com/rokhmanov/mcp-server-pskreporter/model"

type stationKey struct {
	frequency float64
	mode      string
}

// Summarize groups spots by callsign. Within a station only the first spot
// seen for each (frequency, mode) pair is kept. TotalSpots counts the input.
func Summarize(spots []model.Spot) model.Summary {
	stations := make(map[string][]model.Spot)
	seen := make(map[string]map[stationKey]struct{})

	for _, s := range spots {
		k := stationKey{frequency: s.Frequency, mode: s.Mode}
		keys, ok := seen[s.Callsign]
		if !ok {
			keys = make(map[stationKey]struct{})
			seen[s.Callsign] = keys
		}
		if _, dup := keys[k]; dup {
			continue
		}
		keys[k] = struct{}{}
		stations[s.Callsign] = append(stations[s.Callsign], s)
	}

	return model.Summary{
		TotalSpots:     len(spots),
		UniqueStations: len(stations),
		Stations:       stations,
	}
}

// DrainAndSummarize empties the buffer of session id and summarizes what was
// in it.
func (r *Registry) DrainAndSummarize(id string) (model.Summary, error) {
	s, err := r.Get(id)
	if err != nil {
		return model.Summary{}, err
	}
	spots := s.Drain(r.now())
	if r.measures.Drained != nil {
		r.measures.Drained.Add(float64(len(spots)))
	}
	return Summarize(spots), nil
}
