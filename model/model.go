// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"strings"
	"time"
)

// Wildcard is the topic segment that matches any value.
const Wildcard = "+"

// TimeLayout is the wire format of a Timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// Criteria defines the optional match fields of a subscription. An empty
// field, or one holding the Wildcard, matches anything.
type Criteria struct {
	// Band is the amateur band name, i.e. "20m".
	Band string `json:"band,omitempty"`

	// Mode is the transmission mode, i.e. "FT8".
	Mode string `json:"mode,omitempty"`

	// SenderCountry is the DXCC entity code of the sender.
	SenderCountry string `json:"sendercountry,omitempty"`

	// SenderLocator is the maidenhead locator (or a prefix of it) of the sender.
	SenderLocator string `json:"senderlocator,omitempty"`

	// SenderCall is the callsign of the sender.
	SenderCall string `json:"sendercall,omitempty"`
}

// IsAny reports whether a criteria value matches any value.
func IsAny(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || v == Wildcard
}

// Timestamp is a UTC time encoded with TimeLayout.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Spot is a single normalized reception report.
type Spot struct {
	Time      Timestamp `json:"time"`
	Callsign  string    `json:"callsign"`
	Frequency float64   `json:"frequency"` // MHz
	Mode      string    `json:"mode"`
	Locator   string    `json:"locator"`
	SNR       int       `json:"snr"`
	Country   string    `json:"country"`

	// CountryCode is the DXCC entity code Country was resolved from.
	CountryCode string `json:"country_code,omitempty"`
	Band        string `json:"band,omitempty"`
}

// Summary is the result of draining a session buffer.
type Summary struct {
	TotalSpots     int               `json:"total_spots"`
	UniqueStations int               `json:"unique_stations"`
	Stations       map[string][]Spot `json:"stations"`
}

// SessionInfo describes a live session without exposing its buffer.
type SessionInfo struct {
	ID       string    `json:"session_id"`
	Topic    string    `json:"topic"`
	Criteria Criteria  `json:"criteria"`
	Created  Timestamp `json:"created"`
	Buffered int       `json:"buffered"`
}
