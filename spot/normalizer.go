// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package spot

import (
	"time"

	"github.com/rokhmanov/mcp-server-pskreporter/dxcc"
	"github.com/rokhmanov/mcp-server-pskreporter/filter"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// payload field names, as published by PSKReporter.
const (
	timeField          = "time"
	senderCallField    = "sendercall"
	frequencyField     = "frequency"
	modeField          = "mode"
	senderLocatorField = "senderlocator"
	snrField           = "snr"
	senderCountryField = "sendercountry"
	bandField          = "band"
)

const hzPerMHz = 1_000_000

// RawEvent is an upstream payload after decoding but before normalization.
// Zero values stand for absent fields.
type RawEvent struct {
	Time          int64
	SenderCall    string
	Frequency     float64 // Hz
	Mode          string
	SenderLocator string
	SNR           int
	SenderCountry string
	Band          string
}

// Resolver turns a DXCC entity code into a display name.
type Resolver interface {
	Resolve(code string) string
}

// Normalizer converts upstream payloads into spots.
type Normalizer struct {
	resolver Resolver
	logger   *zap.Logger
	now      func() time.Time
}

// NewNormalizer builds a Normalizer resolving countries through r.
func NewNormalizer(r Resolver, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		resolver: r,
		logger:   logger,
		now:      time.Now,
	}
}

// Decode parses a JSON payload into a RawEvent. Numeric fields may arrive as
// numbers or numeric strings.
func Decode(payload []byte) (RawEvent, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return RawEvent{}, MalformedEventError{Reason: "payload is not a JSON object", Err: err}
	}
	if fields == nil {
		return RawEvent{}, MalformedEventError{Reason: "payload is empty"}
	}

	var (
		raw RawEvent
		err error
	)
	if v, ok := present(fields, timeField); ok {
		if raw.Time, err = cast.ToInt64E(v); err != nil {
			return RawEvent{}, MalformedEventError{Reason: timeField, Err: err}
		}
	}
	if v, ok := present(fields, frequencyField); ok {
		if raw.Frequency, err = cast.ToFloat64E(v); err != nil {
			return RawEvent{}, MalformedEventError{Reason: frequencyField, Err: err}
		}
	}
	if v, ok := present(fields, snrField); ok {
		if raw.SNR, err = cast.ToIntE(v); err != nil {
			return RawEvent{}, MalformedEventError{Reason: snrField, Err: err}
		}
	}

	raw.SenderCall = cast.ToString(fields[senderCallField])
	raw.Mode = cast.ToString(fields[modeField])
	raw.SenderLocator = cast.ToString(fields[senderLocatorField])
	raw.SenderCountry = cast.ToString(fields[senderCountryField])
	raw.Band = cast.ToString(fields[bandField])
	return raw, nil
}

func present(fields map[string]interface{}, key string) (interface{}, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// FromRaw builds the canonical spot for raw.
func (n *Normalizer) FromRaw(raw RawEvent) model.Spot {
	ts := n.now()
	if raw.Time != 0 {
		ts = time.Unix(raw.Time, 0)
	}

	mhz := raw.Frequency / hzPerMHz
	band := raw.Band
	if band == "" {
		band = filter.BandFor(mhz)
	}

	country := dxcc.Unknown
	if n.resolver != nil {
		country = n.resolver.Resolve(raw.SenderCountry)
	}

	return model.Spot{
		Time:        model.Timestamp{Time: ts.UTC().Truncate(time.Second)},
		Callsign:    raw.SenderCall,
		Frequency:   mhz,
		Mode:        raw.Mode,
		Locator:     raw.SenderLocator,
		SNR:         raw.SNR,
		Country:     country,
		CountryCode: raw.SenderCountry,
		Band:        band,
	}
}

// Normalize decodes payload and converts it into a spot. Malformed payloads
// are logged and reported with false; they never cause a panic.
func (n *Normalizer) Normalize(payload []byte) (model.Spot, bool) {
	raw, err := Decode(payload)
	if err != nil {
		n.logger.Warn("dropping malformed event", zap.Error(err), zap.Int("size", len(payload)))
		return model.Spot{}, false
	}
	return n.FromRaw(raw), true
}
