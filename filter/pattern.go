// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
)

// TopicPrefix is the fixed root of every PSKReporter filter topic.
const TopicPrefix = "pskr/filter/v2/"

// segmentRules are the constraints a criteria value must satisfy to be used
// as a literal topic segment.
const segmentRules = "printascii,excludesall=/#+,max=64"

var validate = validator.New()

// Segment returns the topic segment for a single criteria value.
func Segment(value string) string {
	v := strings.TrimSpace(value)
	if model.IsAny(v) {
		return model.Wildcard
	}
	if strings.ContainsAny(v, " \t") {
		return model.Wildcard
	}
	if err := validate.Var(v, segmentRules); err != nil {
		return model.Wildcard
	}
	return v
}

// BuildPattern derives the broker subscription pattern for criteria:
// pskr/filter/v2/<band>/<mode>/<country>/<locator>/<callsign>.
func BuildPattern(c model.Criteria) string {
	var b strings.Builder
	b.WriteString(TopicPrefix)
	b.WriteString(Segment(c.Band))
	b.WriteByte('/')
	b.WriteString(Segment(c.Mode))
	b.WriteByte('/')
	b.WriteString(Segment(c.SenderCountry))
	b.WriteByte('/')
	b.WriteString(Segment(c.SenderLocator))
	b.WriteByte('/')
	b.WriteString(Segment(c.SenderCall))
	return b.String()
}

// Normalize returns criteria where every field is either a usable literal or
// empty, mirroring what BuildPattern puts in the topic.
func Normalize(c model.Criteria) model.Criteria {
	clean := func(v string) string {
		s := Segment(v)
		if s == model.Wildcard {
			return ""
		}
		return s
	}
	return model.Criteria{
		Band:          clean(c.Band),
		Mode:          clean(c.Mode),
		SenderCountry: clean(c.SenderCountry),
		SenderLocator: clean(c.SenderLocator),
		SenderCall:    clean(c.SenderCall),
	}
}

// Matches reports whether spot satisfies every concrete field of c. Fields
// are compared case-insensitively; the locator criterion matches as a prefix
// so a square like "PM95" covers its subsquares. Callers on the hot path
// should pass criteria already cleaned by Normalize.
func Matches(c model.Criteria, s model.Spot) bool {
	if !model.IsAny(c.Band) && !strings.EqualFold(c.Band, s.Band) {
		return false
	}
	if !model.IsAny(c.Mode) && !strings.EqualFold(c.Mode, s.Mode) {
		return false
	}
	if !model.IsAny(c.SenderCountry) && !strings.EqualFold(c.SenderCountry, s.CountryCode) {
		return false
	}
	if !model.IsAny(c.SenderLocator) && !hasPrefixFold(s.Locator, c.SenderLocator) {
		return false
	}
	if !model.IsAny(c.SenderCall) && !strings.EqualFold(c.SenderCall, s.Callsign) {
		return false
	}
	return true
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
