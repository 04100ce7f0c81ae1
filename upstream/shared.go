// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

// Subscription modes.
const (
	PerSessionMode = "per-session"
	SharedMode     = "shared"
)

// DefaultSharedPattern receives every spot the broker publishes.
const DefaultSharedPattern = "pskr/filter/v2/+/+/+/+/+"

// Shared serves every session from one broker subscription held for the life
// of the process. Sessions get no-op leases and rely on local matching.
type Shared struct {
	pattern string
	base    Acquirer
	held    Lease
}

// NewShared builds a Shared acquirer subscribing pattern through base.
func NewShared(base Acquirer, pattern string) *Shared {
	if pattern == "" {
		pattern = DefaultSharedPattern
	}
	return &Shared{pattern: pattern, base: base}
}

// Open takes the process wide reference on the shared pattern.
func (s *Shared) Open() error {
	if s.held != nil {
		return nil
	}
	l, err := s.base.Acquire(s.pattern)
	if err != nil {
		return err
	}
	s.held = l
	return nil
}

// Close releases the shared pattern.
func (s *Shared) Close() error {
	if s.held == nil {
		return nil
	}
	err := s.held.Release()
	s.held = nil
	return err
}

// Pattern returns the topic held by s.
func (s *Shared) Pattern() string {
	return s.pattern
}

// Acquire returns a lease that does not touch the broker.
func (s *Shared) Acquire(topic string) (Lease, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	return nopLease(topic), nil
}

type nopLease string

func (l nopLease) Topic() string  { return string(l) }
func (l nopLease) Release() error { return nil }
