// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"emperror.dev/errors"
)

// Errors that can be returned by this package.
var (
	ErrUpstreamUnavailable = errors.New("upstream broker unavailable")
	ErrOperationTimeout    = errors.New("upstream operation timed out")
	ErrEmptyTopic          = errors.New("topic must not be empty")
)

// Message is a single delivery from the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler receives every message delivered by the broker.
type Handler func(Message)

// Subscriber is the minimal broker surface.
type Subscriber interface {
	Subscribe(topic string) error
	Unsubscribe(topic string) error
}

// Lease holds a reference on a broker subscription. Release must be safe to
// call more than once; only the first call has an effect.
type Lease interface {
	Topic() string
	Release() error
}

// Acquirer hands out subscription leases.
type Acquirer interface {
	Acquire(topic string) (Lease, error)
}
