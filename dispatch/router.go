// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"emperror.dev/emperror"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"go.uber.org/zap"
)

// Normalizer turns a broker payload into a Spot.
type Normalizer interface {
	Normalize(payload []byte) (model.Spot, bool)
}

// Sessions exposes the live sessions.
type Sessions interface {
	Snapshot() []*session.Session
}

// Archiver accepts spots for storage outside the process. Offer must not
// block.
type Archiver interface {
	Offer(model.Spot) bool
}

// Router fans every broker message out to the sessions it matches.
type Router struct {
	normalizer Normalizer
	sessions   Sessions
	archiver   Archiver
	measures   Measures
	logger     *zap.Logger
	panics     emperror.ErrorHandler
}

// NewRouter builds a Router. archiver may be nil.
func NewRouter(n Normalizer, s Sessions, a Archiver, m Measures, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		normalizer: n,
		sessions:   s,
		archiver:   a,
		measures:   m,
		logger:     logger,
	}
	r.panics = emperror.ErrorHandlerFunc(func(err error) {
		r.count(r.measures.Dropped, PanicOutcome)
		r.logger.Error("recovered from panic while dispatching", zap.Error(err))
	})
	return r
}

// OnEvent handles one broker message. It never blocks on I/O and a failure
// affects only this message.
func (r *Router) OnEvent(msg upstream.Message) {
	defer emperror.HandleRecover(r.panics)

	spot, ok := r.normalizer.Normalize(msg.Payload)
	if !ok {
		r.count(r.measures.Dropped, MalformedOutcome)
		return
	}

	matched := 0
	for _, s := range r.sessions.Snapshot() {
		if !s.Matches(spot) {
			continue
		}
		matched++
		if s.Append(spot) && r.measures.Evicted != nil {
			r.measures.Evicted.Inc()
		}
	}

	if matched == 0 {
		r.count(r.measures.Dispatched, UnmatchedOutcome)
	} else {
		r.count(r.measures.Dispatched, MatchedOutcome)
	}
	if r.measures.Deliveries != nil {
		r.measures.Deliveries.Add(float64(matched))
	}

	if r.archiver != nil {
		r.archiver.Offer(spot)
	}
}
