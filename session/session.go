// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"
	"time"

	"github.com/rokhmanov/mcp-server-pskreporter/filter"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
)

// Session is a client's subscription together with its pending spots.
// ID, Criteria, Topic and Created never change after construction.
type Session struct {
	ID       string
	Criteria model.Criteria
	Topic    string
	Created  time.Time

	lease upstream.Lease

	lock       sync.Mutex
	buffer     ring
	lastPulled time.Time
}

func newSession(id string, c model.Criteria, topic string, created time.Time, capacity int, lease upstream.Lease) *Session {
	return &Session{
		ID:         id,
		Criteria:   c,
		Topic:      topic,
		Created:    created,
		lease:      lease,
		buffer:     newRing(capacity),
		lastPulled: created,
	}
}

// Matches reports whether spot belongs to this session. It is looser than the
// broker topic filter, whose segments match exactly: fields compare
// case-insensitively and the locator matches as a prefix.
func (s *Session) Matches(spot model.Spot) bool {
	return filter.Matches(s.Criteria, spot)
}

// Append buffers spot, evicting the oldest one when the buffer is full.
func (s *Session) Append(spot model.Spot) (evicted bool) {
	s.lock.Lock()
	evicted = s.buffer.push(spot)
	s.lock.Unlock()
	return
}

// Drain removes and returns every buffered spot, oldest first. Spots appended
// after Drain returns land in the emptied buffer.
func (s *Session) Drain(now time.Time) []model.Spot {
	s.lock.Lock()
	defer s.lock.Unlock()
	spots := s.buffer.items()
	s.buffer.reset()
	s.lastPulled = now
	return spots
}

// Len returns the number of buffered spots.
func (s *Session) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.buffer.size
}

// LastPulled is the time of the last drain, or the creation time.
func (s *Session) LastPulled() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastPulled
}

// Info describes s without its buffer.
func (s *Session) Info() model.SessionInfo {
	return model.SessionInfo{
		ID:       s.ID,
		Topic:    s.Topic,
		Criteria: s.Criteria,
		Created:  model.Timestamp{Time: s.Created},
		Buffered: s.Len(),
	}
}
