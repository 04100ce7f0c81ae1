// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/rokhmanov/mcp-server-pskreporter/filter"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"go.uber.org/zap"
)

// DefaultCapacity is the number of spots a session buffers between pulls.
const DefaultCapacity = 100

// Config is the `sessions` configuration section.
type Config struct {
	// Capacity bounds every session buffer. Defaults to DefaultCapacity.
	Capacity int

	// IdleTimeout stops sessions that have not been pulled for this long.
	// Zero disables the reaper.
	IdleTimeout time.Duration

	// ReapInterval is how often idle sessions are looked for. Defaults to a
	// quarter of IdleTimeout, but never less than a second.
	ReapInterval time.Duration
}

func (c *Config) setDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.IdleTimeout > 0 && c.ReapInterval <= 0 {
		c.ReapInterval = c.IdleTimeout / 4
		if c.ReapInterval < time.Second {
			c.ReapInterval = time.Second
		}
	}
}

// Registry holds the live sessions.
type Registry struct {
	lock     sync.RWMutex
	sessions map[string]*Session

	config   Config
	acquirer upstream.Acquirer
	measures Measures
	logger   *zap.Logger

	now   func() time.Time
	newID func(time.Time) (string, error)
}

// NewRegistry builds an empty Registry whose sessions subscribe through
// acquirer.
func NewRegistry(config Config, acquirer upstream.Acquirer, measures Measures, logger *zap.Logger) (*Registry, error) {
	if acquirer == nil {
		return nil, ErrNilAcquirer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.setDefaults()

	return &Registry{
		sessions: make(map[string]*Session),
		config:   config,
		acquirer: acquirer,
		measures: measures,
		logger:   logger,
		now:      time.Now,
		newID:    newID,
	}, nil
}

// newID returns session_<unix seconds>_<uuid v7>.
func newID(now time.Time) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("session_%d_%s", now.Unix(), u), nil
}

// Start creates a session for criteria. The session is only visible to the
// dispatch path once it is fully built and its subscription is held.
func (r *Registry) Start(ctx context.Context, criteria model.Criteria) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := r.now()
	id, err := r.newID(now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate session id")
	}

	criteria = filter.Normalize(criteria)
	topic := filter.BuildPattern(criteria)

	lease, err := r.acquirer.Acquire(topic)
	if err != nil {
		r.logger.Error("failed to acquire subscription", zap.String("topic", topic), zap.Error(err))
		return nil, errors.WrapWithDetails(err, "failed to acquire subscription", "topic", topic)
	}

	s := newSession(id, criteria, topic, now.UTC(), r.config.Capacity, lease)

	r.lock.Lock()
	if _, exists := r.sessions[id]; exists {
		r.lock.Unlock()
		r.release(s)
		return nil, errors.WithDetails(errDuplicateID, "id", id)
	}
	r.sessions[id] = s
	n := len(r.sessions)
	r.lock.Unlock()

	r.setActive(n)
	if r.measures.Started != nil {
		r.measures.Started.Inc()
	}
	r.logger.Info("session started", zap.String("id", id), zap.String("topic", topic))
	return s, nil
}

// Stop removes session id and releases its subscription.
func (r *Registry) Stop(_ context.Context, id string) error {
	return r.stop(id, ClientReason)
}

func (r *Registry) stop(id, reason string) error {
	r.lock.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.lock.Unlock()
		return NotFoundError{ID: id}
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.lock.Unlock()

	r.setActive(n)
	if r.measures.Stopped != nil {
		r.measures.Stopped.WithLabelValues(reason).Inc()
	}
	r.logger.Info("session stopped", zap.String("id", id), zap.String("reason", reason))
	r.release(s)
	return nil
}

func (r *Registry) release(s *Session) {
	if s.lease == nil {
		return
	}
	if err := s.lease.Release(); err != nil {
		r.logger.Error("failed to release subscription", zap.String("id", s.ID), zap.String("topic", s.Topic), zap.Error(err))
	}
}

// Get returns session id.
func (r *Registry) Get(id string) (*Session, error) {
	r.lock.RLock()
	s, ok := r.sessions[id]
	r.lock.RUnlock()
	if !ok {
		return nil, NotFoundError{ID: id}
	}
	return s, nil
}

// Snapshot returns the live sessions at the time of the call. The slice is
// owned by the caller.
func (r *Registry) Snapshot() []*Session {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Each calls f for every session in a snapshot, without holding the
// registry lock.
func (r *Registry) Each(f func(*Session)) {
	for _, s := range r.Snapshot() {
		f(s)
	}
}

// List describes the live sessions, oldest first.
func (r *Registry) List() []model.SessionInfo {
	sessions := r.Snapshot()
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Created.Equal(sessions[j].Created) {
			return sessions[i].Created.Before(sessions[j].Created)
		}
		return sessions[i].ID < sessions[j].ID
	})
	out := make([]model.SessionInfo, len(sessions))
	for i, s := range sessions {
		out[i] = s.Info()
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.sessions)
}

// StopAll stops every session. Used on shutdown.
func (r *Registry) StopAll() {
	for _, s := range r.Snapshot() {
		// already gone is fine
		_ = r.stop(s.ID, ShutdownReason)
	}
}

func (r *Registry) setActive(n int) {
	if r.measures.Active != nil {
		r.measures.Active.Set(float64(n))
	}
}
