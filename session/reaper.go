// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"go.uber.org/zap"
)

var (
	ErrReaperNotStopped = errors.New("reaper is either running or starting")
	ErrReaperNotRunning = errors.New("reaper is either stopped or stopping")
	ErrReaperDisabled   = errors.New("idle timeout is not set")
)

// reaper states
const (
	stopped int32 = iota
	running
	transitioning
)

// Reaper periodically stops sessions nobody has pulled for longer than the
// idle timeout.
type Reaper struct {
	registry *Registry
	timeout  time.Duration
	interval time.Duration
	logger   *zap.Logger

	shutdown chan struct{}
	done     chan struct{}
	state    int32
}

// NewReaper builds a Reaper over r using its configured idle timeout.
func NewReaper(r *Registry) (*Reaper, error) {
	if r.config.IdleTimeout <= 0 {
		return nil, ErrReaperDisabled
	}
	return &Reaper{
		registry: r,
		timeout:  r.config.IdleTimeout,
		interval: r.config.ReapInterval,
		logger:   r.logger,
	}, nil
}

// Start begins reaping on an interval. Calling Start on a running Reaper
// returns ErrReaperNotStopped.
func (rp *Reaper) Start(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&rp.state, stopped, transitioning) {
		rp.logger.Error("Start called when the reaper was not in stopped state", zap.Error(ErrReaperNotStopped))
		return ErrReaperNotStopped
	}

	rp.shutdown = make(chan struct{})
	rp.done = make(chan struct{})
	ticker := time.NewTicker(rp.interval)
	go func() {
		defer close(rp.done)
		defer ticker.Stop()
		for {
			select {
			case <-rp.shutdown:
				return
			case <-ticker.C:
				rp.Reap()
			}
		}
	}()

	atomic.StoreInt32(&rp.state, running)
	return nil
}

// Stop ends reaping and waits for the reaping goroutine to exit.
func (rp *Reaper) Stop(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&rp.state, running, transitioning) {
		rp.logger.Error("Stop called when the reaper was not in running state", zap.Error(ErrReaperNotRunning))
		return ErrReaperNotRunning
	}

	close(rp.shutdown)
	<-rp.done
	atomic.StoreInt32(&rp.state, stopped)
	return nil
}

// Reap stops every idle session once and returns how many were stopped.
func (rp *Reaper) Reap() int {
	cutoff := rp.registry.now().Add(-rp.timeout)
	n := 0
	for _, s := range rp.registry.Snapshot() {
		if !s.LastPulled().Before(cutoff) {
			continue
		}
		if err := rp.registry.stop(s.ID, IdleReason); err != nil {
			// stopped by its client in the meantime
			continue
		}
		n++
		rp.logger.Info("reaped idle session", zap.String("id", s.ID), zap.Time("lastPulled", s.LastPulled()))
	}
	if n > 0 && rp.registry.measures.Reaped != nil {
		rp.registry.measures.Reaped.Add(float64(n))
	}
	return n
}
