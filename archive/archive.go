// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package archive copies normalized spots to an external store without ever
// holding up the dispatch path.
package archive

import (
	"context"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultQueueSize     = 1024
	defaultBatchSize     = 25
	defaultFlushInterval = time.Second
	defaultWriteTimeout  = 5 * time.Second
	defaultWriteRate     = 20
	defaultWriteBurst    = 1
)

var (
	ErrNilStore         = errors.New("an archive store is required")
	ErrWorkerNotStopped = errors.New("archive worker is either running or starting")
	ErrWorkerNotRunning = errors.New("archive worker is either stopped or stopping")
)

// Store persists batches of spots.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	Write(ctx context.Context, spots []model.Spot) error
	Close() error
}

// WorkerConfig tunes the queue in front of a Store.
type WorkerConfig struct {
	// QueueSize bounds the spots waiting to be written. Spots offered to a
	// full queue are dropped.
	QueueSize int

	// BatchSize is the most spots handed to a single Write.
	BatchSize int

	// FlushInterval bounds how long a partial batch waits.
	FlushInterval time.Duration

	// WriteTimeout bounds a single Write.
	WriteTimeout time.Duration

	// WriteRate is the most Write calls per second.
	WriteRate float64

	// WriteBurst is the rate limiter burst.
	WriteBurst int
}

func (c *WorkerConfig) setDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.WriteRate <= 0 {
		c.WriteRate = defaultWriteRate
	}
	if c.WriteBurst <= 0 {
		c.WriteBurst = defaultWriteBurst
	}
}

// worker states
const (
	stopped int32 = iota
	running
	transitioning
)

// Worker drains a bounded queue of spots into a Store.
type Worker struct {
	config   WorkerConfig
	store    Store
	queue    chan model.Spot
	limiter  *rate.Limiter
	measures Measures
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
	state  int32
}

// NewWorker builds a Worker in front of s.
func NewWorker(config WorkerConfig, s Store, measures Measures, logger *zap.Logger) (*Worker, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.setDefaults()
	return &Worker{
		config:   config,
		store:    s,
		queue:    make(chan model.Spot, config.QueueSize),
		limiter:  rate.NewLimiter(rate.Limit(config.WriteRate), config.WriteBurst),
		measures: measures,
		logger:   logger.With(zap.String("archive", s.Name())),
	}, nil
}

// Offer queues s for writing. It returns false, and drops s, when the queue
// is full.
func (w *Worker) Offer(s model.Spot) bool {
	select {
	case w.queue <- s:
		return true
	default:
		if w.measures.Dropped != nil {
			w.measures.Dropped.Inc()
		}
		return false
	}
}

// Start begins draining the queue.
func (w *Worker) Start(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&w.state, stopped, transitioning) {
		return ErrWorkerNotStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)

	atomic.StoreInt32(&w.state, running)
	return nil
}

// Stop flushes what is queued, within ctx, and closes the store.
func (w *Worker) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&w.state, running, transitioning) {
		return ErrWorkerNotRunning
	}

	w.cancel()
	<-w.done
	w.flushQueue(ctx)

	err := w.store.Close()
	atomic.StoreInt32(&w.state, stopped)
	return err
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]model.Spot, 0, w.config.BatchSize)
	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				w.write(context.Background(), batch)
			}
			return
		case s := <-w.queue:
			batch = append(batch, s)
			if len(batch) < w.config.BatchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if err := w.limiter.Wait(ctx); err != nil {
			// shutting down, write without waiting
			w.write(context.Background(), batch)
			return
		}
		w.write(ctx, batch)
		batch = batch[:0]
	}
}

// flushQueue writes whatever is still queued after the run loop has exited.
func (w *Worker) flushQueue(ctx context.Context) {
	batch := make([]model.Spot, 0, w.config.BatchSize)
	for {
		select {
		case s := <-w.queue:
			batch = append(batch, s)
			if len(batch) < w.config.BatchSize {
				continue
			}
			w.write(ctx, batch)
			batch = batch[:0]
		default:
			if len(batch) > 0 {
				w.write(ctx, batch)
			}
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, batch []model.Spot) {
	ctx, cancel := context.WithTimeout(ctx, w.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := w.store.Write(ctx, batch)
	if w.measures.WriteDuration != nil {
		w.measures.WriteDuration.Observe(time.Since(start).Seconds())
	}

	outcome := SuccessOutcome
	if err != nil {
		outcome = FailureOutcome
		w.logger.Error("failed to archive spots", zap.Int("count", len(batch)), zap.Error(err))
	}
	if w.measures.Writes != nil {
		w.measures.Writes.WithLabelValues(outcome).Inc()
	}
	if err == nil && w.measures.Written != nil {
		w.measures.Written.Add(float64(len(batch)))
	}
}
