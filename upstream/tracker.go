// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"sort"
	"sync"

	"emperror.dev/errors"
	"go.uber.org/zap"
)

// Tracker reference counts topics over a Subscriber. The broker subscription
// is made on the first reference and removed with the last one.
//
// Broker calls for one topic are serialized by that topic's lock. Calls for
// different topics do not wait on each other.
type Tracker struct {
	lock   sync.Mutex
	sub    Subscriber
	refs   map[string]int
	locks  map[string]*topicLock
	logger *zap.Logger

	// onChange is called with the number of distinct topics after each change.
	onChange func(int)
}

type topicLock struct {
	sync.Mutex
	removed bool
}

// NewTracker builds a Tracker over sub.
func NewTracker(sub Subscriber, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		sub:      sub,
		refs:     map[string]int{},
		locks:    map[string]*topicLock{},
		logger:   logger,
		onChange: func(int) {},
	}
}

// lockTopic returns the held lock for topic.
func (t *Tracker) lockTopic(topic string) *topicLock {
	for {
		t.lock.Lock()
		tl, ok := t.locks[topic]
		if !ok {
			tl = new(topicLock)
			t.locks[topic] = tl
		}
		t.lock.Unlock()

		tl.Lock()
		if !tl.removed {
			return tl
		}
		// dropped while we waited, look again
		tl.Unlock()
	}
}

// unlockTopic releases tl and drops it once topic has no references.
func (t *Tracker) unlockTopic(topic string, tl *topicLock) {
	t.lock.Lock()
	if t.refs[topic] == 0 {
		tl.removed = true
		delete(t.locks, topic)
	}
	t.lock.Unlock()
	tl.Unlock()
}

// Acquire takes a reference on topic. When the broker is unreachable the
// reference is still recorded and the subscription is replayed by Resubscribe
// once the connection is back.
func (t *Tracker) Acquire(topic string) (Lease, error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	tl := t.lockTopic(topic)
	defer t.unlockTopic(topic, tl)

	if t.Refs(topic) == 0 {
		err := t.sub.Subscribe(topic)
		switch {
		case errors.Is(err, ErrUpstreamUnavailable):
			t.logger.Warn("broker unavailable, subscription deferred until reconnect", zap.String("topic", topic))
		case err != nil:
			return nil, errors.WrapWithDetails(err, "failed to subscribe", "topic", topic)
		}
	}

	t.lock.Lock()
	t.refs[topic]++
	t.onChange(len(t.refs))
	t.lock.Unlock()

	return &lease{topic: topic, tracker: t}, nil
}

func (t *Tracker) release(topic string) error {
	tl := t.lockTopic(topic)
	defer t.unlockTopic(topic, tl)

	t.lock.Lock()
	n, ok := t.refs[topic]
	if !ok || n > 1 {
		if ok {
			t.refs[topic] = n - 1
		}
		t.lock.Unlock()
		return nil
	}
	delete(t.refs, topic)
	t.onChange(len(t.refs))
	t.lock.Unlock()

	err := t.sub.Unsubscribe(topic)
	if errors.Is(err, ErrUpstreamUnavailable) {
		// nothing to undo on the broker, the topic will not be replayed
		return nil
	}
	if err != nil {
		return errors.WrapWithDetails(err, "failed to unsubscribe", "topic", topic)
	}
	return nil
}

// Refs returns the reference count held on topic.
func (t *Tracker) Refs(topic string) int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.refs[topic]
}

// Topics returns the referenced topics in lexical order.
func (t *Tracker) Topics() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	topics := make([]string, 0, len(t.refs))
	for topic := range t.refs {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Resubscribe subscribes every referenced topic again. It is called after the
// broker connection is (re)established. A topic released after the replay
// began is skipped.
func (t *Tracker) Resubscribe() {
	for _, topic := range t.Topics() {
		t.resubscribe(topic)
	}
}

func (t *Tracker) resubscribe(topic string) {
	tl := t.lockTopic(topic)
	defer t.unlockTopic(topic, tl)

	if t.Refs(topic) == 0 {
		return
	}
	if err := t.sub.Subscribe(topic); err != nil {
		t.logger.Error("failed to resubscribe", zap.String("topic", topic), zap.Error(err))
		return
	}
	t.logger.Debug("resubscribed", zap.String("topic", topic))
}

type lease struct {
	topic   string
	tracker *Tracker
	once    sync.Once
}

func (l *lease) Topic() string {
	return l.topic
}

func (l *lease) Release() (err error) {
	l.once.Do(func() {
		err = l.tracker.release(l.topic)
	})
	return err
}
