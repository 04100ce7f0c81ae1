// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

type mockSubscriber struct {
	mock.Mock
}

func (m *mockSubscriber) Subscribe(topic string) error {
	return m.Called(topic).Error(0)
}

func (m *mockSubscriber) Unsubscribe(topic string) error {
	return m.Called(topic).Error(0)
}

type mockAcquirer struct {
	mock.Mock
}

func (m *mockAcquirer) Acquire(topic string) (Lease, error) {
	args := m.Called(topic)
	l, _ := args.Get(0).(Lease)
	return l, args.Error(1)
}

// mockMQTT implements only the parts of mqtt.Client the Client uses.
type mockMQTT struct {
	mqtt.Client
	mock.Mock

	// routes holds every non-nil per-topic handler passed to Subscribe.
	routes map[string]mqtt.MessageHandler
}

// deliver dispatches m the way paho's router does: every route whose filter
// matches fires, and the default handler runs only when none did.
func (m *mockMQTT) deliver(msg mqtt.Message, defaultHandler mqtt.MessageHandler) {
	sent := false
	for filter, h := range m.routes {
		if topicMatches(filter, msg.Topic()) {
			h(m, msg)
			sent = true
		}
	}
	if !sent && defaultHandler != nil {
		defaultHandler(m, msg)
	}
}

func topicMatches(filter, topic string) bool {
	fs, ts := strings.Split(filter, "/"), strings.Split(topic, "/")
	for i, f := range fs {
		if f == "#" {
			return true
		}
		if i >= len(ts) || (f != "+" && f != ts[i]) {
			return false
		}
	}
	return len(fs) == len(ts)
}

func (m *mockMQTT) IsConnectionOpen() bool {
	return m.Called().Bool(0)
}

func (m *mockMQTT) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	if callback != nil {
		if m.routes == nil {
			m.routes = map[string]mqtt.MessageHandler{}
		}
		m.routes[topic] = callback
	}
	return m.Called(topic, qos).Get(0).(mqtt.Token)
}

func (m *mockMQTT) Unsubscribe(topics ...string) mqtt.Token {
	return m.Called(topics).Get(0).(mqtt.Token)
}

func (m *mockMQTT) Connect() mqtt.Token {
	return m.Called().Get(0).(mqtt.Token)
}

type testToken struct {
	mqtt.Token
	done bool
	err  error
}

func (t testToken) Wait() bool                     { return t.done }
func (t testToken) WaitTimeout(time.Duration) bool { return t.done }
func (t testToken) Error() error                   { return t.err }

type testMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m testMessage) Topic() string   { return m.topic }
func (m testMessage) Payload() []byte { return m.payload }

// gatedSubscriber records broker calls in order. Subscribe for a gated topic
// signals entered and then blocks until the gate is closed.
type gatedSubscriber struct {
	lock    sync.Mutex
	calls   []string
	gated   string
	entered chan struct{}
	gate    chan struct{}
}

func newGatedSubscriber() *gatedSubscriber {
	return &gatedSubscriber{
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
}

func (g *gatedSubscriber) hold(topic string) {
	g.lock.Lock()
	g.gated = topic
	g.lock.Unlock()
}

func (g *gatedSubscriber) Subscribe(topic string) error {
	g.lock.Lock()
	g.calls = append(g.calls, "subscribe "+topic)
	wait := topic == g.gated
	g.lock.Unlock()

	if wait {
		g.entered <- struct{}{}
		<-g.gate
	}
	return nil
}

func (g *gatedSubscriber) Unsubscribe(topic string) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.calls = append(g.calls, "unsubscribe "+topic)
	return nil
}

func (g *gatedSubscriber) Calls() []string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return append([]string(nil), g.calls...)
}
