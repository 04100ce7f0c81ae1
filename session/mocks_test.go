// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/rokhmanov/mcp-server-pskreporter/upstream"
	"github.com/stretchr/testify/mock"
)

type mockAcquirer struct {
	mock.Mock
}

func (m *mockAcquirer) Acquire(topic string) (upstream.Lease, error) {
	args := m.Called(topic)
	l, _ := args.Get(0).(upstream.Lease)
	return l, args.Error(1)
}

type mockLease struct {
	mock.Mock
	topic string
}

func (m *mockLease) Topic() string {
	return m.topic
}

func (m *mockLease) Release() error {
	return m.Called().Error(0)
}
