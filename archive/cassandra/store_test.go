// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Insert(ctx context.Context, spots []model.Spot, ttl int) error {
	return m.Called(spots, ttl).Error(0)
}

func (m *mockExecutor) Close() {
	m.Called()
}

func (m *mockExecutor) Ping() error {
	return m.Called().Error(0)
}

func TestWrite(t *testing.T) {
	spots := []model.Spot{{Callsign: "JA1ABC", Frequency: 14.074, Mode: "FT8"}}
	errTimeout := errors.New("write timeout")

	tests := []struct {
		description string
		spots       []model.Spot
		insertErr   error
		expectCall  bool
	}{
		{
			description: "Success",
			spots:       spots,
			expectCall:  true,
		},
		{
			description: "Insert failure",
			spots:       spots,
			insertErr:   errTimeout,
			expectCall:  true,
		},
		{
			description: "Nothing to write",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			e := new(mockExecutor)
			e.On("Insert", tc.spots, 3600).Return(tc.insertErr)

			config := Config{TTL: time.Hour}
			validateConfig(&config)
			s := newStore(e, config, zaptest.NewLogger(t))

			err := s.Write(context.Background(), tc.spots)
			if tc.insertErr != nil {
				assert.ErrorIs(t, err, tc.insertErr)
			} else {
				assert.NoError(t, err)
			}
			if tc.expectCall {
				e.AssertCalled(t, "Insert", tc.spots, 3600)
			} else {
				e.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPingAndClose(t *testing.T) {
	e := new(mockExecutor)
	e.On("Ping").Return(serverClosed).Once()
	e.On("Ping").Return(nil).Once()
	e.On("Close").Return().Once()

	s := newStore(e, Config{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, s.Ping(), serverClosed)
	assert.NoError(t, s.Ping())
	assert.NoError(t, s.Close())
	assert.Equal(t, "yugabyte", s.Name())
	e.AssertExpectations(t)
}

func TestNewRequiresHosts(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, errNoHosts)
}

func TestValidateConfig(t *testing.T) {
	c := Config{TTL: -time.Second, NumRetries: -1}
	validateConfig(&c)
	assert.Equal(t, Config{
		Database:        defaultDatabase,
		OpTimeout:       defaultOpTimeout,
		WaitTimeMult:    defaultWaitTimeMult,
		MaxConnsPerHost: defaultMaxNumberConnsPerHost,
		PingInterval:    defaultPingInterval,
	}, c)
}
