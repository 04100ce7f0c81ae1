// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestShared(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sub := new(mockSubscriber)
	sub.On("Subscribe", DefaultSharedPattern).Return(nil).Once()
	sub.On("Unsubscribe", DefaultSharedPattern).Return(nil).Once()
	tr := NewTracker(sub, zaptest.NewLogger(t))

	s := NewShared(tr, "")
	assert.Equal(DefaultSharedPattern, s.Pattern())
	require.NoError(s.Open())
	require.NoError(s.Open())
	assert.Equal(1, tr.Refs(DefaultSharedPattern))

	l, err := s.Acquire(testTopic)
	require.NoError(err)
	assert.Equal(testTopic, l.Topic())
	assert.NoError(l.Release())
	assert.Zero(tr.Refs(testTopic))

	_, err = s.Acquire("")
	assert.ErrorIs(err, ErrEmptyTopic)

	require.NoError(s.Close())
	require.NoError(s.Close())
	assert.Empty(tr.Topics())
	sub.AssertExpectations(t)
}

func TestSharedOpenFailure(t *testing.T) {
	base := new(mockAcquirer)
	base.On("Acquire", "custom/#").Return(nil, ErrEmptyTopic)

	s := NewShared(base, "custom/#")
	assert.ErrorIs(t, s.Open(), ErrEmptyTopic)
	assert.NoError(t, s.Close())
}
