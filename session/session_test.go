// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(i int) model.Spot {
	return model.Spot{Callsign: "K" + strconv.Itoa(i), SNR: i, Frequency: 14.074, Mode: "FT8"}
}

func TestAppendEvictsOldest(t *testing.T) {
	assert := assert.New(t)

	s := newSession("session_1_a", model.Criteria{}, "t", testNow, DefaultCapacity, nil)
	evictions := 0
	for i := 0; i < 150; i++ {
		if s.Append(numbered(i)) {
			evictions++
		}
	}
	assert.Equal(50, evictions)
	assert.Equal(DefaultCapacity, s.Len())

	spots := s.Drain(testNow)
	require.Len(t, spots, DefaultCapacity)
	for i, spot := range spots {
		assert.Equal(50+i, spot.SNR)
	}
	assert.Zero(s.Len())
}

func TestDrainUpdatesLastPulled(t *testing.T) {
	s := newSession("session_1_a", model.Criteria{}, "t", testNow, 4, nil)
	assert.Equal(t, testNow, s.LastPulled())

	later := testNow.Add(time.Hour)
	assert.Empty(t, s.Drain(later))
	assert.Equal(t, later, s.LastPulled())
}

func TestSessionMatches(t *testing.T) {
	s := newSession("session_1_a", model.Criteria{Mode: "FT8", SenderLocator: "PM"}, "t", testNow, 4, nil)
	assert.True(t, s.Matches(model.Spot{Mode: "ft8", Locator: "PM95"}))
	assert.False(t, s.Matches(model.Spot{Mode: "CW", Locator: "PM95"}))
	assert.False(t, s.Matches(model.Spot{Mode: "FT8", Locator: "FN42"}))

	// looser than the topic filter: a lowercase square covers its subsquares
	s = newSession("session_2_b", model.Criteria{SenderLocator: "pm95"}, "t", testNow, 4, nil)
	assert.True(t, s.Matches(model.Spot{Locator: "PM95SQ"}))
	assert.True(t, s.Matches(model.Spot{Locator: "pm95"}))
	assert.False(t, s.Matches(model.Spot{Locator: "PM9"}))
}

func TestConcurrentAppendAndDrain(t *testing.T) {
	const total = 20000

	s := newSession("session_1_a", model.Criteria{}, "t", testNow, total, nil)

	var (
		wg      sync.WaitGroup
		drained []model.Spot
		done    = make(chan struct{})
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			s.Append(numbered(i))
		}
		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				drained = append(drained, s.Drain(testNow)...)
			}
		}
	}()

	wg.Wait()
	drained = append(drained, s.Drain(testNow)...)

	require.Len(t, drained, total)
	for i, spot := range drained {
		// single producer, so order is preserved across drains
		require.Equal(t, i, spot.SNR)
	}
}

func TestRing(t *testing.T) {
	r := newRing(3)
	assert.Empty(t, r.items())

	for i := 0; i < 3; i++ {
		assert.False(t, r.push(numbered(i)))
	}
	assert.True(t, r.push(numbered(3)))
	assert.True(t, r.push(numbered(4)))

	items := r.items()
	require.Len(t, items, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{items[0].SNR, items[1].SNR, items[2].SNR})

	r.reset()
	assert.Empty(t, r.items())
	assert.False(t, r.push(numbered(5)))
	assert.Equal(t, 5, r.items()[0].SNR)
}
