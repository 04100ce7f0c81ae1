// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import "github.com/rokhmanov/mcp-server-pskreporter/model"

// ring holds the most recent spots up to its capacity.
type ring struct {
	spots []model.Spot
	start int
	size  int
}

func newRing(capacity int) ring {
	return ring{spots: make([]model.Spot, capacity)}
}

// push appends s, overwriting the oldest entry when full.
func (r *ring) push(s model.Spot) (evicted bool) {
	c := len(r.spots)
	if r.size < c {
		r.spots[(r.start+r.size)%c] = s
		r.size++
		return false
	}
	r.spots[r.start] = s
	r.start = (r.start + 1) % c
	return true
}

// items returns the held spots oldest first.
func (r *ring) items() []model.Spot {
	out := make([]model.Spot, r.size)
	c := len(r.spots)
	for i := 0; i < r.size; i++ {
		out[i] = r.spots[(r.start+i)%c]
	}
	return out
}

func (r *ring) reset() {
	clear(r.spots)
	r.start = 0
	r.size = 0
}
