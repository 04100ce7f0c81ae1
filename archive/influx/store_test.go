// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package influx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriteAPI struct {
	mock.Mock
}

func (m *mockWriteAPI) WriteRecord(ctx context.Context, line ...string) error {
	return m.Called(line).Error(0)
}

func (m *mockWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	return m.Called(point).Error(0)
}

var testSpot = model.Spot{
	Time:      model.Timestamp{Time: time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC)},
	Callsign:  "JA1ABC",
	Frequency: 14.074,
	Mode:      "FT8",
	Locator:   "PM95",
	SNR:       -7,
	Country:   "Japan",
	Band:      "20m",
}

func TestPoint(t *testing.T) {
	line := write.PointToLineProtocol(Point("spot", testSpot), time.Second)
	for _, part := range []string{"spot,", "band=20m", "callsign=JA1ABC", "mode=FT8", "frequency=14.074", "snr=-7i", " 1620000000"} {
		assert.Contains(t, line, part)
	}

	noBand := testSpot
	noBand.Band = ""
	assert.NotContains(t, write.PointToLineProtocol(Point("spot", noBand), time.Second), "band=")
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, errNoURL)

	s, err := New(Config{URL: "http://localhost:8086"})
	require.NoError(t, err)
	assert.Equal(t, defaultMeasurement, s.measurement)
	assert.Equal(t, "influx", s.Name())
	assert.NoError(t, s.Close())
}

func TestWrite(t *testing.T) {
	errDown := errors.New("influx down")

	w := new(mockWriteAPI)
	w.On("WritePoint", mock.MatchedBy(func(p []*write.Point) bool { return len(p) == 2 })).Return(nil).Once()
	w.On("WritePoint", mock.Anything).Return(errDown).Once()

	s := &Store{write: w, measurement: "spot"}
	assert.NoError(t, s.Write(context.Background(), []model.Spot{testSpot, testSpot}))
	assert.ErrorIs(t, s.Write(context.Background(), []model.Spot{testSpot}), errDown)
	assert.NoError(t, s.Write(context.Background(), nil))
	w.AssertNumberOfCalls(t, "WritePoint", 2)
}
