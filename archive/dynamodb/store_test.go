// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.BatchWriteItemOutput)
	return out, args.Error(1)
}

var testTime = time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC)

func testSpot(call string, mhz float64) model.Spot {
	return model.Spot{
		Time:      model.Timestamp{Time: testTime},
		Callsign:  call,
		Frequency: mhz,
		Mode:      "FT8",
		Locator:   "PM95",
		SNR:       -7,
		Country:   "Japan",
		Band:      "20m",
	}
}

func capacity(units float64) []types.ConsumedCapacity {
	return []types.ConsumedCapacity{{CapacityUnits: aws.Float64(units)}}
}

func TestWriteChunksAndDedups(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var spots []model.Spot
	for i := 0; i < 30; i++ {
		spots = append(spots, testSpot(fmt.Sprintf("JA%dABC", i), 14.074))
	}
	spots = append(spots, testSpot("JA0ABC", 14.074))

	c := new(mockClient)
	var sizes []int
	c.On("BatchWriteItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*dynamodb.BatchWriteItemInput)
		sizes = append(sizes, len(in.RequestItems[defaultTable]))
	}).Return(&dynamodb.BatchWriteItemOutput{ConsumedCapacity: capacity(2)}, nil)

	var used float64
	s := newStore(c, Config{}, func(u float64) { used += u }, zaptest.NewLogger(t))
	require.NoError(s.Write(context.Background(), spots))

	assert.Equal([]int{25, 5}, sizes)
	assert.Equal(float64(4), used)
	assert.Equal("dynamodb", s.Name())
	assert.NoError(s.Close())
}

func TestWriteRecord(t *testing.T) {
	c := new(mockClient)
	var item map[string]types.AttributeValue
	c.On("BatchWriteItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		in := args.Get(1).(*dynamodb.BatchWriteItemInput)
		item = in.RequestItems["spots"][0].PutRequest.Item
	}).Return(&dynamodb.BatchWriteItemOutput{}, nil)

	s := newStore(c, Config{Table: "spots", TTL: time.Hour}, nil, zaptest.NewLogger(t))
	s.now = func() time.Time { return testTime }
	require.NoError(t, s.Write(context.Background(), []model.Spot{testSpot("JA1ABC", 14.074)}))

	var r record
	require.NoError(t, attributevalue.UnmarshalMap(item, &r))
	assert.Equal(t, "JA1ABC", r.Callsign)
	assert.Equal(t, "1620000000#14.074#FT8", r.Key)
	assert.Equal(t, "20m", r.Band)
	require.NotNil(t, r.Expires)
	assert.Equal(t, testTime.Add(time.Hour).Unix(), *r.Expires)
}

func TestWriteRetriesUnprocessed(t *testing.T) {
	left := map[string][]types.WriteRequest{defaultTable: {{PutRequest: &types.PutRequest{}}}}

	tests := []struct {
		description string
		maxRetries  int
		leftovers   int
		expectedErr error
	}{
		{
			description: "Unprocessed then done",
			maxRetries:  2,
			leftovers:   1,
		},
		{
			description: "Gives up",
			maxRetries:  1,
			leftovers:   5,
			expectedErr: errUnprocessed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			c := new(mockClient)
			c.On("BatchWriteItem", mock.Anything, mock.Anything).
				Return(&dynamodb.BatchWriteItemOutput{UnprocessedItems: left}, nil).Times(tc.leftovers)
			c.On("BatchWriteItem", mock.Anything, mock.Anything).
				Return(&dynamodb.BatchWriteItemOutput{}, nil)

			s := newStore(c, Config{MaxRetries: tc.maxRetries}, nil, zaptest.NewLogger(t))
			err := s.Write(context.Background(), []model.Spot{testSpot("JA1ABC", 14.074)})
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				c.AssertNumberOfCalls(t, "BatchWriteItem", tc.leftovers+1)
				return
			}
			assert.ErrorIs(t, err, tc.expectedErr)
			c.AssertNumberOfCalls(t, "BatchWriteItem", tc.maxRetries+1)
		})
	}
}

func TestWriteClientError(t *testing.T) {
	errThrottled := errors.New("throttled")
	c := new(mockClient)
	c.On("BatchWriteItem", mock.Anything, mock.Anything).Return(nil, errThrottled)

	s := newStore(c, Config{}, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, s.Write(context.Background(), []model.Spot{testSpot("JA1ABC", 14.074)}), errThrottled)
	assert.NoError(t, s.Write(context.Background(), nil))
}
