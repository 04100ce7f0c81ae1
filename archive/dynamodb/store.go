// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dynamodb

import (
	"context"
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"go.uber.org/zap"
)

const (
	defaultTable      = "pskr_spots"
	defaultMaxRetries = 3

	// maxBatch is the BatchWriteItem request limit.
	maxBatch = 25
)

var errUnprocessed = errors.New("dynamodb left items unprocessed")

type Config struct {
	Table      string
	Endpoint   string
	Region     string
	MaxRetries int
	AccessKey  string
	SecretKey  string

	// TTL sets an expiry attribute on every item when positive.
	TTL time.Duration
}

func (c *Config) setDefaults() {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
}

// client captures the methods of interest from the dynamoDB API.
type client interface {
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// record is the stored form of a spot. Items are keyed by callsign and a
// sort key unique to a reception.
type record struct {
	Callsign    string  `dynamodbav:"callsign"`
	Key         string  `dynamodbav:"spot"`
	Time        int64   `dynamodbav:"time"`
	Frequency   float64 `dynamodbav:"frequency"`
	Mode        string  `dynamodbav:"mode"`
	Locator     string  `dynamodbav:"locator"`
	SNR         int     `dynamodbav:"snr"`
	Country     string  `dynamodbav:"country"`
	CountryCode string  `dynamodbav:"country_code,omitempty"`
	Band        string  `dynamodbav:"band,omitempty"`
	Expires     *int64  `dynamodbav:"expires,omitempty"`
}

func sortKey(s model.Spot) string {
	return strconv.FormatInt(s.Time.Unix(), 10) + "#" +
		strconv.FormatFloat(s.Frequency, 'f', -1, 64) + "#" + s.Mode
}

// Store writes spots to a DynamoDB table.
type Store struct {
	client     client
	config     Config
	logger     *zap.Logger
	onCapacity func(float64)
	now        func() time.Time
}

// New builds a Store from config using the default AWS credential chain,
// unless static keys are configured.
func New(ctx context.Context, config Config, onCapacity func(float64), logger *zap.Logger) (*Store, error) {
	config.setDefaults()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(config.MaxRetries),
	}
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKey, config.SecretKey, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	c := dynamodb.NewFromConfig(awsConfig, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	return newStore(c, config, onCapacity, logger), nil
}

func newStore(c client, config Config, onCapacity func(float64), logger *zap.Logger) *Store {
	config.setDefaults()
	if onCapacity == nil {
		onCapacity = func(float64) {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:     c,
		config:     config,
		logger:     logger,
		onCapacity: onCapacity,
		now:        time.Now,
	}
}

func (s *Store) Name() string {
	return "dynamodb"
}

// Write stores spots in chunks of at most 25 items. Spots sharing a key in
// one call are written once.
func (s *Store) Write(ctx context.Context, spots []model.Spot) error {
	requests, err := s.requests(spots)
	if err != nil {
		return err
	}
	for len(requests) > 0 {
		n := min(len(requests), maxBatch)
		if err := s.batch(ctx, requests[:n]); err != nil {
			return err
		}
		requests = requests[n:]
	}
	return nil
}

func (s *Store) requests(spots []model.Spot) ([]types.WriteRequest, error) {
	var expires *int64
	if s.config.TTL > 0 {
		e := s.now().Add(s.config.TTL).Unix()
		expires = &e
	}

	seen := make(map[string]struct{}, len(spots))
	out := make([]types.WriteRequest, 0, len(spots))
	for _, spot := range spots {
		r := record{
			Callsign:    spot.Callsign,
			Key:         sortKey(spot),
			Time:        spot.Time.Unix(),
			Frequency:   spot.Frequency,
			Mode:        spot.Mode,
			Locator:     spot.Locator,
			SNR:         spot.SNR,
			Country:     spot.Country,
			CountryCode: spot.CountryCode,
			Band:        spot.Band,
			Expires:     expires,
		}
		id := r.Callsign + "/" + r.Key
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		av, err := attributevalue.MarshalMap(r)
		if err != nil {
			return nil, errors.WrapWithDetails(err, "failed to marshal spot", "callsign", spot.Callsign)
		}
		out = append(out, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}
	return out, nil
}

func (s *Store) batch(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.config.Table: requests}
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems:           pending,
			ReturnConsumedCapacity: types.ReturnConsumedCapacityTotal,
		})
		if err != nil {
			return errors.WrapWithDetails(err, "dynamodb batch write failed", "table", s.config.Table)
		}
		for _, c := range out.ConsumedCapacity {
			if c.CapacityUnits != nil {
				s.onCapacity(*c.CapacityUnits)
			}
		}
		if len(out.UnprocessedItems[s.config.Table]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
		s.logger.Debug("retrying unprocessed items", zap.Int("count", len(pending[s.config.Table])), zap.Int("attempt", attempt+1))
	}
	return errors.WithDetails(errUnprocessed, "count", len(pending[s.config.Table]))
}

func (s *Store) Close() error {
	return nil
}
