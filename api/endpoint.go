// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"emperror.dev/errors"
	"github.com/go-kit/kit/endpoint"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	successStatus = "success"
	errorStatus   = "error"

	startedMessage = "Started monitoring for spots matching your criteria"
)

// Service is the session surface exposed over HTTP.
type Service interface {
	Start(ctx context.Context, c model.Criteria) (*session.Session, error)
	Stop(ctx context.Context, id string) error
	DrainAndSummarize(id string) (model.Summary, error)
	List() []model.SessionInfo
}

type startRequest struct {
	criteria model.Criteria
}

type sessionRequest struct {
	id string
}

type startResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Topic     string `json:"topic"`
}

type stopResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type updatesResponse struct {
	Status    string        `json:"status"`
	SessionID string        `json:"session_id"`
	Updates   model.Summary `json:"updates"`
}

type listResponse struct {
	Status   string              `json:"status"`
	Sessions []model.SessionInfo `json:"sessions"`
}

func newStartEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*startRequest)
		sess, err := s.Start(ctx, r.criteria)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, SubscribeErr{Err: err}
		}
		sallust.Get(ctx).Info("started session", zap.String("id", sess.ID), zap.String("topic", sess.Topic))
		return &startResponse{
			Status:    successStatus,
			Message:   startedMessage,
			SessionID: sess.ID,
			Topic:     sess.Topic,
		}, nil
	}
}

func newStopEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*sessionRequest)
		if err := s.Stop(ctx, r.id); err != nil {
			return nil, err
		}
		return &stopResponse{
			Status:  successStatus,
			Message: "Stopped monitoring session " + r.id,
		}, nil
	}
}

func newUpdatesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*sessionRequest)
		summary, err := s.DrainAndSummarize(r.id)
		if err != nil {
			return nil, err
		}
		return &updatesResponse{
			Status:    successStatus,
			SessionID: r.id,
			Updates:   summary,
		}, nil
	}
}

func newListEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return &listResponse{
			Status:   successStatus,
			Sessions: s.List(),
		}, nil
	}
}
