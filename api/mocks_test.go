// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"

	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/rokhmanov/mcp-server-pskreporter/session"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Start(ctx context.Context, c model.Criteria) (*session.Session, error) {
	args := m.Called(ctx, c)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *mockService) Stop(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) DrainAndSummarize(id string) (model.Summary, error) {
	args := m.Called(id)
	return args.Get(0).(model.Summary), args.Error(1)
}

func (m *mockService) List() []model.SessionInfo {
	return m.Called().Get(0).([]model.SessionInfo)
}
