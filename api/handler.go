// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	kithttp "github.com/go-kit/kit/transport/http"
)

type Handler http.Handler

func newStartHandler(s Service) Handler {
	return kithttp.NewServer(
		newStartEndpoint(s),
		decodeStartRequest,
		encodeStartResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newStopHandler(s Service) Handler {
	return kithttp.NewServer(
		newStopEndpoint(s),
		decodeSessionRequest,
		encodeResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newUpdatesHandler(s Service) Handler {
	return kithttp.NewServer(
		newUpdatesEndpoint(s),
		decodeSessionRequest,
		encodeResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func newListHandler(s Service) Handler {
	return kithttp.NewServer(
		newListEndpoint(s),
		decodeListRequest,
		encodeResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}
