// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"io"
	"net/http"

	"emperror.dev/errors"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/rokhmanov/mcp-server-pskreporter/model"
	"github.com/segmentio/encoding/json"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

const (
	idVarKey        = "id"
	idVarMissingMsg = "{id} URL path parameter missing"

	// maxBodySize bounds a start request body.
	maxBodySize = 64 * 1024
)

// Response Headers
const (
	ErrorHeaderKey = "X-Pskr-Error"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func decodeStartRequest(_ context.Context, r *http.Request) (interface{}, error) {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err != nil {
		return nil, &BadRequestErr{Message: "failed to read body"}
	}

	var c model.Criteria
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, &BadRequestErr{Message: "failed to unmarshal json"}
		}
	}
	return &startRequest{criteria: c}, nil
}

func decodeSessionRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, ok := mux.Vars(r)[idVarKey]
	if !ok || id == "" {
		return nil, &BadRequestErr{Message: idVarMissingMsg}
	}
	return &sessionRequest{id: id}, nil
}

func decodeListRequest(context.Context, *http.Request) (interface{}, error) {
	return nil, nil
}

func writeJSON(rw http.ResponseWriter, code int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_, err = rw.Write(data)
	return err
}

func encodeStartResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*startResponse)
	if !ok {
		return ErrCasting
	}
	return writeJSON(rw, http.StatusCreated, r)
}

func encodeResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	switch response.(type) {
	case *stopResponse, *updatesResponse, *listResponse:
		return writeJSON(rw, http.StatusOK, response)
	default:
		return ErrCasting
	}
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(ErrorHeaderKey, err.Error())
	var headerer kithttp.Headerer
	if errors.As(err, &headerer) {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		sallust.Get(ctx).Error("request failed", zap.Int("code", code), zap.Error(err))
	}

	// nothing left to do if the body cannot be written
	_ = writeJSON(w, code, errorResponse{
		Status:  errorStatus,
		Message: err.Error(),
	})
}
