// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// RequestLogger returns a middleware that puts a logger carrying the
// request's method, path and remote address into the request context.
func RequestLogger(logger *zap.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			l := logger.With(
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remoteAddr", r.RemoteAddr),
			)
			next.ServeHTTP(rw, r.WithContext(sallust.With(r.Context(), l)))
		})
	}
}
