// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// APIBase is the path prefix of every session route.
const APIBase = "/api/v1"

// Mount registers the session routes on r.
func Mount(r *mux.Router, h Handlers) {
	s := r.PathPrefix(APIBase).Subrouter()
	s.Handle("/subscriptions", h.Start).Methods(http.MethodPost)
	s.Handle("/subscriptions", h.List).Methods(http.MethodGet)
	s.Handle("/subscriptions/{id}", h.Stop).Methods(http.MethodDelete)
	s.Handle("/subscriptions/{id}/updates", h.Updates).Methods(http.MethodGet)
}
