// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"net/http"

	"emperror.dev/errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilAcquirer     = errors.New("an upstream acquirer is required")
	errDuplicateID     = errors.New("duplicate session id")
)

// NotFoundError is returned for operations on an id the registry does not
// hold. It matches ErrSessionNotFound with errors.Is.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return "Session " + e.ID + " not found"
}

func (e NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrSessionNotFound
}
