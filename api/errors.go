// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package api

import "net/http"

type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

// SubscribeErr is returned when the broker subscription for a new session
// could not be made.
type SubscribeErr struct {
	Err error
}

func (se SubscribeErr) Error() string {
	return "failed to subscribe: " + se.Err.Error()
}

func (se SubscribeErr) Unwrap() error {
	return se.Err
}

func (se SubscribeErr) StatusCode() int {
	return http.StatusBadGateway
}
