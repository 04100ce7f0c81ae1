// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package spot

import (
	"fmt"

	"emperror.dev/errors"
)

// ErrMalformedEvent is matched by every decoding failure of an upstream payload.
var ErrMalformedEvent = errors.New("malformed event")

// MalformedEventError describes why a payload could not be normalized.
type MalformedEventError struct {
	Reason string
	Err    error
}

func (e MalformedEventError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrMalformedEvent, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformedEvent, e.Reason, e.Err)
}

func (e MalformedEventError) Unwrap() error {
	return e.Err
}

func (e MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}
