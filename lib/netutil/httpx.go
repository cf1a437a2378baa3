// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP response reading helpers.
//
// Every helper bounds how much of a response body it reads, so a
// misbehaving gateway cannot exhaust memory. ReadResponseLimit takes
// a caller-chosen bound (MaxResponseSize for JSON API bodies) and
// fails rather than silently truncating when a body exceeds it.
package netutil

import (
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 256 MB.
// Legitimate JSON responses are orders of magnitude smaller; the limit
// only guards against a pathological server.
const MaxResponseSize int64 = 256 << 20

// ErrResponseTooLarge reports a body longer than the read limit.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponseLimit reads a response body of at most limit bytes. A
// longer body is an ErrResponseTooLarge error, not a truncated read.
func ReadResponseLimit(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, limit)
	}
	return data, nil
}

// ErrorBody reads an HTTP error response body and returns it as a
// string for diagnostic error messages. Read errors are ignored: a
// partial or empty body is still useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
