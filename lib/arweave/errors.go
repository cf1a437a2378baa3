// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrChunkPending reports a 202 Accepted from the gateway: the
	// data exists but has not propagated to the node yet. Callers may
	// retry later.
	ErrChunkPending = errors.New("arweave: chunk pending propagation")

	// ErrShortOrEmptyChunk reports a zero-length chunk, which would
	// stall reconstruction.
	ErrShortOrEmptyChunk = errors.New("arweave: empty chunk")

	// ErrChunkOverrun reports a chunk that extends past the end of
	// the transaction.
	ErrChunkOverrun = errors.New("arweave: chunk overruns transaction")

	// ErrInvalidTransactionID reports an identifier that is not a
	// 43-character base64url encoding of 32 bytes.
	ErrInvalidTransactionID = errors.New("arweave: invalid transaction id")
)

// maxErrorBodyLength bounds how much of a response body an APIError
// carries.
const maxErrorBodyLength = 512

// APIError is a non-2xx response from the gateway.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Path is the request path, relative to the gateway base URL.
	Path string

	// Body is the start of the response body, for diagnostics.
	Body string
}

func (err *APIError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("arweave: HTTP %d from %s", err.StatusCode, err.Path)
	}
	return fmt.Sprintf("arweave: HTTP %d from %s: %s", err.StatusCode, err.Path, err.Body)
}

// ChunkError attaches the weave offset to a failure while
// reconstructing a transaction.
type ChunkError struct {
	// Offset is the weave offset of the chunk being fetched.
	Offset int64

	Err error
}

func (err *ChunkError) Error() string {
	return fmt.Sprintf("chunk at offset %d: %v", err.Offset, err.Err)
}

func (err *ChunkError) Unwrap() error { return err.Err }

// IsPending reports whether err is (or wraps) ErrChunkPending.
func IsPending(err error) bool {
	return errors.Is(err, ErrChunkPending)
}

// IsNotFound reports whether err is a gateway 404 Not Found response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}
