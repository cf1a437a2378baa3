// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrTruncatedInput reports that the input ended before a
	// fixed-length field (or an item's declared length) was
	// satisfied.
	ErrTruncatedInput = errors.New("ans104: truncated input")

	// ErrMalformedInput reports structurally invalid input: a
	// presence flag other than 0 or 1, or a tag count that does not
	// match the decoded tags.
	ErrMalformedInput = errors.New("ans104: malformed input")

	// ErrUnsupportedSignature reports a signature type missing from
	// the signature table.
	ErrUnsupportedSignature = errors.New("ans104: unsupported signature type")

	// ErrSchemaDecode reports a tag blob that is not a valid Avro
	// array of {name, value} string records.
	ErrSchemaDecode = errors.New("ans104: tag schema decode failed")

	// ErrCountOverflow reports a 256-bit counter whose value does not
	// fit the supported range.
	ErrCountOverflow = errors.New("ans104: counter overflow")
)

// ItemError attributes a decode failure to one row of the bundle
// table.
type ItemError struct {
	// Index is the zero-based table row.
	Index int

	// DeclaredLength is the row's length from the bundle table.
	DeclaredLength int64

	Err error
}

func (err *ItemError) Error() string {
	return fmt.Sprintf("bundle item %d (declared length %d): %v", err.Index, err.DeclaredLength, err.Err)
}

func (err *ItemError) Unwrap() error { return err.Err }

// IsTruncated reports whether err is (or wraps) ErrTruncatedInput.
func IsTruncated(err error) bool { return errors.Is(err, ErrTruncatedInput) }

// IsMalformed reports whether err is (or wraps) ErrMalformedInput.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformedInput) }

// readError classifies an error from a fixed-length read. A short
// read becomes ErrTruncatedInput; anything else (a transport failure
// surfacing through the reader) is passed through untouched so the
// caller can still match it.
func readError(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("reading %s: %w", field, ErrTruncatedInput)
	}
	return fmt.Errorf("reading %s: %w", field, err)
}
