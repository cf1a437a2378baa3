// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// readCounter reads a 32-byte little-endian unsigned counter (item
// count or item length). The format allows 256-bit values; only the
// lower 128 bits are meaningful and the upper 16 bytes must be zero.
// Go readers address bytes with int64, so the value must also fit
// below math.MaxInt64. Anything larger is ErrCountOverflow.
func readCounter(r io.Reader, field string) (int64, error) {
	var raw [32]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return 0, readError(field, err)
	}
	low := binary.LittleEndian.Uint64(raw[0:8])
	middle := binary.LittleEndian.Uint64(raw[8:16])
	upperHalf := binary.LittleEndian.Uint64(raw[16:24]) | binary.LittleEndian.Uint64(raw[24:32])

	if upperHalf != 0 {
		return 0, fmt.Errorf("%s: upper 128 bits are non-zero: %w", field, ErrCountOverflow)
	}
	if middle != 0 || low > math.MaxInt64 {
		return 0, fmt.Errorf("%s: value exceeds %d: %w", field, int64(math.MaxInt64), ErrCountOverflow)
	}
	return int64(low), nil
}

// readUint64 reads an 8-byte little-endian unsigned integer.
func readUint64(r io.Reader, field string) (uint64, error) {
	var raw [8]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return 0, readError(field, err)
	}
	return binary.LittleEndian.Uint64(raw[:]), nil
}

// readBytes reads exactly length bytes.
func readBytes(r io.Reader, length int, field string) ([]byte, error) {
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, readError(field, err)
	}
	return data, nil
}
