// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import "io"

// boundedReader exposes exactly limit bytes of a shared underlying
// reader and then reports io.EOF. Unlike io.LimitedReader, an
// underlying EOF before the limit is reached surfaces as
// io.ErrUnexpectedEOF: the table row promised those bytes, so running
// out early is truncation, not a short item.
type boundedReader struct {
	reader    io.Reader
	remaining int64
}

func newBoundedReader(r io.Reader, limit int64) *boundedReader {
	return &boundedReader{reader: r, remaining: limit}
}

func (br *boundedReader) Read(p []byte) (int, error) {
	if br.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > br.remaining {
		p = p[:br.remaining]
	}

	bytesRead, err := br.reader.Read(p)
	br.remaining -= int64(bytesRead)

	if err == io.EOF {
		if br.remaining > 0 {
			return bytesRead, io.ErrUnexpectedEOF
		}
		return bytesRead, nil
	}
	return bytesRead, err
}

// Remaining returns the number of bytes not yet read.
func (br *boundedReader) Remaining() int64 {
	return br.remaining
}
