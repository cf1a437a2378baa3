// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"context"
	"errors"
	"io"
)

// errReaderClosed is returned by Read after Close.
var errReaderClosed = errors.New("arweave: read from closed chunk reader")

// ChunkReader adapts a ChunkStream to io.ReadCloser. Each Read copies
// from the current chunk and fetches the next one only when the
// current one is exhausted, so at most one chunk is held in memory.
// Stream failures are returned from Read unchanged, with the
// stream's io.EOF marking the end of the data.
//
// io.Reader has no context parameter, so the context for fetches is
// bound at construction. Cancelling it fails the next fetch.
type ChunkReader struct {
	ctx    context.Context
	stream *ChunkStream

	// pending is the unread remainder of the current chunk.
	pending []byte

	err error
}

// NewChunkReader returns a reader over stream's bytes.
func NewChunkReader(ctx context.Context, stream *ChunkStream) *ChunkReader {
	return &ChunkReader{ctx: ctx, stream: stream}
}

func (reader *ChunkReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, reader.err
	}
	for len(reader.pending) == 0 {
		if reader.err != nil {
			return 0, reader.err
		}
		chunk, err := reader.stream.Next(reader.ctx)
		if err != nil {
			reader.err = err
			return 0, err
		}
		reader.pending = chunk
	}
	bytesRead := copy(p, reader.pending)
	reader.pending = reader.pending[bytesRead:]
	return bytesRead, nil
}

// Close drops the buffered chunk. Later reads fail. Every fetch
// releases its HTTP response before returning, so there is no
// connection to tear down.
func (reader *ChunkReader) Close() error {
	reader.pending = nil
	if reader.err == nil || reader.err == io.EOF {
		reader.err = errReaderClosed
	}
	return nil
}
