// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"context"
	"fmt"
	"io"
)

// ChunkFetcher fetches the chunk containing a weave offset. *Client
// and *RetryFetcher implement it.
type ChunkFetcher interface {
	FetchChunk(ctx context.Context, offset int64) ([]byte, error)
}

// ChunkStream reconstructs a transaction's data from its chunks, in
// offset order, one fetch per call to Next. Only one fetch is ever in
// flight and nothing is prefetched.
//
// ChunkStream is not safe for concurrent use.
type ChunkStream struct {
	fetcher ChunkFetcher
	offset  TransactionOffset

	// produced counts the bytes returned so far.
	produced int64

	err error
}

// NewChunkStream returns a stream over the data described by offset.
// The caller is expected to have validated offset (the client does
// for ranges it fetched).
func NewChunkStream(fetcher ChunkFetcher, offset TransactionOffset) *ChunkStream {
	return &ChunkStream{fetcher: fetcher, offset: offset}
}

// Size returns the total number of bytes the stream will produce.
func (stream *ChunkStream) Size() int64 { return stream.offset.Size }

// Produced returns the number of bytes returned so far.
func (stream *ChunkStream) Produced() int64 { return stream.produced }

// Next fetches and returns the next chunk. It returns io.EOF once
// Size bytes have been produced. Any other error is sticky and is a
// *ChunkError carrying the offset that failed: a pending chunk
// (ErrChunkPending), an empty chunk (ErrShortOrEmptyChunk), a chunk
// running past the end of the data (ErrChunkOverrun), or the
// fetcher's own failure.
func (stream *ChunkStream) Next(ctx context.Context) ([]byte, error) {
	if stream.err != nil {
		return nil, stream.err
	}
	if stream.produced >= stream.offset.Size {
		return nil, io.EOF
	}

	cursor := stream.offset.StartOffset() + stream.produced
	chunk, err := stream.fetcher.FetchChunk(ctx, cursor)
	if err == nil {
		remaining := stream.offset.Size - stream.produced
		switch {
		case len(chunk) == 0:
			err = ErrShortOrEmptyChunk
		case int64(len(chunk)) > remaining:
			err = fmt.Errorf("%w: %d bytes with %d remaining", ErrChunkOverrun, len(chunk), remaining)
		}
	}
	if err != nil {
		stream.err = &ChunkError{Offset: cursor, Err: err}
		return nil, stream.err
	}

	stream.produced += int64(len(chunk))
	return chunk, nil
}
