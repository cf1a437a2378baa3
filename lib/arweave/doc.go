// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package arweave is a minimal client for an Arweave gateway's HTTP
// API and the chunk reconstruction that turns a transaction's offset
// range into its byte content.
//
// A transaction's data lives in the weave, a global append-only byte
// space. The gateway reports a transaction's size and the offset of
// its last byte (GET /tx/{id}/offset); the content is recovered by
// fetching chunks (GET /chunk/{offset}) starting at
// endOffset-size+1 and advancing by each chunk's length until size
// bytes have been produced. [ChunkStream] implements that walk as a
// forward-only pull sequence and [ChunkReader] presents it as an
// io.Reader, so a bundle decoder can consume a transaction while it
// downloads without buffering the whole body.
//
// Chunks that the gateway knows about but has not yet received from
// the network are answered with 202 Accepted. That surfaces as
// [ErrChunkPending], which the stream never retries on its own;
// wrap the fetcher in a [RetryFetcher] to wait for propagation.
//
// Every other non-2xx response is an [*APIError]. Use [IsPending]
// and [IsNotFound] to classify errors without type assertions.
package arweave
