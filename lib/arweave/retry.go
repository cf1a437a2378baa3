// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/weavedump/lib/clock"
)

// Retry defaults.
const (
	DefaultPendingBackoff    = 2 * time.Second
	DefaultPendingMaxBackoff = 30 * time.Second
)

// RetryConfig configures a RetryFetcher.
type RetryConfig struct {
	// Attempts is the number of retries after the first pending
	// response. Zero disables retrying.
	Attempts int

	// Backoff is the wait before the first retry, doubled after each
	// further pending response. Defaults to DefaultPendingBackoff.
	Backoff time.Duration

	// MaxBackoff caps the wait. Defaults to DefaultPendingMaxBackoff.
	MaxBackoff time.Duration

	// Clock provides timers. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// RetryFetcher wraps a ChunkFetcher and retries chunks that are
// pending propagation. Every other error is returned immediately.
type RetryFetcher struct {
	fetcher    ChunkFetcher
	attempts   int
	backoff    time.Duration
	maxBackoff time.Duration
	clock      clock.Clock
	logger     *slog.Logger
}

// NewRetryFetcher returns a fetcher that retries ErrChunkPending
// from fetcher with exponential backoff.
func NewRetryFetcher(fetcher ChunkFetcher, config RetryConfig) *RetryFetcher {
	backoff := config.Backoff
	if backoff <= 0 {
		backoff = DefaultPendingBackoff
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultPendingMaxBackoff
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryFetcher{
		fetcher:    fetcher,
		attempts:   max(config.Attempts, 0),
		backoff:    backoff,
		maxBackoff: maxBackoff,
		clock:      clk,
		logger:     logger,
	}
}

// FetchChunk fetches the chunk at offset, waiting out pending
// responses. When the retries are exhausted the last ErrChunkPending
// is returned.
func (fetcher *RetryFetcher) FetchChunk(ctx context.Context, offset int64) ([]byte, error) {
	delay := min(fetcher.backoff, fetcher.maxBackoff)
	for attempt := 0; ; attempt++ {
		chunk, err := fetcher.fetcher.FetchChunk(ctx, offset)
		if err == nil || !IsPending(err) || attempt >= fetcher.attempts {
			return chunk, err
		}

		fetcher.logger.Info("chunk pending, backing off",
			"offset", offset,
			"attempt", attempt+1,
			"delay", delay,
		)

		select {
		case <-fetcher.clock.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay = min(delay*2, fetcher.maxBackoff)
	}
}
