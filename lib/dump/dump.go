// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/weavedump/lib/ans104"
	"github.com/bureau-foundation/weavedump/lib/arweave"
	"github.com/bureau-foundation/weavedump/lib/clock"
	"github.com/bureau-foundation/weavedump/lib/sink"
)

// ErrNotBundle is returned when the transaction's tags do not mark it
// as an ANS-104 binary bundle.
var ErrNotBundle = errors.New("given transaction by ID is not ANS-104 bundle")

// Source selects how the bundle body is fetched.
type Source string

const (
	// SourceChunks reads the body chunk by chunk.
	SourceChunks Source = "chunks"

	// SourceWhole reads the body in one request.
	SourceWhole Source = "whole"
)

// Gateway is the subset of *arweave.Client that Run uses.
type Gateway interface {
	arweave.ChunkFetcher
	FetchTransaction(ctx context.Context, id string) (*arweave.TxMetadata, error)
	FetchTransactionData(ctx context.Context, id string) ([]byte, error)
	FetchTransactionOffset(ctx context.Context, id string) (arweave.TransactionOffset, error)
}

// Options configures a Run.
type Options struct {
	// TransactionID is the bundle transaction to dump.
	TransactionID string

	// Source defaults to SourceChunks.
	Source Source

	// Retry configures retrying of pending chunks. Retry.Attempts of
	// zero fails on the first pending chunk. Clock and Logger default
	// to the ones below.
	Retry arweave.RetryConfig

	// Record controls the projection of each item.
	Record sink.RecordOptions

	// Clock measures elapsed time. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Stats summarizes a completed Run.
type Stats struct {
	TransactionID string
	Source        Source

	// Items is the number of items written.
	Items int

	// BodyBytes is the number of body bytes consumed by the decoder.
	BodyBytes int64

	// DataBytes is the total payload size of the written items.
	DataBytes int64

	Elapsed time.Duration
}

// Run dumps one bundle transaction to output. Items are written as
// they are decoded; on error, the items already written stay in
// output and the returned Stats count them. The caller closes output.
func Run(ctx context.Context, gateway Gateway, output sink.SequenceWriter, options Options) (stats Stats, err error) {
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	source := options.Source
	if source == "" {
		source = SourceChunks
	}

	stats = Stats{TransactionID: options.TransactionID, Source: source}
	started := clk.Now()
	defer func() { stats.Elapsed = clk.Now().Sub(started) }()

	metadata, err := gateway.FetchTransaction(ctx, options.TransactionID)
	if err != nil {
		return stats, fmt.Errorf("fetching transaction %s: %w", options.TransactionID, err)
	}
	if !metadata.IsBundle() {
		return stats, ErrNotBundle
	}
	logger.Info("dumping bundle",
		"transaction_id", options.TransactionID,
		"data_size", metadata.DataSize,
		"source", string(source),
	)

	body, err := openBody(ctx, gateway, source, options, clk, logger)
	if err != nil {
		return stats, err
	}
	defer body.Close()

	counted := &countingReader{reader: body}
	reader := ans104.NewReader(counted)
	count, err := reader.Count()
	if err != nil {
		return stats, fmt.Errorf("reading bundle header: %w", err)
	}
	logger.Debug("bundle header", "items", count)

	for {
		item, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.BodyBytes = counted.count
			return stats, fmt.Errorf("decoding bundle %s: %w", options.TransactionID, err)
		}
		if err := output.WriteItem(sink.NewRecord(item, options.Record)); err != nil {
			stats.BodyBytes = counted.count
			return stats, fmt.Errorf("writing item %d: %w", stats.Items, err)
		}
		stats.Items++
		stats.DataBytes += int64(len(item.Data))
		id := item.ID()
		logger.Debug("wrote item",
			"index", stats.Items-1,
			"id", base64.RawURLEncoding.EncodeToString(id[:]),
			"signature_type", item.SignatureType.String(),
			"tags", len(item.Tags),
			"data_length", len(item.Data),
		)
	}
	stats.BodyBytes = counted.count

	logger.Info("bundle dumped",
		"transaction_id", options.TransactionID,
		"items", stats.Items,
		"body_bytes", stats.BodyBytes,
		"duration", clk.Now().Sub(started),
	)
	return stats, nil
}

// openBody returns the bundle body for the selected source.
func openBody(ctx context.Context, gateway Gateway, source Source, options Options, clk clock.Clock, logger *slog.Logger) (io.ReadCloser, error) {
	switch source {
	case SourceWhole:
		data, err := gateway.FetchTransactionData(ctx, options.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("fetching data of transaction %s: %w", options.TransactionID, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil

	case SourceChunks:
		offset, err := gateway.FetchTransactionOffset(ctx, options.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("fetching offset of transaction %s: %w", options.TransactionID, err)
		}
		var fetcher arweave.ChunkFetcher = gateway
		if options.Retry.Attempts > 0 {
			retry := options.Retry
			if retry.Clock == nil {
				retry.Clock = clk
			}
			if retry.Logger == nil {
				retry.Logger = logger
			}
			fetcher = arweave.NewRetryFetcher(gateway, retry)
		}
		logger.Debug("streaming chunks",
			"size", offset.Size,
			"start_offset", offset.StartOffset(),
			"end_offset", offset.EndOffset,
		)
		return arweave.NewChunkReader(ctx, arweave.NewChunkStream(fetcher, offset)), nil

	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

// countingReader counts the bytes read through it.
type countingReader struct {
	reader io.Reader
	count  int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.count += int64(n)
	return n, err
}
