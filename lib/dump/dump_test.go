// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/weavedump/lib/ans104"
	"github.com/bureau-foundation/weavedump/lib/ans104/bundletest"
	"github.com/bureau-foundation/weavedump/lib/arweave"
	"github.com/bureau-foundation/weavedump/lib/arweave/arweavetest"
	"github.com/bureau-foundation/weavedump/lib/sink"
)

const testChunkSize = 1000

type fixture struct {
	gateway   *arweavetest.Gateway
	client    *arweave.Client
	id        string
	data      []byte
	endOffset int64
}

func newFixture(t *testing.T, tags []arweavetest.Tag, data []byte) *fixture {
	t.Helper()
	gateway := arweavetest.NewGateway(t)
	id := arweavetest.TransactionID(7)
	endOffset := gateway.AddTransaction(arweavetest.Transaction{
		ID:        id,
		Tags:      tags,
		Data:      data,
		ChunkSize: testChunkSize,
	})
	client, err := arweave.NewClient(arweave.Config{
		BaseURL:    gateway.URL(),
		HTTPClient: gateway.Client(),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &fixture{gateway: gateway, client: client, id: id, data: data, endOffset: endOffset}
}

// chunkStart returns the weave offset of the index'th chunk.
func (f *fixture) chunkStart(index int) int64 {
	return f.endOffset - int64(len(f.data)) + 1 + int64(index*testChunkSize)
}

func (f *fixture) run(t *testing.T, options Options) (Stats, []byte, error) {
	t.Helper()
	options.TransactionID = f.id
	options.Logger = discardLogger()
	var buffer bytes.Buffer
	writer := sink.NewArrayWriter(&buffer)
	stats, err := Run(context.Background(), f.client, writer, options)
	if closeErr := writer.Close(); closeErr != nil {
		t.Fatalf("Close: %v", closeErr)
	}
	return stats, buffer.Bytes(), err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunSourcesProduceIdenticalOutput(t *testing.T) {
	f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))

	chunkStats, chunkOutput, err := f.run(t, Options{Source: SourceChunks})
	if err != nil {
		t.Fatalf("chunk source: %v", err)
	}
	wholeStats, wholeOutput, err := f.run(t, Options{Source: SourceWhole})
	if err != nil {
		t.Fatalf("whole source: %v", err)
	}

	if !bytes.Equal(chunkOutput, wholeOutput) {
		t.Fatal("chunk and whole-body sources produced different output")
	}
	for _, stats := range []Stats{chunkStats, wholeStats} {
		if stats.Items != bundletest.ReferenceItemCount {
			t.Errorf("%s: Items = %d, want %d", stats.Source, stats.Items, bundletest.ReferenceItemCount)
		}
		if stats.BodyBytes != int64(len(f.data)) {
			t.Errorf("%s: BodyBytes = %d, want %d", stats.Source, stats.BodyBytes, len(f.data))
		}
	}

	var records []sink.Record
	if err := json.Unmarshal(chunkOutput, &records); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(records) != bundletest.ReferenceItemCount {
		t.Fatalf("got %d records, want %d", len(records), bundletest.ReferenceItemCount)
	}
	if got := len(records[0].Tags); got != bundletest.ReferenceFirstTagCount {
		t.Errorf("first record has %d tags, want %d", got, bundletest.ReferenceFirstTagCount)
	}
	if records[0].Data == nil {
		t.Fatal("first record has no data")
	}
}

func TestRunDefaultsToChunks(t *testing.T) {
	f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))

	stats, _, err := f.run(t, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Source != SourceChunks {
		t.Errorf("Source = %q, want %q", stats.Source, SourceChunks)
	}
	for _, path := range f.gateway.Requests() {
		if strings.HasSuffix(path, "/data") {
			t.Errorf("chunk source requested the whole body: %s", path)
		}
	}
	want := (len(f.data) + testChunkSize - 1) / testChunkSize
	if got := f.gateway.ChunkRequests(); got != want {
		t.Errorf("chunk requests = %d, want %d", got, want)
	}
}

func TestRunRejectsNonBundle(t *testing.T) {
	tests := []struct {
		name string
		tags []arweavetest.Tag
	}{
		{"no tags", nil},
		{"json bundle", []arweavetest.Tag{
			{Name: "Bundle-Format", Value: "json"},
			{Name: "Bundle-Version", Value: "2.0.0"},
		}},
		{"version 1", []arweavetest.Tag{
			{Name: "Bundle-Format", Value: "binary"},
			{Name: "Bundle-Version", Value: "1.0.0"},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t, test.tags, bundletest.Reference(t))
			stats, output, err := f.run(t, Options{})
			if !errors.Is(err, ErrNotBundle) {
				t.Fatalf("got error %v, want ErrNotBundle", err)
			}
			if stats.Items != 0 {
				t.Errorf("Items = %d, want 0", stats.Items)
			}
			if string(output) != "[\n\n]\n" {
				t.Errorf("output = %q, want empty array", output)
			}
			if requests := f.gateway.Requests(); len(requests) != 1 {
				t.Errorf("requests = %v, want only the header", requests)
			}
		})
	}
}

func TestRunPendingChunk(t *testing.T) {
	t.Run("fails without retries", func(t *testing.T) {
		f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))
		f.gateway.SetPending(f.chunkStart(2), 1)

		_, _, err := f.run(t, Options{})
		if !arweave.IsPending(err) {
			t.Fatalf("got error %v, want pending", err)
		}
	})

	t.Run("succeeds with retries", func(t *testing.T) {
		f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))
		f.gateway.SetPending(f.chunkStart(2), 2)

		stats, _, err := f.run(t, Options{Retry: arweave.RetryConfig{
			Attempts:   3,
			Backoff:    time.Millisecond,
			MaxBackoff: time.Millisecond,
		}})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if stats.Items != bundletest.ReferenceItemCount {
			t.Errorf("Items = %d, want %d", stats.Items, bundletest.ReferenceItemCount)
		}
	})
}

func TestRunTruncatedBundle(t *testing.T) {
	full := bundletest.Reference(t)
	truncated := full[:len(full)-5]

	for _, source := range []Source{SourceChunks, SourceWhole} {
		t.Run(string(source), func(t *testing.T) {
			f := newFixture(t, arweavetest.BundleTags(), truncated)
			stats, output, err := f.run(t, Options{Source: source})
			if !ans104.IsTruncated(err) {
				t.Fatalf("got error %v, want truncated", err)
			}
			var itemErr *ans104.ItemError
			if !errors.As(err, &itemErr) || itemErr.Index != bundletest.ReferenceItemCount-1 {
				t.Errorf("got error %v, want ItemError for the last item", err)
			}

			// Items before the damaged one are already written.
			if stats.Items != bundletest.ReferenceItemCount-1 {
				t.Errorf("Items = %d, want %d", stats.Items, bundletest.ReferenceItemCount-1)
			}
			var records []sink.Record
			if err := json.Unmarshal(output, &records); err != nil {
				t.Fatalf("partial output is not a JSON array: %v", err)
			}
			if len(records) != bundletest.ReferenceItemCount-1 {
				t.Errorf("got %d records, want %d", len(records), bundletest.ReferenceItemCount-1)
			}
		})
	}
}

func TestRunOmitData(t *testing.T) {
	f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))

	stats, output, err := f.run(t, Options{Record: sink.RecordOptions{OmitData: true}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var records []sink.Record
	if err := json.Unmarshal(output, &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	var total int64
	for i, record := range records {
		if record.Data != nil || record.DataSize == nil || record.DataBLAKE3 == "" {
			t.Fatalf("record %d: data not replaced by size and digest", i)
		}
		total += int64(*record.DataSize)
	}
	if *records[0].DataSize != bundletest.ReferenceFirstDataBytes {
		t.Errorf("first data_size = %d, want %d", *records[0].DataSize, bundletest.ReferenceFirstDataBytes)
	}
	if total != stats.DataBytes {
		t.Errorf("sum of data_size = %d, Stats.DataBytes = %d", total, stats.DataBytes)
	}
}

func TestRunLogsItemIDs(t *testing.T) {
	f := newFixture(t, arweavetest.BundleTags(), bundletest.Reference(t))

	var logs bytes.Buffer
	var buffer bytes.Buffer
	writer := sink.NewArrayWriter(&buffer)
	_, err := Run(context.Background(), f.client, writer, Options{
		TransactionID: f.id,
		Logger:        slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var records []sink.Record
	if err := json.Unmarshal(buffer.Bytes(), &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var logged []string
	decoder := json.NewDecoder(&logs)
	for decoder.More() {
		var entry map[string]any
		if err := decoder.Decode(&entry); err != nil {
			t.Fatalf("decoding log line: %v", err)
		}
		if entry["msg"] == "wrote item" {
			id, _ := entry["id"].(string)
			logged = append(logged, id)
		}
	}
	if len(logged) != len(records) {
		t.Fatalf("logged %d items, want %d", len(logged), len(records))
	}
	for i, record := range records {
		if logged[i] != record.ID {
			t.Errorf("item %d: logged id %q, want %q", i, logged[i], record.ID)
		}
	}
}
