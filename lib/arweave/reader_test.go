// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"testing/iotest"
)

func TestChunkReaderMatchesSource(t *testing.T) {
	fetcher := &sliceFetcher{data: patterned(10_000), startOffset: 77, chunkSize: 1024}
	reader := NewChunkReader(context.Background(), NewChunkStream(fetcher, fetcher.offset()))
	if err := iotest.TestReader(reader, fetcher.data); err != nil {
		t.Fatal(err)
	}
}

func TestChunkReaderSmallReads(t *testing.T) {
	fetcher := &sliceFetcher{data: patterned(3000), startOffset: 0, chunkSize: 700}
	reader := NewChunkReader(context.Background(), NewChunkStream(fetcher, fetcher.offset()))

	// Read in 7-byte pieces: each chunk is consumed before the next
	// is fetched.
	var got bytes.Buffer
	buffer := make([]byte, 7)
	for {
		bytesRead, err := reader.Read(buffer)
		got.Write(buffer[:bytesRead])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if fetched := int64(len(fetcher.calls)) * 700; fetched < int64(got.Len()) {
			t.Fatalf("returned %d bytes with only %d fetched", got.Len(), fetched)
		}
		if fetched := int64(len(fetcher.calls)-1) * 700; fetched >= int64(got.Len()) && got.Len() > 0 {
			t.Fatalf("fetched chunk %d before %d bytes were read", len(fetcher.calls), got.Len())
		}
	}
	if !bytes.Equal(got.Bytes(), fetcher.data) {
		t.Fatalf("read %d bytes that differ from the source", got.Len())
	}
}

func TestChunkReaderSurfacesStreamErrors(t *testing.T) {
	fetcher := &sliceFetcher{data: patterned(600), startOffset: 0, chunkSize: 256}
	fetcher.errs = map[int64]error{256: fmt.Errorf("wrapped: %w", ErrChunkPending)}
	reader := NewChunkReader(context.Background(), NewChunkStream(fetcher, fetcher.offset()))

	data, err := io.ReadAll(reader)
	if len(data) != 256 {
		t.Errorf("read %d bytes before the failure, want 256", len(data))
	}
	if !IsPending(err) {
		t.Fatalf("error = %v, want ErrChunkPending", err)
	}
	if _, again := reader.Read(make([]byte, 1)); !IsPending(again) {
		t.Errorf("second Read error = %v, want the same pending error", again)
	}
}

func TestChunkReaderClose(t *testing.T) {
	fetcher := &sliceFetcher{data: patterned(600), startOffset: 0, chunkSize: 256}
	reader := NewChunkReader(context.Background(), NewChunkStream(fetcher, fetcher.offset()))

	if _, err := reader.Read(make([]byte, 10)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := reader.Read(make([]byte, 10)); err == nil || err == io.EOF {
		t.Fatalf("Read after Close = %v, want an error", err)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("made %d fetches, want 1", len(fetcher.calls))
	}
}
