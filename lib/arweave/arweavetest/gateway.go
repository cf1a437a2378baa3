// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package arweavetest provides an in-process Arweave gateway for
// tests.
//
// Gateway serves the four endpoints the dumper uses (transaction
// header, whole body, offset, chunk) from an httptest.Server. Each
// added transaction is laid into a simulated weave at increasing
// offsets and split into fixed-size chunks. Hooks make individual
// chunks answer 202 Accepted for a number of requests, or replace
// their bytes, to exercise the client's failure handling.
package arweavetest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// DefaultChunkSize is the chunk size used when a transaction does not
// set one: 256 KiB, the Arweave maximum.
const DefaultChunkSize = 256 << 10

// weaveBase is the weave offset of the first byte the gateway lays
// down, so offsets in tests are not small numbers that could be
// confused with sizes.
const weaveBase = 1 << 30

// Tag is a transaction tag, unencoded.
type Tag struct {
	Name  string
	Value string
}

// BundleTags are the tags that mark an ANS-104 binary bundle.
func BundleTags() []Tag {
	return []Tag{
		{Name: "Bundle-Format", Value: "binary"},
		{Name: "Bundle-Version", Value: "2.0.0"},
	}
}

// Transaction is a transaction to serve.
type Transaction struct {
	// ID must be a valid transaction id (see TransactionID).
	ID string

	Tags []Tag
	Data []byte

	// ChunkSize splits Data into chunks. Defaults to
	// DefaultChunkSize.
	ChunkSize int
}

// TransactionID returns a valid, deterministic transaction id.
func TransactionID(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed ^ byte(i*13)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

type chunk struct {
	start int64
	data  []byte
}

type storedTransaction struct {
	Transaction
	endOffset int64
}

// Gateway is a fake Arweave gateway.
type Gateway struct {
	server *httptest.Server

	mu           sync.Mutex
	transactions map[string]*storedTransaction
	chunks       []chunk
	nextOffset   int64
	pending      map[int64]int
	overrides    map[int64][]byte
	requests     []string
}

// NewGateway starts a gateway that is shut down when the test ends.
func NewGateway(t testing.TB) *Gateway {
	t.Helper()
	gateway := &Gateway{
		transactions: make(map[string]*storedTransaction),
		nextOffset:   weaveBase,
		pending:      make(map[int64]int),
		overrides:    make(map[int64][]byte),
	}
	gateway.server = httptest.NewServer(http.HandlerFunc(gateway.serve))
	t.Cleanup(gateway.server.Close)
	return gateway
}

// URL returns the gateway base URL.
func (gateway *Gateway) URL() string { return gateway.server.URL }

// Client returns an HTTP client for the gateway.
func (gateway *Gateway) Client() *http.Client { return gateway.server.Client() }

// AddTransaction lays tx's data into the weave and returns the
// offset of its last byte.
func (gateway *Gateway) AddTransaction(tx Transaction) int64 {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()

	chunkSize := tx.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	start := gateway.nextOffset
	for position := 0; position < len(tx.Data); position += chunkSize {
		end := min(position+chunkSize, len(tx.Data))
		gateway.chunks = append(gateway.chunks, chunk{
			start: start + int64(position),
			data:  tx.Data[position:end],
		})
	}
	gateway.nextOffset += int64(len(tx.Data))
	endOffset := start + int64(len(tx.Data)) - 1
	gateway.transactions[tx.ID] = &storedTransaction{Transaction: tx, endOffset: endOffset}
	return endOffset
}

// SetPending makes the next count requests for the chunk starting at
// offset answer 202 Accepted.
func (gateway *Gateway) SetPending(offset int64, count int) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	gateway.pending[offset] = count
}

// OverrideChunk replaces the bytes served for the chunk starting at
// offset.
func (gateway *Gateway) OverrideChunk(offset int64, data []byte) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	gateway.overrides[offset] = data
}

// Requests returns the paths requested so far, in order.
func (gateway *Gateway) Requests() []string {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return append([]string(nil), gateway.requests...)
}

// ChunkRequests returns the number of /chunk requests served so far.
func (gateway *Gateway) ChunkRequests() int {
	count := 0
	for _, path := range gateway.Requests() {
		if strings.HasPrefix(path, "/chunk/") {
			count++
		}
	}
	return count
}

func (gateway *Gateway) serve(writer http.ResponseWriter, request *http.Request) {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	gateway.requests = append(gateway.requests, request.URL.Path)

	if request.Method != http.MethodGet {
		http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(request.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "chunk":
		gateway.serveChunk(writer, parts[1])
	case len(parts) >= 2 && parts[0] == "tx":
		tx, found := gateway.transactions[parts[1]]
		if !found {
			http.Error(writer, "Not Found", http.StatusNotFound)
			return
		}
		switch {
		case len(parts) == 2:
			gateway.serveTransaction(writer, tx)
		case len(parts) == 3 && parts[2] == "data":
			writer.Write([]byte(base64.RawURLEncoding.EncodeToString(tx.Data)))
		case len(parts) == 3 && parts[2] == "offset":
			writeJSON(writer, map[string]string{
				"size":   strconv.Itoa(len(tx.Data)),
				"offset": strconv.FormatInt(tx.endOffset, 10),
			})
		default:
			http.Error(writer, "Not Found", http.StatusNotFound)
		}
	default:
		http.Error(writer, "Not Found", http.StatusNotFound)
	}
}

func (gateway *Gateway) serveTransaction(writer http.ResponseWriter, tx *storedTransaction) {
	type encodedTag struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	tags := make([]encodedTag, len(tx.Tags))
	for i, tag := range tx.Tags {
		tags[i] = encodedTag{
			Name:  base64.RawURLEncoding.EncodeToString([]byte(tag.Name)),
			Value: base64.RawURLEncoding.EncodeToString([]byte(tag.Value)),
		}
	}
	writeJSON(writer, map[string]any{
		"format":    2,
		"id":        tx.ID,
		"data_size": strconv.Itoa(len(tx.Data)),
		"tags":      tags,
	})
}

func (gateway *Gateway) serveChunk(writer http.ResponseWriter, rawOffset string) {
	offset, err := strconv.ParseInt(rawOffset, 10, 64)
	if err != nil {
		http.Error(writer, "Invalid offset", http.StatusBadRequest)
		return
	}

	// The chunk containing offset, as a real gateway resolves it.
	index := -1
	for i, candidate := range gateway.chunks {
		if offset >= candidate.start && offset < candidate.start+int64(len(candidate.data)) {
			index = i
			break
		}
	}
	if index < 0 {
		http.Error(writer, "Not Found", http.StatusNotFound)
		return
	}
	found := gateway.chunks[index]

	if gateway.pending[found.start] > 0 {
		gateway.pending[found.start]--
		writer.WriteHeader(http.StatusAccepted)
		return
	}

	data := found.data
	if override, ok := gateway.overrides[found.start]; ok {
		data = override
	}
	writeJSON(writer, map[string]string{
		"chunk":     base64.RawURLEncoding.EncodeToString(data),
		"data_path": "",
		"tx_path":   "",
	})
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}
