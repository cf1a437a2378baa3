// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bureau-foundation/weavedump/lib/netutil"
)

// DefaultGatewayURL is the public Arweave gateway.
const DefaultGatewayURL = "https://arweave.net"

// DefaultMaxDataSize bounds whole-body downloads (the base64url text
// of GET /tx/{id}/data): 1 GiB.
const DefaultMaxDataSize int64 = 1 << 30

// Config holds configuration for creating a gateway Client.
type Config struct {
	// BaseURL is the gateway root. Defaults to DefaultGatewayURL.
	// Must be http or https.
	BaseURL string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient. Request timeouts belong here.
	HTTPClient *http.Client

	// MaxDataSize bounds the response body of FetchTransactionData.
	// Defaults to DefaultMaxDataSize.
	MaxDataSize int64

	// UserAgent is sent with every request when set.
	UserAgent string

	// Logger is used for structured logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Client talks to one Arweave gateway. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxDataSize int64
	userAgent   string
	logger      *slog.Logger
}

// NewClient creates a gateway client. Returns an error if the base
// URL is not an absolute http or https URL.
func NewClient(config Config) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("arweave: parsing gateway URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("arweave: gateway URL must be absolute http or https (got %q)", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	maxDataSize := config.MaxDataSize
	if maxDataSize <= 0 {
		maxDataSize = DefaultMaxDataSize
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		maxDataSize: maxDataSize,
		userAgent:   config.UserAgent,
		logger:      logger,
	}, nil
}

// FetchTransaction fetches a transaction header and decodes its tags.
func (client *Client) FetchTransaction(ctx context.Context, id string) (*TxMetadata, error) {
	if err := ValidateTransactionID(id); err != nil {
		return nil, err
	}
	var response transactionResponse
	if err := client.getJSON(ctx, "/tx/"+id, &response); err != nil {
		return nil, err
	}
	metadata, err := response.metadata()
	if err != nil {
		return nil, fmt.Errorf("arweave: transaction %s: %w", id, err)
	}
	if metadata.ID == "" {
		metadata.ID = id
	}
	return metadata, nil
}

// FetchTransactionData fetches a transaction's whole body in one
// request. The gateway returns it as base64url text; the decoded
// bytes are returned.
func (client *Client) FetchTransactionData(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateTransactionID(id); err != nil {
		return nil, err
	}
	body, err := client.get(ctx, "/tx/"+id+"/data", client.maxDataSize)
	if err != nil {
		return nil, err
	}
	data, err := decodeBase64URL(string(bytes.TrimSpace(body)))
	if err != nil {
		return nil, fmt.Errorf("arweave: decoding data of transaction %s: %w", id, err)
	}
	return data, nil
}

// FetchTransactionOffset fetches the size and end offset of a
// transaction's data.
func (client *Client) FetchTransactionOffset(ctx context.Context, id string) (TransactionOffset, error) {
	if err := ValidateTransactionID(id); err != nil {
		return TransactionOffset{}, err
	}
	var response offsetResponse
	if err := client.getJSON(ctx, "/tx/"+id+"/offset", &response); err != nil {
		return TransactionOffset{}, err
	}
	offset, err := response.transactionOffset()
	if err != nil {
		return TransactionOffset{}, fmt.Errorf("arweave: offset of transaction %s: %w", id, err)
	}
	return offset, nil
}

// FetchChunk fetches the chunk containing the given weave offset and
// returns its decoded bytes. A chunk that has not propagated yet
// returns ErrChunkPending.
func (client *Client) FetchChunk(ctx context.Context, offset int64) ([]byte, error) {
	var response chunkResponse
	if err := client.getJSON(ctx, "/chunk/"+strconv.FormatInt(offset, 10), &response); err != nil {
		return nil, err
	}
	chunk, err := decodeBase64URL(response.Chunk)
	if err != nil {
		return nil, fmt.Errorf("arweave: decoding chunk at offset %d: %w", offset, err)
	}
	client.logger.Debug("fetched chunk", "offset", offset, "length", len(chunk))
	return chunk, nil
}

// TransactionChunks looks up a transaction's offset and returns a
// stream over its chunks, fetched from this client.
func (client *Client) TransactionChunks(ctx context.Context, id string) (*ChunkStream, error) {
	offset, err := client.FetchTransactionOffset(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewChunkStream(client, offset), nil
}

// getJSON performs a GET and decodes the JSON response into result.
func (client *Client) getJSON(ctx context.Context, path string, result any) error {
	body, err := client.get(ctx, path, netutil.MaxResponseSize)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("arweave: decoding response from %s: %w", path, err)
	}
	return nil
}

// get performs a GET against the gateway and returns the response
// body, read up to limit bytes. 202 Accepted is ErrChunkPending and
// any other non-2xx status is an *APIError.
func (client *Client) get(ctx context.Context, path string, limit int64) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("arweave: creating request: %w", err)
	}
	if client.userAgent != "" {
		request.Header.Set("User-Agent", client.userAgent)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("arweave: GET %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusAccepted {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, netutil.MaxResponseSize))
		return nil, fmt.Errorf("GET %s: %w", path, ErrChunkPending)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body := netutil.ErrorBody(io.LimitReader(response.Body, maxErrorBodyLength))
		return nil, &APIError{
			StatusCode: response.StatusCode,
			Path:       path,
			Body:       strings.TrimSpace(body),
		}
	}

	body, err := netutil.ReadResponseLimit(response.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("arweave: reading response from %s: %w", path, err)
	}
	return body, nil
}
