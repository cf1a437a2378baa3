// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arweave

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// transactionIDLength is the encoded length of a 32-byte identifier
// in unpadded base64url.
const transactionIDLength = 43

// Bundle markers carried in a transaction's tags.
const (
	TagBundleFormat  = "Bundle-Format"
	TagBundleVersion = "Bundle-Version"

	BundleFormatBinary = "binary"
	BundleVersion2     = "2.0.0"
)

// ValidateTransactionID checks that id is an unpadded base64url
// encoding of 32 bytes.
func ValidateTransactionID(id string) error {
	if len(id) != transactionIDLength {
		return fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidTransactionID, id, len(id), transactionIDLength)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidTransactionID, id, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: %q decodes to %d bytes, want 32", ErrInvalidTransactionID, id, len(decoded))
	}
	return nil
}

// Tag is a decoded transaction tag.
type Tag struct {
	Name  string
	Value string
}

// TxMetadata is the part of a transaction header the dumper needs.
type TxMetadata struct {
	// ID is the transaction identifier.
	ID string

	// DataSize is the declared size of the transaction data in bytes.
	DataSize int64

	// Tags are in header order. Names may repeat.
	Tags []Tag
}

// Tag returns the value of the named tag. When the name repeats, the
// last occurrence wins.
func (metadata *TxMetadata) Tag(name string) (string, bool) {
	value, found := "", false
	for _, tag := range metadata.Tags {
		if tag.Name == name {
			value, found = tag.Value, true
		}
	}
	return value, found
}

// IsBundle reports whether the transaction declares itself an
// ANS-104 binary bundle, version 2.0.0.
func (metadata *TxMetadata) IsBundle() bool {
	format, _ := metadata.Tag(TagBundleFormat)
	version, _ := metadata.Tag(TagBundleVersion)
	return format == BundleFormatBinary && version == BundleVersion2
}

// TransactionOffset locates a transaction's data in the weave.
type TransactionOffset struct {
	// Size is the data size in bytes.
	Size int64

	// EndOffset is the weave offset of the last data byte.
	EndOffset int64
}

// StartOffset returns the weave offset of the first data byte.
func (offset TransactionOffset) StartOffset() int64 {
	return offset.EndOffset - offset.Size + 1
}

// Validate rejects ranges that cannot describe real data.
func (offset TransactionOffset) Validate() error {
	if offset.Size < 0 {
		return fmt.Errorf("negative transaction size %d", offset.Size)
	}
	if offset.Size > 0 && offset.StartOffset() < 0 {
		return fmt.Errorf("transaction size %d exceeds end offset %d", offset.Size, offset.EndOffset)
	}
	return nil
}

// transactionResponse is the JSON body of GET /tx/{id}. Tag names
// and values are base64url, and numbers are decimal strings.
type transactionResponse struct {
	ID       string        `json:"id"`
	DataSize json.Number   `json:"data_size"`
	Tags     []responseTag `json:"tags"`
}

type responseTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// offsetResponse is the JSON body of GET /tx/{id}/offset.
type offsetResponse struct {
	Size   json.Number `json:"size"`
	Offset json.Number `json:"offset"`
}

// chunkResponse is the JSON body of GET /chunk/{offset}. Gateways add
// data_path and tx_path proofs, which the dumper does not verify.
type chunkResponse struct {
	Chunk string `json:"chunk"`
}

func (response *transactionResponse) metadata() (*TxMetadata, error) {
	metadata := &TxMetadata{ID: response.ID}
	if response.DataSize != "" {
		size, err := strconv.ParseInt(response.DataSize.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing data_size %q: %w", response.DataSize, err)
		}
		metadata.DataSize = size
	}
	for index, raw := range response.Tags {
		name, err := decodeTagField(raw.Name)
		if err != nil {
			return nil, fmt.Errorf("tag %d name: %w", index, err)
		}
		value, err := decodeTagField(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("tag %d value: %w", index, err)
		}
		metadata.Tags = append(metadata.Tags, Tag{Name: name, Value: value})
	}
	return metadata, nil
}

func (response *offsetResponse) transactionOffset() (TransactionOffset, error) {
	size, err := strconv.ParseInt(response.Size.String(), 10, 64)
	if err != nil {
		return TransactionOffset{}, fmt.Errorf("parsing size %q: %w", response.Size, err)
	}
	endOffset, err := strconv.ParseInt(response.Offset.String(), 10, 64)
	if err != nil {
		return TransactionOffset{}, fmt.Errorf("parsing offset %q: %w", response.Offset, err)
	}
	offset := TransactionOffset{Size: size, EndOffset: endOffset}
	if err := offset.Validate(); err != nil {
		return TransactionOffset{}, err
	}
	return offset, nil
}

func decodeTagField(encoded string) (string, error) {
	decoded, err := decodeBase64URL(encoded)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("not valid UTF-8")
	}
	return string(decoded), nil
}

// decodeBase64URL decodes base64url text, with or without padding.
func decodeBase64URL(encoded string) ([]byte, error) {
	for len(encoded) > 0 && encoded[len(encoded)-1] == '=' {
		encoded = encoded[:len(encoded)-1]
	}
	return base64.RawURLEncoding.DecodeString(encoded)
}
