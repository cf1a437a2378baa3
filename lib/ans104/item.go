// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// optionalFieldLength is the size of the target and anchor fields
	// when present.
	optionalFieldLength = 32

	// maxTagBlobLength bounds the allocation for a tag blob. The
	// ANS-104 limits (128 tags, 1024-byte names, 3072-byte values)
	// keep real blobs far below this.
	maxTagBlobLength = 16 << 20

	// payloadPreallocLimit caps the up-front payload allocation. The
	// buffer grows past it as bytes actually arrive, so a bogus
	// declared length cannot force a huge allocation.
	payloadPreallocLimit = 1 << 20
)

// DataItem is one signed record decoded from a bundle. Target and
// Anchor are nil when absent. The signature is carried, not verified.
type DataItem struct {
	SignatureType SignatureType
	Signature     []byte
	Owner         []byte
	Target        []byte
	Anchor        []byte
	Tags          []Tag
	Data          []byte

	// EntryID is the identifier from the bundle table row this item
	// was decoded from. Zero when the item was decoded on its own
	// with DecodeItem.
	EntryID [32]byte
}

// ID returns the item identifier: the SHA-256 digest of the
// signature bytes.
func (item *DataItem) ID() [32]byte {
	return sha256.Sum256(item.Signature)
}

// remainingReader is implemented by readers that know how many bytes
// they have left (the table decoder's bounded view).
type remainingReader interface {
	Remaining() int64
}

// DecodeItem decodes one data item from r. The data field is
// everything left in r after the tags, so r must end exactly where
// the item ends: pass a reader bounded to the item's length (the
// table decoder does this for every row).
func DecodeItem(r io.Reader) (*DataItem, error) {
	var rawType [2]byte
	if _, err := io.ReadFull(r, rawType[:]); err != nil {
		return nil, readError("signature type", err)
	}
	signatureType := SignatureType(binary.LittleEndian.Uint16(rawType[:]))
	scheme, err := lookupScheme(signatureType)
	if err != nil {
		return nil, err
	}

	signature, err := readBytes(r, scheme.signatureLength, "signature")
	if err != nil {
		return nil, err
	}

	owner, err := readBytes(r, scheme.publicKeyLength, "owner public key")
	if err != nil {
		return nil, err
	}

	target, err := readOptionalField(r, "target")
	if err != nil {
		return nil, err
	}

	anchor, err := readOptionalField(r, "anchor")
	if err != nil {
		return nil, err
	}

	tagCount, err := readUint64(r, "tag count")
	if err != nil {
		return nil, err
	}
	tagBlobLength, err := readUint64(r, "tag bytes length")
	if err != nil {
		return nil, err
	}

	tags, err := readTags(r, tagCount, tagBlobLength)
	if err != nil {
		return nil, err
	}

	data, err := readPayload(r)
	if err != nil {
		return nil, err
	}

	return &DataItem{
		SignatureType: signatureType,
		Signature:     signature,
		Owner:         owner,
		Target:        target,
		Anchor:        anchor,
		Tags:          tags,
		Data:          data,
	}, nil
}

// readOptionalField reads a presence flag and, when it is 1, the
// 32-byte field that follows.
func readOptionalField(r io.Reader, field string) ([]byte, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return nil, readError(field+" presence flag", err)
	}
	switch flag[0] {
	case 0:
		return nil, nil
	case 1:
		return readBytes(r, optionalFieldLength, field)
	default:
		return nil, fmt.Errorf("%s presence flag is %d, want 0 or 1: %w", field, flag[0], ErrMalformedInput)
	}
}

func readTags(r io.Reader, tagCount, tagBlobLength uint64) ([]Tag, error) {
	if tagBlobLength == 0 {
		if tagCount != 0 {
			return nil, fmt.Errorf("header declares %d tags but tag bytes are empty: %w", tagCount, ErrMalformedInput)
		}
		return nil, nil
	}

	if tagCount > tagBlobLength/minTagRecordLength {
		return nil, fmt.Errorf("header declares %d tags but tag bytes length is %d: %w", tagCount, tagBlobLength, ErrMalformedInput)
	}
	if tagBlobLength > maxTagBlobLength {
		return nil, fmt.Errorf("tag bytes length %d exceeds maximum %d: %w", tagBlobLength, maxTagBlobLength, ErrMalformedInput)
	}
	if bounded, ok := r.(remainingReader); ok && int64(tagBlobLength) > bounded.Remaining() {
		return nil, fmt.Errorf("tag bytes length %d exceeds the %d bytes left in the item: %w",
			tagBlobLength, bounded.Remaining(), ErrTruncatedInput)
	}

	blob, err := readBytes(r, int(tagBlobLength), "tag bytes")
	if err != nil {
		return nil, err
	}

	tags, err := DecodeTags(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if uint64(len(tags)) != tagCount {
		return nil, fmt.Errorf("header declares %d tags, tag bytes hold %d: %w", tagCount, len(tags), ErrMalformedInput)
	}
	return tags, nil
}

// readPayload reads r to its end.
func readPayload(r io.Reader) ([]byte, error) {
	capacity := int64(0)
	if bounded, ok := r.(remainingReader); ok {
		capacity = min(bounded.Remaining(), payloadPreallocLimit)
	}
	buffer := bytes.NewBuffer(make([]byte, 0, capacity))
	if _, err := buffer.ReadFrom(r); err != nil {
		return nil, readError("data", err)
	}
	return buffer.Bytes(), nil
}
