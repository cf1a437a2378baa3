// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundletest builds synthetic ANS-104 bundles for tests.
//
// Items are assembled field by field with deterministic filler for
// signatures and keys, so decoders can be exercised without real
// wallets. The builder writes whatever it is told: override fields
// exist to produce deliberately corrupt items (bad presence flags,
// wrong tag counts, truncated payloads).
//
// Helpers take a testing.TB and call t.Fatalf on failure, since a
// broken fixture is never recoverable. The package depends only on
// the Avro codec, not on ans104, so ans104's own tests can use it.
package bundletest

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/linkedin/goavro/v2"
)

// Tag is a name/value pair to encode into an item.
type Tag struct {
	Name  string
	Value string
}

// Item describes one data item to encode.
type Item struct {
	// SignatureType is the 2-byte signature type. Types 1-4 get
	// their table lengths for Signature and Owner filler.
	SignatureType uint16

	// Signature and Owner default to deterministic filler of the
	// scheme's length when nil.
	Signature []byte
	Owner     []byte

	// Target and Anchor are written with presence flag 1 when
	// non-nil.
	Target []byte
	Anchor []byte

	Tags []Tag
	Data []byte

	// TargetFlag and AnchorFlag override the presence flag byte.
	// When set and not 1, the field bytes are omitted.
	TargetFlag *byte
	AnchorFlag *byte

	// TagCount overrides the declared tag count.
	TagCount *uint64

	// RawTags replaces the Avro tag blob verbatim.
	RawTags []byte
}

// schemeLengths mirrors the ANS-104 signature table.
var schemeLengths = map[uint16][2]int{
	1: {512, 512},
	2: {64, 32},
	3: {65, 65},
	4: {64, 32},
}

// SchemeLengths returns the signature and public key lengths for a
// known signature type.
func SchemeLengths(signatureType uint16) (signatureLength, publicKeyLength int, ok bool) {
	lengths, ok := schemeLengths[signatureType]
	return lengths[0], lengths[1], ok
}

// Filler returns length deterministic bytes derived from seed.
func Filler(seed byte, length int) []byte {
	data := make([]byte, length)
	for i := range data {
		data[i] = seed + byte(i*7)
	}
	return data
}

// EncodeTags returns the Avro blob for tags.
func EncodeTags(t testing.TB, tags []Tag) []byte {
	t.Helper()
	if len(tags) == 0 {
		return nil
	}
	codec, err := goavro.NewCodec(`{"type":"array","items":{"type":"record","name":"Tag","fields":[{"name":"name","type":"string"},{"name":"value","type":"string"}]}}`)
	if err != nil {
		t.Fatalf("compiling tag schema: %v", err)
	}
	records := make([]any, len(tags))
	for i, tag := range tags {
		records[i] = map[string]any{"name": tag.Name, "value": tag.Value}
	}
	blob, err := codec.BinaryFromNative(nil, records)
	if err != nil {
		t.Fatalf("encoding tags: %v", err)
	}
	return blob
}

// EncodeItem serializes item in ANS-104 item layout.
func EncodeItem(t testing.TB, item Item) []byte {
	t.Helper()

	signatureLength, publicKeyLength, _ := SchemeLengths(item.SignatureType)
	signature := item.Signature
	if signature == nil {
		signature = Filler(byte(item.SignatureType), signatureLength)
	}
	owner := item.Owner
	if owner == nil {
		owner = Filler(byte(item.SignatureType)+100, publicKeyLength)
	}

	var buffer bytes.Buffer
	var typeBytes [2]byte
	binary.LittleEndian.PutUint16(typeBytes[:], item.SignatureType)
	buffer.Write(typeBytes[:])
	buffer.Write(signature)
	buffer.Write(owner)
	writeOptional(&buffer, item.Target, item.TargetFlag)
	writeOptional(&buffer, item.Anchor, item.AnchorFlag)

	tagBlob := item.RawTags
	if tagBlob == nil {
		tagBlob = EncodeTags(t, item.Tags)
	}
	tagCount := uint64(len(item.Tags))
	if item.TagCount != nil {
		tagCount = *item.TagCount
	}
	writeUint64(&buffer, tagCount)
	writeUint64(&buffer, uint64(len(tagBlob)))
	buffer.Write(tagBlob)
	buffer.Write(item.Data)
	return buffer.Bytes()
}

// Row is one bundle table row with its encoded item body.
type Row struct {
	// Length is the declared length; when zero, len(Body) is used.
	Length uint64

	// ID is the entry identifier; when zero, derived from the row
	// index.
	ID [32]byte

	Body []byte
}

// Bundle assembles a bundle from rows: header, table, then bodies.
func Bundle(rows ...Row) []byte {
	var buffer bytes.Buffer
	buffer.Write(Counter(uint64(len(rows))))
	for i, row := range rows {
		length := row.Length
		if length == 0 {
			length = uint64(len(row.Body))
		}
		buffer.Write(Counter(length))
		id := row.ID
		if id == ([32]byte{}) {
			copy(id[:], Filler(byte(i)+1, 32))
		}
		buffer.Write(id[:])
	}
	for _, row := range rows {
		buffer.Write(row.Body)
	}
	return buffer.Bytes()
}

// Build encodes items and assembles them into a bundle.
func Build(t testing.TB, items ...Item) []byte {
	t.Helper()
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Row{Body: EncodeItem(t, item)}
	}
	return Bundle(rows...)
}

// Counter encodes value as a 32-byte little-endian counter.
func Counter(value uint64) []byte {
	raw := make([]byte, 32)
	binary.LittleEndian.PutUint64(raw, value)
	return raw
}

func writeOptional(buffer *bytes.Buffer, field []byte, flag *byte) {
	if flag != nil {
		buffer.WriteByte(*flag)
		if *flag == 1 {
			buffer.Write(field)
		}
		return
	}
	if field == nil {
		buffer.WriteByte(0)
		return
	}
	buffer.WriteByte(1)
	buffer.Write(field)
}

func writeUint64(buffer *bytes.Buffer, value uint64) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], value)
	buffer.Write(raw[:])
}
