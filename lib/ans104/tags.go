// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/linkedin/goavro/v2"
)

// Tag is one name/value pair attached to a data item. Order and
// duplicates are preserved as encoded.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// tagSchema is the fixed Avro schema of the tag blob.
const tagSchema = `{
  "type": "array",
  "items": {
    "type": "record",
    "name": "Tag",
    "fields": [
      { "name": "name", "type": "string" },
      { "name": "value", "type": "string" }
    ]
  }
}`

// minTagRecordLength is the smallest encoding of one tag record: two
// empty strings, one length byte each.
const minTagRecordLength = 2

// tagCodec is compiled once; goavro codecs are safe for concurrent
// use.
var tagCodec *goavro.Codec

func init() {
	var err error
	tagCodec, err = goavro.NewCodec(tagSchema)
	if err != nil {
		panic("ans104: Avro tag schema compilation failed: " + err.Error())
	}
}

// DecodeTags decodes an Avro-encoded tag blob. The blob must contain
// exactly one array datum with no trailing bytes, and every name and
// value must be valid UTF-8. Either every tag decodes or an error
// wrapping ErrSchemaDecode is returned.
func DecodeTags(data []byte) ([]Tag, error) {
	if err := checkBlockCount(data); err != nil {
		return nil, err
	}
	native, remaining, err := tagCodec.NativeFromBinary(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaDecode, err)
	}
	if len(remaining) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after tag array", ErrSchemaDecode, len(remaining))
	}

	records, ok := native.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: tag datum is %T, want array", ErrSchemaDecode, native)
	}

	tags := make([]Tag, 0, len(records))
	for i, record := range records {
		fields, ok := record.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: tag %d is %T, want record", ErrSchemaDecode, i, record)
		}
		name, err := tagField(fields, "name")
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", i, err)
		}
		value, err := tagField(fields, "value")
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", i, err)
		}
		tags = append(tags, Tag{Name: name, Value: value})
	}
	return tags, nil
}

// EncodeTags produces the Avro tag blob for tags. Decoding never
// needs it; it exists so tests and fixtures can build well-formed
// items.
func EncodeTags(tags []Tag) ([]byte, error) {
	records := make([]any, len(tags))
	for i, tag := range tags {
		records[i] = map[string]any{"name": tag.Name, "value": tag.Value}
	}
	data, err := tagCodec.BinaryFromNative(nil, records)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	return data, nil
}

// checkBlockCount rejects a blob whose leading array block count
// could not be backed by the bytes that follow it. The Avro decoder
// sizes its result slice from that count before reading any record.
func checkBlockCount(data []byte) error {
	count, length := binary.Varint(data)
	if length <= 0 {
		return fmt.Errorf("%w: invalid array block count", ErrSchemaDecode)
	}
	// A negative count is followed by the block's byte size.
	if count < 0 {
		count = -count
	}
	available := int64(len(data) - length)
	if count < 0 || count > available/minTagRecordLength {
		return fmt.Errorf("%w: block count %d exceeds what %d bytes can hold", ErrSchemaDecode, count, available)
	}
	return nil
}

func tagField(fields map[string]any, key string) (string, error) {
	value, ok := fields[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrSchemaDecode, key, fields[key])
	}
	if !utf8.ValidString(value) {
		return "", fmt.Errorf("%w: field %q is not valid UTF-8", ErrSchemaDecode, key)
	}
	return value, nil
}
