// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"io"
	"testing"
)

// sampleRecord mirrors the shape of an output record: json tags only,
// optional pointer fields, a nested slice.
type sampleRecord struct {
	ID     string      `json:"id"`
	Target *string     `json:"target"`
	Tags   []sampleTag `json:"tags"`
	Size   *int        `json:"data_size,omitempty"`
}

type sampleTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// encodeOne encodes v as a single CBOR data item.
func encodeOne(t *testing.T, v any) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buffer.Bytes()
}

// decodeOne decodes a single CBOR data item into v.
func decodeOne(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	target := "AQI"
	original := sampleRecord{
		ID:     "item-id",
		Target: &target,
		Tags:   []sampleTag{{Name: "Type", Value: "a"}, {Name: "Type", Value: "b"}},
	}

	var decoded sampleRecord
	decodeOne(t, encodeOne(t, original), &decoded)
	if decoded.ID != original.ID || decoded.Target == nil || *decoded.Target != target {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if len(decoded.Tags) != 2 || decoded.Tags[1] != original.Tags[1] {
		t.Errorf("tags: got %+v, want %+v", decoded.Tags, original.Tags)
	}
	if decoded.Size != nil {
		t.Errorf("omitted field decoded as %d", *decoded.Size)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	// Map iteration order is random; deterministic encoding sorts
	// the keys.
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3, "beta": 4}

	first := encodeOne(t, value)
	for range 20 {
		again := encodeOne(t, value)
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestJSONTagNamesAreMapKeys(t *testing.T) {
	var decoded map[string]any
	decodeOne(t, encodeOne(t, sampleTag{Name: "n", Value: "v"}), &decoded)
	if decoded["name"] != "n" || decoded["value"] != "v" {
		t.Errorf("decoded = %v, want json tag names as keys", decoded)
	}
}

func TestNullPointerEncodesAsNull(t *testing.T) {
	var decoded map[string]any
	decodeOne(t, encodeOne(t, sampleRecord{ID: "x"}), &decoded)
	if value, ok := decoded["target"]; !ok || value != nil {
		t.Errorf("target = %v (present %v), want null", value, ok)
	}
}

func TestSequenceStream(t *testing.T) {
	records := []sampleRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range records {
		var got sampleRecord
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode record %d: %v", i, err)
		}
		if got.ID != want.ID {
			t.Errorf("record %d: got %q, want %q", i, got.ID, want.ID)
		}
	}
	var extra sampleRecord
	if err := decoder.Decode(&extra); err != io.EOF {
		t.Errorf("Decode past the end = %v, want io.EOF", err)
	}
}

func TestDecodeInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := NewDecoder(bytes.NewReader([]byte{0xFF, 0xFE, 0xFD})).Decode(&record); err == nil {
		t.Error("Decode should reject invalid CBOR")
	}
}
