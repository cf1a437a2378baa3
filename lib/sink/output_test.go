// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func writeRecords(t *testing.T, options Options, count int) []byte {
	t.Helper()
	var destination bytes.Buffer
	output, err := Open(&destination, options)
	if err != nil {
		t.Fatalf("Open(%+v): %v", options, err)
	}
	for range count {
		if err := output.WriteItem(NewRecord(testItem(), RecordOptions{})); err != nil {
			t.Fatalf("WriteItem: %v", err)
		}
	}
	if err := output.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return destination.Bytes()
}

func decompress(t *testing.T, data []byte, compression Compression) []byte {
	t.Helper()
	var reader io.Reader = bytes.NewReader(data)
	switch compression {
	case CompressionZstd:
		decoder, err := zstd.NewReader(reader)
		if err != nil {
			t.Fatalf("zstd.NewReader: %v", err)
		}
		defer decoder.Close()
		reader = decoder
	case CompressionLZ4:
		reader = lz4.NewReader(reader)
	}
	plain, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("decompressing %s: %v", compression, err)
	}
	return plain
}

func TestOutputCompression(t *testing.T) {
	plain := writeRecords(t, Options{Format: FormatJSON}, 20)

	for _, compression := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(string(compression), func(t *testing.T) {
			written := writeRecords(t, Options{Format: FormatJSON, Compression: compression}, 20)
			if compression != CompressionNone && bytes.Equal(written, plain) {
				t.Fatal("output was not compressed")
			}
			if got := decompress(t, written, compression); !bytes.Equal(got, plain) {
				t.Fatalf("decompressed output differs from plain output")
			}
		})
	}
}

func TestOutputEncryption(t *testing.T) {
	first, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	second, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}

	options := Options{
		Format:      FormatJSON,
		Compression: CompressionZstd,
		Recipients:  []string{first.Recipient().String(), second.Recipient().String()},
	}
	ciphertext := writeRecords(t, options, 5)

	// Either recipient can decrypt.
	for _, identity := range []*age.X25519Identity{first, second} {
		reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		compressed, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("reading plaintext: %v", err)
		}
		var records []Record
		if err := json.Unmarshal(decompress(t, compressed, CompressionZstd), &records); err != nil {
			t.Fatalf("parsing decrypted output: %v", err)
		}
		if len(records) != 5 {
			t.Errorf("decrypted %d records, want 5", len(records))
		}
	}
}

func TestOpenRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name    string
		options Options
	}{
		{"bad recipient", Options{Recipients: []string{"age1notakey"}}},
		{"bad compression", Options{Compression: "brotli"}},
		{"bad format", Options{Format: "xml"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Open(io.Discard, test.options); err == nil {
				t.Errorf("Open(%+v) succeeded", test.options)
			}
		})
	}
}

func TestOptionsExtension(t *testing.T) {
	tests := []struct {
		options Options
		want    string
	}{
		{Options{Format: FormatJSON}, ".json"},
		{Options{Format: FormatCBOR, Compression: CompressionNone}, ".cbor"},
		{Options{Format: FormatJSON, Compression: CompressionZstd}, ".json.zst"},
		{Options{Format: FormatCBOR, Compression: CompressionLZ4, Recipients: []string{"age1..."}}, ".cbor.lz4.age"},
	}
	for _, test := range tests {
		if got := test.options.Extension(); got != test.want {
			t.Errorf("%+v.Extension() = %q, want %q", test.options, got, test.want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for name, want := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "zstd": CompressionZstd, "lz4": CompressionLZ4} {
		if got, err := ParseCompression(name); err != nil || got != want {
			t.Errorf("ParseCompression(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) succeeded")
	}
}
