// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the output compression.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ParseCompression parses a compression name. The empty string is
// CompressionNone.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("unknown compression %q (want none, zstd, or lz4)", name)
	}
}

// Extension returns the file name suffix the compression adds.
func (compression Compression) Extension() string {
	switch compression {
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// NewCompressor returns a writer that compresses into w. Close
// finishes the compressed stream without closing w.
func NewCompressor(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case "", CompressionNone:
		return nopCloser{w}, nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return encoder, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}

// ParseRecipients parses age X25519 public keys (age1...).
func ParseRecipients(keys []string) ([]age.Recipient, error) {
	recipients := make([]age.Recipient, 0, len(keys))
	for _, key := range keys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("invalid age recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// NewEncryptor returns a writer that encrypts into w for every
// recipient. Close writes the final age chunk without closing w.
func NewEncryptor(w io.Writer, recipientKeys []string) (io.WriteCloser, error) {
	if len(recipientKeys) == 0 {
		return nil, errors.New("encryption requires at least one recipient")
	}
	recipients, err := ParseRecipients(recipientKeys)
	if err != nil {
		return nil, err
	}
	encryptor, err := age.Encrypt(w, recipients...)
	if err != nil {
		return nil, fmt.Errorf("starting age encryption: %w", err)
	}
	return encryptor, nil
}

// Options configures an Output.
type Options struct {
	Format      Format
	Compression Compression

	// Recipients are age X25519 public keys. Empty means plaintext.
	Recipients []string
}

// Extension returns the file name suffix for output written with
// these options, such as ".json.zst.age".
func (options Options) Extension() string {
	extension := options.Format.Extension() + options.Compression.Extension()
	if len(options.Recipients) > 0 {
		extension += ".age"
	}
	return extension
}

// outputBufferSize is the write buffer between the format writer and
// the compression/encryption layers.
const outputBufferSize = 64 << 10

// Output is the assembled chain: format writer, buffer, compressor,
// encryptor, destination.
type Output struct {
	SequenceWriter

	buffer *bufio.Writer

	// layers are closed in order, innermost (nearest the format
	// writer) first.
	layers []io.Closer
	closed bool
}

// Open assembles an Output writing to w.
func Open(w io.Writer, options Options) (*Output, error) {
	format := options.Format
	if format == "" {
		format = FormatJSON
	}

	output := &Output{}
	destination := w

	if len(options.Recipients) > 0 {
		encryptor, err := NewEncryptor(destination, options.Recipients)
		if err != nil {
			return nil, err
		}
		output.layers = append(output.layers, encryptor)
		destination = encryptor
	}

	compressor, err := NewCompressor(destination, options.Compression)
	if err != nil {
		return nil, err
	}
	output.layers = append(output.layers, compressor)

	output.buffer = bufio.NewWriterSize(compressor, outputBufferSize)
	output.SequenceWriter, err = NewSequenceWriter(output.buffer, format)
	if err != nil {
		return nil, err
	}

	// Layers were appended outermost first.
	for i, j := 0, len(output.layers)-1; i < j; i, j = i+1, j-1 {
		output.layers[i], output.layers[j] = output.layers[j], output.layers[i]
	}
	return output, nil
}

// Close finishes every layer in order: the format trailer, the
// buffer, then compression and encryption. The destination writer is
// not closed.
func (output *Output) Close() error {
	if output.closed {
		return nil
	}
	output.closed = true

	if err := output.SequenceWriter.Close(); err != nil {
		return err
	}
	if err := output.buffer.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	for _, layer := range output.layers {
		if err := layer.Close(); err != nil {
			return fmt.Errorf("finishing output: %w", err)
		}
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
