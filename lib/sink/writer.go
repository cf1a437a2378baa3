// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/weavedump/lib/codec"
)

// ErrClosed is returned when writing to a closed SequenceWriter.
var ErrClosed = errors.New("sink: write after close")

// SequenceWriter writes a stream of values one at a time.
type SequenceWriter interface {
	// WriteItem serializes one value.
	WriteItem(value any) error

	// Close writes any trailer. It does not close the underlying
	// writer.
	Close() error
}

// Format selects the serialization of the item sequence.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, FormatCBOR:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or cbor)", name)
	}
}

// Extension returns the file name extension for the format.
func (format Format) Extension() string {
	if format == "" {
		return FormatJSON.Extension()
	}
	return "." + string(format)
}

// NewSequenceWriter returns a writer for format over w.
func NewSequenceWriter(w io.Writer, format Format) (SequenceWriter, error) {
	switch format {
	case FormatJSON:
		return NewArrayWriter(w), nil
	case FormatCBOR:
		return NewCBORSequenceWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ArrayWriter streams a JSON array: "[\n", then each value as an
// indented object separated by ",\n", then "\n]\n". Only the value
// being written is buffered.
type ArrayWriter struct {
	writer io.Writer
	buffer bytes.Buffer

	opened bool
	count  int
	closed bool
}

// NewArrayWriter returns an ArrayWriter over w. Nothing is written
// until the first WriteItem or Close.
func NewArrayWriter(w io.Writer) *ArrayWriter {
	return &ArrayWriter{writer: w}
}

// WriteItem appends value to the array.
func (aw *ArrayWriter) WriteItem(value any) error {
	if aw.closed {
		return ErrClosed
	}
	if err := aw.open(); err != nil {
		return err
	}

	aw.buffer.Reset()
	if aw.count > 0 {
		aw.buffer.WriteString(",\n")
	}
	encoder := json.NewEncoder(&aw.buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding item %d: %w", aw.count, err)
	}
	// Encode terminates each value with a newline; the separator
	// supplies it instead.
	aw.buffer.Truncate(aw.buffer.Len() - 1)

	if _, err := aw.writer.Write(aw.buffer.Bytes()); err != nil {
		return fmt.Errorf("writing item %d: %w", aw.count, err)
	}
	aw.count++
	return nil
}

// Count returns the number of values written.
func (aw *ArrayWriter) Count() int { return aw.count }

// Close writes the closing bracket. An array with no values is
// written as "[\n\n]\n".
func (aw *ArrayWriter) Close() error {
	if aw.closed {
		return nil
	}
	if err := aw.open(); err != nil {
		return err
	}
	aw.closed = true
	if _, err := io.WriteString(aw.writer, "\n]\n"); err != nil {
		return fmt.Errorf("writing array close: %w", err)
	}
	return nil
}

func (aw *ArrayWriter) open() error {
	if aw.opened {
		return nil
	}
	aw.opened = true
	if _, err := io.WriteString(aw.writer, "[\n"); err != nil {
		return fmt.Errorf("writing array open: %w", err)
	}
	return nil
}

// CBORSequenceWriter streams values as a CBOR sequence (RFC 8742):
// concatenated CBOR data items with no framing. Values are encoded
// with Core Deterministic Encoding, so struct fields use their json
// tag names as map keys.
type CBORSequenceWriter struct {
	encoder *codec.Encoder
	count   int
	closed  bool
}

// NewCBORSequenceWriter returns a CBORSequenceWriter over w.
func NewCBORSequenceWriter(w io.Writer) *CBORSequenceWriter {
	return &CBORSequenceWriter{encoder: codec.NewEncoder(w)}
}

// WriteItem appends value to the sequence.
func (cw *CBORSequenceWriter) WriteItem(value any) error {
	if cw.closed {
		return ErrClosed
	}
	if err := cw.encoder.Encode(value); err != nil {
		return fmt.Errorf("encoding item %d: %w", cw.count, err)
	}
	cw.count++
	return nil
}

// Close marks the sequence finished. CBOR sequences have no trailer.
func (cw *CBORSequenceWriter) Close() error {
	cw.closed = true
	return nil
}
