// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"fmt"
	"io"
)

// entryIDLength is the size of the identifier in each table row.
const entryIDLength = 32

// IndexEntry is one row of the bundle table.
type IndexEntry struct {
	// Length is the declared byte length of the item body.
	Length int64

	// ID is the 32-byte entry identifier.
	ID [entryIDLength]byte
}

// Reader decodes the items of a bundle in table order. It is a
// forward-only pull sequence: each call to Next consumes exactly one
// item's bytes from the underlying reader. A Reader cannot be
// rewound; decoding again needs a fresh reader at the start of the
// bundle.
//
// Reader is not safe for concurrent use.
type Reader struct {
	reader io.Reader

	// table is read in full on the first call to Next (or Count),
	// before any item body.
	table       []IndexEntry
	tableLoaded bool

	next int
	err  error
}

// NewReader returns a Reader over r, which must be positioned at the
// first byte of the bundle. Nothing is read until Next or Count is
// called.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: r}
}

// Count returns the number of items declared in the bundle header,
// reading the header and table if Next has not been called yet.
func (br *Reader) Count() (int, error) {
	if err := br.loadTable(); err != nil {
		return 0, err
	}
	return len(br.table), nil
}

// Entries returns the bundle table. The slice is owned by the Reader
// and must not be modified.
func (br *Reader) Entries() ([]IndexEntry, error) {
	if err := br.loadTable(); err != nil {
		return nil, err
	}
	return br.table, nil
}

// Next decodes and returns the next item. It returns io.EOF after the
// last row. Any other error is sticky: the bundle is abandoned at the
// first corrupt or unavailable item and every later call returns the
// same error. Errors from item bodies are *ItemError values.
func (br *Reader) Next() (*DataItem, error) {
	if br.err != nil {
		return nil, br.err
	}
	if err := br.loadTable(); err != nil {
		return nil, err
	}
	if br.next >= len(br.table) {
		return nil, io.EOF
	}

	index := br.next
	entry := br.table[index]
	br.next++

	bounded := newBoundedReader(br.reader, entry.Length)
	item, err := DecodeItem(bounded)
	if err == nil && bounded.Remaining() != 0 {
		// DecodeItem reads the payload to the end of the bound, so
		// this only happens if the reader misbehaves.
		err = fmt.Errorf("item left %d of its declared bytes unread: %w", bounded.Remaining(), ErrMalformedInput)
	}
	if err != nil {
		br.err = &ItemError{Index: index, DeclaredLength: entry.Length, Err: err}
		return nil, br.err
	}

	item.EntryID = entry.ID
	return item, nil
}

// loadTable reads the item count and every table row. The table is
// contiguous and precedes all item bodies, so it is read in full
// before the first item.
func (br *Reader) loadTable() error {
	if br.tableLoaded {
		return nil
	}
	if br.err != nil {
		return br.err
	}

	count, err := readCounter(br.reader, "item count")
	if err != nil {
		br.err = fmt.Errorf("reading bundle header: %w", err)
		return br.err
	}

	// Rows are appended as they arrive rather than preallocated: a
	// corrupt count fails on truncation long before it can exhaust
	// memory.
	var table []IndexEntry
	for row := int64(0); row < count; row++ {
		length, err := readCounter(br.reader, fmt.Sprintf("table row %d length", row))
		if err != nil {
			br.err = fmt.Errorf("reading bundle table: %w", err)
			return br.err
		}
		var entry IndexEntry
		entry.Length = length
		if _, err := io.ReadFull(br.reader, entry.ID[:]); err != nil {
			br.err = fmt.Errorf("reading bundle table: %w", readError(fmt.Sprintf("table row %d id", row), err))
			return br.err
		}
		table = append(table, entry)
	}

	br.table = table
	br.tableLoaded = true
	return nil
}
