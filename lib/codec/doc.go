// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR configuration for the
// dumper's binary output format.
//
// JSON is the default output; CBOR is the compact alternative. Both
// are written from the same record types: fxamacker/cbor v2 reads
// `json` struct tags when `cbor` tags are absent, so a single `json`
// tag controls field naming and omitempty for both formats. Record
// types carry only `json` tags.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so
// the same bundle always produces identical bytes:
//
//	encoder := codec.NewEncoder(file)
//	err := encoder.Encode(record)
package codec
