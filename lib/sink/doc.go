// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sink serializes decoded bundle items incrementally.
//
// A [SequenceWriter] receives one value at a time and never holds
// more than the current one: [ArrayWriter] streams a JSON array of
// indented objects, [CBORSequenceWriter] streams an RFC 8742 CBOR
// sequence. [Record] is the projection of a data item that both
// formats write, with binary fields in base64url.
//
// [Open] assembles the full output chain over a file: the format
// writer, optional zstd or lz4 compression, and optional age
// encryption to X25519 recipients. Closing the returned [Output]
// finishes each layer in order (array footer, compression frame, age
// final chunk) without closing the file itself.
package sink
