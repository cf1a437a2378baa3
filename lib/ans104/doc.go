// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ans104 decodes ANS-104 binary bundles: a table of
// (length, identifier) rows followed by the signed data items the
// rows describe.
//
// Decoding is streaming and forward-only. [NewReader] wraps any
// io.Reader positioned at the start of a bundle; [Reader.Next]
// returns one [DataItem] at a time in table order and io.EOF after
// the last row. Each item is decoded from a view of the underlying
// stream bounded to exactly the row's declared length, so the whole
// bundle body never has to be buffered and an item can never read
// into its neighbour.
//
// Wire layout (all integers little-endian):
//
//	[32] item count (upper 16 bytes must be zero)
//	count × ([32] item length, [32] entry id)
//	count × item:
//	  [2]  signature type
//	  [n]  signature          (n from the signature table)
//	  [m]  owner public key   (m from the signature table)
//	  [1]  target flag, [32] target if flag == 1
//	  [1]  anchor flag, [32] anchor if flag == 1
//	  [8]  tag count
//	  [8]  tag bytes length
//	  [..] Avro-encoded tags
//	  [..] data, up to the item length
//
// Failures are classified by sentinel errors ([ErrTruncatedInput],
// [ErrMalformedInput], [ErrUnsupportedSignature], [ErrSchemaDecode],
// [ErrCountOverflow]). Errors from [Reader.Next] are wrapped in an
// [ItemError] carrying the row index and declared length. No
// signature is verified.
package ans104
