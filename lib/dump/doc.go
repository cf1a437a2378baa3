// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dump connects the gateway client, the bundle decoder, and
// an output sink.
//
// [Run] fetches a transaction header, rejects transactions that are
// not ANS-104 binary bundles, and decodes the bundle body one item at
// a time into a [sink.SequenceWriter]. The body is read either from
// the chunk stream (the default, holding one chunk at a time) or from
// a single whole-body request. Both sources feed the same decoder and
// produce identical output.
package dump
