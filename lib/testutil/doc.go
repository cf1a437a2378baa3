// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] wraps the timeout safety valve (select with a
// time.After fallback) so that a test waiting on a goroutine fails
// instead of hanging when the goroutine never reports. It is the only
// place in the test suite where a wall-clock timeout is used; retry
// timing itself runs on the fake clock in lib/clock.
//
// Helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
