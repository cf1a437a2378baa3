// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction.
//
// Code that waits (the chunk retry backoff) or measures elapsed time
// (dump progress) takes a Clock instead of calling the time package.
// Real() is the standard library; Fake() is a deterministic clock that
// moves only when Advance is called.
//
// A goroutine waiting on After from a FakeClock has registered
// a pending timer. Tests call WaitForTimers before Advance so the
// timer exists before time moves past it:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { result <- fetcher.FetchChunk(ctx, offset) }()
//	fake.WaitForTimers(1)
//	fake.Advance(2 * time.Second)
package clock
