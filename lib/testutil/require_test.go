// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// recorder captures Fatalf instead of stopping the test.
type recorder struct {
	message string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestRequireReceiveClosed(t *testing.T) {
	ch := make(chan int)
	close(ch)
	r := &recorder{}
	RequireReceive(r, ch, time.Second, "waiting for %s", "result")
	if !strings.Contains(r.message, "closed") || !strings.Contains(r.message, "waiting for result") {
		t.Errorf("got message %q", r.message)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	ch := make(chan int)
	r := &recorder{}
	func() {
		defer func() { recover() }()
		RequireReceive(r, ch, time.Millisecond)
	}()
	if !strings.Contains(r.message, "timed out") || !strings.Contains(r.message, "(no message)") {
		t.Errorf("got message %q", r.message)
	}
}
