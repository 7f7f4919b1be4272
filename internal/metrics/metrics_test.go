// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCall(t *testing.T) {
	c := New()
	c.ObserveCall("search_read", OutcomeOK, 20*time.Millisecond)
	c.ObserveCall("search_read", OutcomeOK, 30*time.Millisecond)
	c.ObserveCall("create", OutcomeFault, time.Millisecond)

	if got := testutil.ToFloat64(c.Calls().WithLabelValues("search_read", OutcomeOK)); got != 2 {
		t.Errorf("search_read ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Calls().WithLabelValues("create", OutcomeFault)); got != 1 {
		t.Errorf("create fault = %v, want 1", got)
	}
}

func TestNilCollectorsAreNoop(t *testing.T) {
	var c *Collectors
	c.ObserveCall("x", OutcomeOK, time.Second)
	c.ObserveRetry("x")
	c.ObserveAuthFailure()
	if err := c.WriteText(&bytes.Buffer{}); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
}

func TestWriteText(t *testing.T) {
	c := New()
	c.ObserveRetry("read")
	c.ObserveAuthFailure()
	var buf bytes.Buffer
	if err := c.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"odoolink_rpc_retries_total", "odoolink_authentication_failures_total 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText() missing %q in:\n%s", want, out)
		}
	}
}
