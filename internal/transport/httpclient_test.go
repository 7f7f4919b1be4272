// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSendPostsXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "text/xml" {
			t.Errorf("expected text/xml, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "<methodCall/>" {
			t.Errorf("unexpected body %q", body)
		}
		_, _ = w.Write([]byte("<methodResponse/>"))
	}))
	defer server.Close()

	tr := New(Options{})
	out, err := tr.Send(context.Background(), Request{URL: server.URL, Body: []byte("<methodCall/>"), Method: "version"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "<methodResponse/>" {
		t.Fatalf("unexpected response %q", out)
	}
}

func TestSendStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	m := metrics.New()
	tr := New(Options{Metrics: m})
	_, err := tr.Send(context.Background(), Request{URL: server.URL, Method: "create"})
	if !errors.Is(err, rpcerrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !rpcerrors.IsRetryable(err) {
		t.Fatalf("transport errors must be retryable")
	}
	if got := testutil.ToFloat64(m.Calls().WithLabelValues("create", metrics.OutcomeTransport)); got != 1 {
		t.Fatalf("expected 1 transport failure metric, got %v", got)
	}
}

func TestSendClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such endpoint"))
	}))
	defer server.Close()

	m := metrics.New()
	tr := New(Options{Retries: 3, RetryDelay: time.Millisecond, Metrics: m})
	_, err := tr.Send(context.Background(), Request{URL: server.URL, Method: "read", Idempotent: true})
	if !errors.Is(err, rpcerrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 attempt for a 4xx reply, got %d", got)
	}
	if got := testutil.ToFloat64(m.Retries().WithLabelValues("read")); got != 0 {
		t.Fatalf("expected no retries, got %v", got)
	}
}

func TestSendRetriesIdempotentOnly(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	m := metrics.New()
	tr := New(Options{Retries: 3, RetryDelay: time.Millisecond, Metrics: m})

	out, err := tr.Send(context.Background(), Request{URL: server.URL, Method: "read", Idempotent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "ok" || hits.Load() != 3 {
		t.Fatalf("expected success on third attempt, got %q after %d", out, hits.Load())
	}
	if got := testutil.ToFloat64(m.Retries().WithLabelValues("read")); got != 2 {
		t.Fatalf("expected 2 retries, got %v", got)
	}

	hits.Store(0)
	_, err = tr.Send(context.Background(), Request{URL: server.URL, Method: "write"})
	if err == nil {
		t.Fatalf("expected non-idempotent call to fail without retry")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one attempt, got %d", hits.Load())
	}
}

func TestSendRetriesExhausted(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := New(Options{Retries: 2, RetryDelay: time.Millisecond})
	_, err := tr.Send(context.Background(), Request{URL: server.URL, Method: "read", Idempotent: true})
	if !errors.Is(err, rpcerrors.ErrTransport) {
		t.Fatalf("expected last transport error, got %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestSendCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := New(Options{Retries: 5, RetryDelay: time.Millisecond})
	_, err := tr.Send(ctx, Request{URL: server.URL, Method: "read", Idempotent: true})
	if !errors.Is(err, rpcerrors.ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled transport error, got %v", err)
	}
}

func TestSendRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	tr := New(Options{RateLimit: 20, Burst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := tr.Send(context.Background(), Request{URL: server.URL, Method: "version"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Burst 1 at 20/s: the 2nd and 3rd calls wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("expected rate limiting, calls took %v", elapsed)
	}
}
