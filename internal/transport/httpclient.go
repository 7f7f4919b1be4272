// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package transport moves XML-RPC documents over HTTP. It owns every
// time-related policy of a call: connect and read timeouts, retries of
// idempotent reads, and an optional client-side rate limit. The session above
// it never retries on its own.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/logging"
	"odoolink/cli/internal/metrics"
	"odoolink/cli/internal/xmlrpc"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/pterm/pterm"
	"golang.org/x/time/rate"
)

// Request is one XML-RPC document to post.
type Request struct {
	// URL is the full endpoint URL, e.g. https://erp.example.com/xmlrpc/2/object.
	URL string
	// Body is the methodCall document.
	Body []byte
	// Method names the remote operation for logs and metrics.
	Method string
	// Idempotent marks reads that may be retried on transport failure.
	Idempotent bool
	// Secret is masked out of any logged request body.
	Secret string
}

// Sender posts a request and returns the raw response document.
// Implementations may call a real HTTP endpoint or provide fakes for tests.
type Sender interface {
	Send(ctx context.Context, req Request) ([]byte, error)
}

// Options configures an HTTP transport. Zero values select defaults.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Retries is the number of extra attempts for idempotent requests.
	Retries    int
	RetryDelay time.Duration
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	UserAgent string
	Logger    *pterm.Logger
	Metrics   *metrics.Collectors
	Clock     clock.Clock
	// Client replaces the built-in HTTP client, mainly for tests.
	Client *http.Client
}

const (
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 60 * time.Second
	defaultRetryDelay     = 500 * time.Millisecond
	defaultUserAgent      = "odoolink-cli/1.0"
)

// HTTP implements Sender over net/http.
type HTTP struct {
	// client is the underlying HTTP client with configured timeouts
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
	logger  *pterm.Logger
	clock   clock.Clock
}

// New creates an HTTP transport.
func New(opts Options) *HTTP {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	h := &HTTP{opts: opts, logger: opts.Logger, clock: opts.Clock}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	if h.clock == nil {
		h.clock = clock.WallClock
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	h.client = opts.Client
	if h.client == nil {
		dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
		h.client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   opts.ConnectTimeout,
				ResponseHeaderTimeout: opts.ReadTimeout,
				MaxIdleConnsPerHost:   4,
			},
		}
	}
	return h
}

// Send posts req. Idempotent requests are retried up to Options.Retries
// times on transport failure with doubling delay; everything else is tried
// exactly once. HTTP 4xx replies are never retried. All failures are returned as transport_error.
func (h *HTTP) Send(ctx context.Context, req Request) ([]byte, error) {
	attempts := 1
	if req.Idempotent {
		attempts += h.opts.Retries
	}
	reqID := newRequestID()
	h.logger.Trace("xmlrpc request", h.logger.Args(
		"id", reqID,
		"method", req.Method,
		"url", logging.Mask(req.URL),
		"body", logging.MaskSecret(string(req.Body), req.Secret),
	))

	var out []byte
	start := h.clock.Now()
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var err error
			out, err = h.do(ctx, req)
			return err
		},
		IsFatalError: func(err error) bool {
			return ctx.Err() != nil || !rpcerrors.IsRetryable(err) || clientError(err)
		},
		NotifyFunc: func(err error, attempt int) {
			if attempt < attempts {
				h.opts.Metrics.ObserveRetry(req.Method)
				h.logger.Debug("retrying xmlrpc call", h.logger.Args(
					"id", reqID, "method", req.Method, "attempt", attempt, "error", logging.Mask(err.Error()),
				))
			}
		},
		Attempts:    attempts,
		Delay:       h.opts.RetryDelay,
		BackoffFunc: retry.DoubleDelay,
		Clock:       h.clock,
		Stop:        ctx.Done(),
	})
	elapsed := h.clock.Now().Sub(start)
	if err != nil {
		err = retry.LastError(err)
		if ctx.Err() != nil && !rpcerrors.IsRetryable(err) {
			err = rpcerrors.Wrap(rpcerrors.TransportError, "request cancelled", ctx.Err())
		}
		h.opts.Metrics.ObserveCall(req.Method, metrics.OutcomeTransport, elapsed)
		h.logger.Debug("xmlrpc call failed", h.logger.Args(
			"id", reqID, "method", req.Method, "elapsed", elapsed, "error", logging.Mask(err.Error()),
		))
		return nil, err
	}
	h.logger.Debug("xmlrpc call done", h.logger.Args("id", reqID, "method", req.Method, "elapsed", elapsed, "bytes", len(out)))
	h.logger.Trace("xmlrpc response", h.logger.Args("id", reqID, "body", string(out)))
	return out, nil
}

// do performs a single POST.
func (h *HTTP) do(ctx context.Context, req Request) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, rpcerrors.Wrap(rpcerrors.TransportError, "rate limit wait", err)
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, rpcerrors.Wrap(rpcerrors.TransportError, "build request", err)
	}
	httpReq.Header.Set("Content-Type", xmlrpc.ContentType)
	httpReq.Header.Set("Accept", xmlrpc.ContentType)
	httpReq.Header.Set("User-Agent", h.opts.UserAgent)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, rpcerrors.Wrap(rpcerrors.TransportError, "post "+logging.Mask(req.URL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rpcerrors.Wrap(rpcerrors.TransportError, "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return nil, rpcerrors.Wrap(rpcerrors.TransportError, "post "+logging.Mask(req.URL), &StatusError{Code: resp.StatusCode, Body: snippet})
	}
	return body, nil
}

// StatusError is a non-2xx HTTP reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return strings.TrimSpace(fmt.Sprintf("returned %d %s", e.Code, e.Body))
}

// clientError reports whether err is a 4xx reply. Repeating such a request
// cannot succeed.
func clientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}
