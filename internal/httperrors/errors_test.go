package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), Timeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "erp.invalid"}, DNS},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ConnectionRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), TLS},
		{"bad gateway", errors.New("transport_error: http://erp returned 502 Bad Gateway"), ServerError},
		{"not found", errors.New("transport_error: http://erp returned 404 not found"), NotFound},
		{"other", errors.New("boom"), Generic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDescribeMentionsHost(t *testing.T) {
	for _, c := range []Category{Timeout, DNS, ConnectionRefused, TLS, NotFound, ServerError, Generic} {
		lines := Describe(c, "authenticating", "erp.example.com")
		if !strings.Contains(strings.Join(lines, "\n"), "erp.example.com") {
			t.Errorf("%s: host missing from %v", c, lines)
		}
	}
}

func TestExtractHostFromURL(t *testing.T) {
	if got := ExtractHostFromURL("https://erp.example.com:8069/xmlrpc/2/common"); got != "erp.example.com:8069" {
		t.Fatalf("got %s", got)
	}
	if got := ExtractHostFromURL("::bad"); got != "server" {
		t.Fatalf("got %s", got)
	}
}
