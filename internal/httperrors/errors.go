// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors explains transport failures to the user. It recognises
// the usual network problems and prints troubleshooting hints for the
// service host.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is a class of network failure.
type Category string

const (
	Timeout           Category = "timeout"
	DNS               Category = "dns"
	ConnectionRefused Category = "connection_refused"
	TLS               Category = "tls"
	ServerError       Category = "server_error"
	NotFound          Category = "not_found"
	Generic           Category = "generic"
)

var statusRe = regexp.MustCompile(`returned (\d{3})`)

// Classify sorts err into a Category.
func Classify(err error) Category {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(err.Error())

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return Timeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(lower, "connection refused") {
		return ConnectionRefused
	}
	if strings.Contains(lower, "tls") || strings.Contains(lower, "x509") ||
		strings.Contains(lower, "certificate") || strings.Contains(lower, "handshake") {
		return TLS
	}
	if m := statusRe.FindStringSubmatch(lower); m != nil {
		switch {
		case m[1] == "404":
			return NotFound
		case m[1][0] == '5':
			return ServerError
		}
	}
	return Generic
}

// FormatNetworkError prints a user-friendly explanation of err, which
// happened while doing context against serviceURL, and returns err wrapped.
func FormatNetworkError(err error, context, serviceURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(serviceURL)
	for _, line := range Describe(Classify(err), context, host) {
		pterm.Println(line)
	}
	if details := err.Error(); details != "" {
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
	}
	return fmt.Errorf("network error: %w", err)
}

// Describe returns the message lines for a category.
func Describe(c Category, context, host string) []string {
	switch c {
	case Timeout:
		return []string{
			fmt.Sprintf("⏱️  Connection timeout while %s", context),
			"",
			host + " took too long to respond. This could mean:",
			"  • Slow network connection",
			"  • Server is under heavy load (long reports or imports running)",
			"  • read_timeout in the [transport] config is too short",
			"",
		}
	case DNS:
		return []string{
			fmt.Sprintf("🌐 Cannot resolve server address while %s", context),
			"",
			"Unable to look up " + host + ". Please check:",
			"  • The profile URL is spelled correctly",
			"  • DNS settings are correct",
			"",
		}
	case ConnectionRefused:
		return []string{
			fmt.Sprintf("🚫 Connection refused while %s", context),
			"",
			host + " is not accepting connections. This could mean:",
			"  • The server is down or restarting",
			"  • Wrong port (the default server port is 8069)",
			"",
		}
	case TLS:
		return []string{
			fmt.Sprintf("🔒 Secure connection failed while %s", context),
			"",
			"Cannot establish a secure HTTPS connection to " + host + ". Try:",
			"  • Check your system date and time",
			"  • Verify the certificate or use http:// for local servers",
			"",
		}
	case NotFound:
		return []string{
			fmt.Sprintf("❓ Endpoint not found while %s", context),
			"",
			host + " does not serve /xmlrpc/2. Check that the URL points at the server root",
			"and that no proxy rewrites the path.",
			"",
		}
	case ServerError:
		return []string{
			fmt.Sprintf("⚠️  Server error while %s", context),
			"",
			host + " encountered an internal error. Check the server log,",
			"then try again.",
			"",
		}
	}
	return []string{
		fmt.Sprintf("❌ Cannot reach %s while %s", host, context),
		"",
		"Please check:",
		"  • Your network connection",
		"  • Whether " + host + " is accessible from your network",
		"",
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
