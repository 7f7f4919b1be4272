// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"
	"testing"

	rpcerrors "odoolink/cli/internal/errors"

	"github.com/pterm/pterm"
)

func TestFormatCallError(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "not authenticated",
			err:  rpcerrors.New(rpcerrors.NotAuthenticated, "session is unauthenticated"),
			want: []string{"no authenticated session", "odoolink login"},
		},
		{
			name: "fault",
			err:  fmt.Errorf("create: %w", &rpcerrors.Fault{Code: 2, Message: "Access Denied\nTraceback..."}),
			want: []string{"fault 2", "Access Denied"},
		},
		{
			name: "rejected write",
			err:  rpcerrors.New(rpcerrors.OperationRejected, "res.partner.write(5) returned false"),
			want: []string{"did not apply the change", "res.partner.write(5)"},
		},
		{
			name: "transport masks credentials",
			err:  rpcerrors.Wrap(rpcerrors.TransportError, "post https://u:p@erp.example.com", fmt.Errorf("connection refused")),
			want: []string{"could not be reached", "https://*:*@erp.example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatCallError(tt.err)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("FormatCallError() missing %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]pterm.LogLevel{
		"debug":   pterm.LogLevelDebug,
		"WARN":    pterm.LogLevelWarn,
		"off":     pterm.LogLevelDisabled,
		"":        pterm.LogLevelInfo,
		"bananas": pterm.LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
