// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"strings"

	rpcerrors "odoolink/cli/internal/errors"

	"github.com/pterm/pterm"
)

// FormatCallError formats a failed remote call in a user-friendly way,
// choosing the explanation from the error kind.
func FormatCallError(err error) string {
	if err == nil {
		return ""
	}

	var builder strings.Builder
	kind := rpcerrors.KindOf(err)

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Call Failed"))
	builder.WriteString("\n\n")

	switch kind {
	case rpcerrors.NotAuthenticated:
		builder.WriteString("This profile has no authenticated session.\n")
	case rpcerrors.AuthenticationFailed:
		builder.WriteString("The server rejected the credentials.\n")
		builder.WriteString("Check:\n")
		builder.WriteString("  • The database name\n")
		builder.WriteString("  • The login and password (or API key)\n")
	case rpcerrors.RemoteFault:
		var f *rpcerrors.Fault
		if errors.As(err, &f) {
			builder.WriteString(fmt.Sprintf("The server answered with fault %d.\n", f.Code))
			if msg := firstLine(f.Message); msg != "" {
				builder.WriteString("  " + msg + "\n")
			}
		} else {
			builder.WriteString("The server answered with a fault.\n")
		}
	case rpcerrors.OperationRejected:
		builder.WriteString("The server did not apply the change.\n")
		builder.WriteString("The record may be locked, archived or already deleted.\n")
	case rpcerrors.TransportError:
		builder.WriteString("The server could not be reached or returned an HTTP error.\n")
		builder.WriteString("This could mean:\n")
		builder.WriteString("  • Wrong URL in the profile\n")
		builder.WriteString("  • The service is down or restarting\n")
		builder.WriteString("  • A proxy or firewall is blocking the connection\n")
	case rpcerrors.ProtocolError, rpcerrors.MalformedTimestamp, rpcerrors.MissingMemberName:
		builder.WriteString("The server response could not be understood.\n")
		builder.WriteString("Make sure the URL points at the XML-RPC service root.\n")
	case rpcerrors.TypeCoercion, rpcerrors.FieldConversion:
		builder.WriteString("The server returned data in an unexpected shape.\n")
	default:
		builder.WriteString("The call could not be completed.\n")
	}

	builder.WriteString("\n")
	if kind == rpcerrors.NotAuthenticated || kind == rpcerrors.AuthenticationFailed {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'odoolink login' and try again"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run again with --log-level debug for details"))
	}
	builder.WriteString("\n")

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return builder.String()
}

// PresentCallError displays a formatted call error.
func PresentCallError(err error) {
	fmt.Println()
	fmt.Println(FormatCallError(err))
	fmt.Println()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
