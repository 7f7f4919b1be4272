// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	rpcerrors "odoolink/cli/internal/errors"
)

// PresentError formats a failed command for the terminal. The error kind is
// shown when known and credentials are masked out of the message.
func PresentError(command string, err error) string {
	if err == nil {
		return ""
	}
	msg := Mask(err.Error())
	if kind := rpcerrors.KindOf(err); kind != "" {
		return fmt.Sprintf("%s failed (%s): %s", command, kind, msg)
	}
	return fmt.Sprintf("%s failed: %s", command, msg)
}
