// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"testing"

	rpcerrors "odoolink/cli/internal/errors"
)

func TestPresentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "plain error with credentials",
			err:  errors.New("parse https://admin:pw@erp.example.com: bad port"),
			want: "odoolink login failed: parse https://*:*@erp.example.com: bad port",
		},
		{
			name: "typed error",
			err:  rpcerrors.New(rpcerrors.UnsupportedType, "record values must be a struct"),
			want: "odoolink login failed (unsupported_type): unsupported_type: record values must be a struct",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PresentError("odoolink login", tt.err); got != tt.want {
				t.Errorf("PresentError() = %q, want %q", got, tt.want)
			}
		})
	}
}
