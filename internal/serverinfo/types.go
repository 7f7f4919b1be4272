// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package serverinfo probes and caches what a service reports about itself.
package serverinfo

import (
	"fmt"
	"strings"
)

// Info is the decoded answer of version() on the common endpoint.
type Info struct {
	ServerVersion   string `json:"server_version" yaml:"server_version"`
	Serie           string `json:"server_serie" yaml:"server_serie"`
	ProtocolVersion int64  `json:"protocol_version" yaml:"protocol_version"`
	// Major is the first element of server_version_info, e.g. 17.
	Major int64 `json:"major" yaml:"major"`
	// Release is the release level of server_version_info, e.g. "final".
	Release string `json:"release" yaml:"release"`
}

// FromMap builds Info from a version() result. Unknown or missing keys are
// left empty.
func FromMap(m map[string]any) Info {
	var info Info
	info.ServerVersion, _ = m["server_version"].(string)
	info.Serie, _ = m["server_serie"].(string)
	info.ProtocolVersion, _ = m["protocol_version"].(int64)
	if vi, ok := m["server_version_info"].([]any); ok {
		if len(vi) > 0 {
			switch major := vi[0].(type) {
			case int64:
				info.Major = major
			case string:
				// SaaS builds report e.g. "saas~17.1".
				_, _ = fmt.Sscanf(major[strings.LastIndex(major, "~")+1:], "%d", &info.Major)
			}
		}
		if len(vi) > 3 {
			info.Release, _ = vi[3].(string)
		}
	}
	return info
}

// String renders a one-line summary.
func (i Info) String() string {
	if i.ServerVersion == "" {
		return "unknown"
	}
	if i.ProtocolVersion > 0 {
		return fmt.Sprintf("%s (protocol %d)", i.ServerVersion, i.ProtocolVersion)
	}
	return i.ServerVersion
}
