package serverinfo

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
)

// Prober answers version(). *session.Session implements it.
type Prober interface {
	URL() string
	Version(ctx context.Context) (map[string]any, error)
}

// Get returns the info of the service behind p, using the RAM cache if
// available.
func Get(ctx context.Context, p Prober) (Info, error) {
	if cached, ok := GetCached(p.URL()); ok {
		return cached, nil
	}
	m, err := p.Version(ctx)
	if err != nil {
		return Info{}, err
	}
	info := FromMap(m)
	SetCached(p.URL(), info)
	return info, nil
}

// FormatUnreachable prints connection hints and wraps err.
func FormatUnreachable(url string, err error) error {
	pterm.Error.Println("Cannot connect to " + url)
	pterm.Println()
	pterm.Info.Println("Please check:")
	pterm.Println("  • The profile URL (odoolink login --url ...)")
	pterm.Println("  • That the server exposes /xmlrpc/2 (some proxies block it)")
	pterm.Println("  • Firewall settings that might block HTTPS requests")
	pterm.Println()

	return fmt.Errorf("server unreachable: %w", err)
}
