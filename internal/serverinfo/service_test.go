package serverinfo

import (
	"context"
	"errors"
	"testing"
)

type fakeProber struct {
	url   string
	calls int
	reply map[string]any
	err   error
}

func (f *fakeProber) URL() string { return f.url }

func (f *fakeProber) Version(context.Context) (map[string]any, error) {
	f.calls++
	return f.reply, f.err
}

func TestFromMap(t *testing.T) {
	info := FromMap(map[string]any{
		"server_version":      "17.0",
		"server_serie":        "17.0",
		"protocol_version":    int64(1),
		"server_version_info": []any{int64(17), int64(0), int64(0), "final", int64(0), ""},
	})
	want := Info{ServerVersion: "17.0", Serie: "17.0", ProtocolVersion: 1, Major: 17, Release: "final"}
	if info != want {
		t.Fatalf("got %+v, want %+v", info, want)
	}
	if got := info.String(); got != "17.0 (protocol 1)" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestFromMapSaaS(t *testing.T) {
	info := FromMap(map[string]any{"server_version_info": []any{"saas~17.1", int64(1)}})
	if info.Major != 17 {
		t.Fatalf("expected major 17, got %d", info.Major)
	}
	if info.String() != "unknown" {
		t.Fatalf("expected unknown summary, got %q", info.String())
	}
}

func TestGetCaches(t *testing.T) {
	ClearCache()
	defer ClearCache()
	p := &fakeProber{url: "http://a", reply: map[string]any{"server_version": "16.0"}}

	for i := 0; i < 3; i++ {
		info, err := Get(context.Background(), p)
		if err != nil || info.ServerVersion != "16.0" {
			t.Fatalf("get: %+v %v", info, err)
		}
	}
	if p.calls != 1 {
		t.Fatalf("expected one probe, got %d", p.calls)
	}
}

func TestGetErrorNotCached(t *testing.T) {
	ClearCache()
	defer ClearCache()
	p := &fakeProber{url: "http://b", err: errors.New("down")}
	if _, err := Get(context.Background(), p); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := GetCached("http://b"); ok {
		t.Fatalf("errors must not be cached")
	}
}
