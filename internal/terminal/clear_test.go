package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLinesFor(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 1},
		{79, 80, 1},
		{80, 80, 1},
		{81, 80, 2},
		{200, 0, 3},
	}
	for _, tt := range tests {
		if got := LinesFor(tt.length, tt.width); got != tt.want {
			t.Errorf("LinesFor(%d, %d) = %d, want %d", tt.length, tt.width, got, tt.want)
		}
	}
}

func TestClearPreviousLines(t *testing.T) {
	var buf bytes.Buffer
	ClearPreviousLines(&buf, 10)
	out := buf.String()
	if got := strings.Count(out, "\x1b[2K"); got != 2 {
		t.Fatalf("expected 2 cleared lines, got %d in %q", got, out)
	}
	if got := strings.Count(out, "\x1b[1A"); got != 1 {
		t.Fatalf("expected 1 cursor move, got %d", got)
	}
}
