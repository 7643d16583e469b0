package channel

import (
	"strings"
	"testing"
)

func TestPreviewText(t *testing.T) {
	short := " hello "
	if got := PreviewText(short); got != "hello" {
		t.Fatalf("PreviewText short = %q, want %q", got, "hello")
	}

	long := strings.Repeat("a", messagePreviewLimit+20)
	got := PreviewText(long)
	if len(got) != messagePreviewLimit+3 {
		t.Fatalf("PreviewText long len = %d, want %d", len(got), messagePreviewLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("PreviewText long = %q, want ellipsis suffix", got)
	}
}
