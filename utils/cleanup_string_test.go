package utils

import "testing"

func TestCleanupString(t *testing.T) {
	tests := []struct {
		n string
		s string
		w string
	}{
		{n: "all_caps_name", s: "JANE DOE", w: "Jane Doe"},
		{n: "mixed_caps_untouched", s: "Ronald McDonald", w: "Ronald McDonald"},
		{n: "title_keeps_period", s: "Dr. Jane DOE", w: "Dr. Jane Doe"},
		{n: "lowercase_untouched", s: "jane doe", w: "jane doe"},
		{n: "surrounding_space", s: "  Jane   Doe ", w: "Jane Doe"},
		{n: "already_clean", s: "Jane Doe", w: "Jane Doe"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.n, func(t *testing.T) {
			if got := CleanupString(tt.s); got != tt.w {
				t.Fatalf("got %q, want %q", got, tt.w)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 37); got != "short" {
		t.Fatalf("got %q", got)
	}
	long := "a session title that goes on and on and on and on"
	if got := TruncateString(long, 10); got != "a session "+"..." {
		t.Fatalf("got %q", got)
	}
}
