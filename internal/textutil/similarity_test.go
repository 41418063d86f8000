package textutil_test

import (
	"testing"

	"appdepot/internal/textutil"
)

func TestSequenceRatioBounds(t *testing.T) {
	if got := textutil.SequenceRatio("", ""); got != 1 {
		t.Fatalf("empty strings ratio = %v, want 1", got)
	}
	if got := textutil.SequenceRatio("abc", ""); got != 0 {
		t.Fatalf("one empty ratio = %v, want 0", got)
	}
	if got := textutil.SequenceRatio("photoshop", "photoshop"); got != 1 {
		t.Fatalf("identical ratio = %v, want 1", got)
	}
}

func TestSequenceRatioPartial(t *testing.T) {
	got := textutil.SequenceRatio("adobe photoshop", "adobe illustrator")
	if got <= 0.3 || got >= 1 {
		t.Fatalf("ratio = %v, want partial match in (0.3, 1)", got)
	}
	closer := textutil.SequenceRatio("adobe photoshop", "adobe photoshop cc")
	if closer <= got {
		t.Fatalf("closer title should score higher: %v <= %v", closer, got)
	}
}

func TestWordOverlap(t *testing.T) {
	if got := textutil.WordOverlap("adobe photoshop cc", "adobe photoshop"); got != 1 {
		t.Fatalf("overlap = %v, want 1", got)
	}
	if got := textutil.WordOverlap("vlc media player", "adobe photoshop"); got != 0 {
		t.Fatalf("overlap = %v, want 0", got)
	}
	if got := textutil.WordOverlap("adobe", "adobe photoshop"); got != 0.5 {
		t.Fatalf("overlap = %v, want 0.5", got)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Adobe Photoshop CC 2023 v24.0.1": "adobe photoshop cc",
		"Total Commander 10.51":           "total commander",
		"Notepad++":                       "notepad",
	}
	for input, want := range cases {
		if got := textutil.NormalizeName(input); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := textutil.SanitizeToken("/mnt/Library Root"); got != "mnt_library_root" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := textutil.SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken empty = %q", got)
	}
}
