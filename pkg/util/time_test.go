package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	got := FormatDuration(time.Hour + 2*time.Minute + 3500*time.Millisecond)
	if got != "01:02:03.500" {
		t.Errorf("expected 01:02:03.500, got %q", got)
	}
}

func TestHasExtension(t *testing.T) {
	exts := []string{".mp4", ".mov"}
	if !HasExtension("clips/A.MP4", exts) {
		t.Error("expected .MP4 to match case-insensitively")
	}
	if HasExtension("clips/notes.txt", exts) {
		t.Error("did not expect .txt to match")
	}
	if HasExtension("clips/mp4", exts) {
		t.Error("did not expect a bare name to match")
	}
}
