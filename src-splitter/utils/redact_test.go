package utils_test

import (
	"strings"
	"testing"

	"icalsplit/src-splitter/utils"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// query strings are stripped entirely
		{"https://example.com/feed.ics?token=secret", "https://example.com/feed.ics"},
		// feed tokens are masked, the course stays readable
		{"IS1200--a1b2c3d4e5f60718.ics", "IS1200--***.ics"},
		// long hex runs and UUIDs are masked
		{"hash 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", "hash ***"},
		{"id 123e4567-e89b-42d3-a456-426614174000 done", "id *** done"},
		// short hex and ordinary text survive
		{"Lecture 3 in room 1537", "Lecture 3 in room 1537"},
	}
	for _, c := range cases {
		if got := utils.Redact(c.in); got != c.want {
			t.Errorf("Redact(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanupString(t *testing.T) {
	if got := utils.CleanupString("  lecture. "); got != "Lecture" {
		t.Error("unexpected cleanup result:", got)
	}
	if got := utils.CleanupString("guest seminar"); !strings.HasPrefix(got, "Guest") {
		t.Error("expected title casing, got", got)
	}
}
