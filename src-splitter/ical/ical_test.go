package ical_test

import (
	"strings"
	"testing"
	"time"

	"icalsplit/src-splitter/ical"
)

var sample = []byte(strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//KTH//Personal schedule//EN",
	"X-WR-CALDESC:Personal schedule",
	"BEGIN:VEVENT",
	"UID:ev-1",
	"DTSTAMP:20250901T000000Z",
	"DTSTART:20250902T101500Z",
	"DTEND:20250902T120000Z",
	"SUMMARY:Lecture 3 (IS1200)",
	"DESCRIPTION:Sal D1",
	"LOCATION:D1",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:ev-2",
	"DTSTAMP:20250901T000000Z",
	"SUMMARY:No start time",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n"))

func TestParse(t *testing.T) {
	cal, err := ical.Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	if len(cal.Events) != 2 {
		t.Fatal("expected 2 events, got", len(cal.Events))
	}

	first := cal.Events[0]
	if first.Summary != "Lecture 3 (IS1200)" || first.Description != "Sal D1" || first.Location != "D1" {
		t.Error("unexpected first event:", first.Summary, first.Description, first.Location)
	}
	if first.Start == nil {
		t.Fatal("expected a start time")
	}
	want := time.Date(2025, 9, 2, 10, 15, 0, 0, time.UTC)
	if !first.Start.Equal(want) {
		t.Error("unexpected start time:", first.Start)
	}

	if cal.Events[1].Start != nil {
		t.Error("expected a nil start when DTSTART is absent")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := ical.Parse([]byte("this is not a calendar")); err == nil {
		t.Error("expected garbage input to fail")
	}
}

func TestFeedRoundTrip(t *testing.T) {
	cal, err := ical.Parse(sample)
	if err != nil {
		t.Fatal(err)
	}

	feed := cal.NewFeed("IS1200")
	feed.Add(cal.Events[0], "Lecture 3 - Assembly - IS1200", "Module 2\nSal D1")
	out := feed.Serialize()

	if !strings.Contains(out, "X-WR-CALNAME:IS1200") {
		t.Error("expected the feed name header")
	}
	// upstream headers ride along, unrelated ones don't leak
	if !strings.Contains(out, "PRODID:-//KTH//Personal schedule//EN") {
		t.Error("expected PRODID to be cloned from the upstream calendar")
	}
	if !strings.Contains(out, "X-WR-CALDESC:Personal schedule") {
		t.Error("expected X-WR-CALDESC to be cloned")
	}

	if !strings.Contains(out, "SUMMARY:Lecture 3 - Assembly - IS1200") {
		t.Error("expected the replaced summary")
	}
	// newlines are escaped per RFC 5545
	if !strings.Contains(out, `DESCRIPTION:Module 2\nSal D1`) {
		t.Error("expected an escaped description, got:\n" + out)
	}
	// everything else passes through
	if !strings.Contains(out, "LOCATION:D1") || !strings.Contains(out, "UID:ev-1") {
		t.Error("expected untouched properties to pass through")
	}
	// the output parses again
	if _, err := ical.Parse([]byte(out)); err != nil {
		t.Error("expected the serialized feed to parse:", err)
	}
}
