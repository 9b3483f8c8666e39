// The `ical` package is the calendar boundary: it parses the upstream ICS
// payload into a flat event sequence and builds per-course output feeds.
// Everything besides summary/description/location/start is treated as an
// opaque bag of properties and passed through unchanged.
package ical

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is one VEVENT with the attributes the rule engine can observe. The
// raw component is kept for lossless passthrough into the output feed.
type Event struct {
	Summary     string
	Description string
	Location    string
	Start       *time.Time

	raw *ics.VEvent
}

// Calendar is a parsed upstream calendar.
type Calendar struct {
	Events []Event

	src *ics.Calendar
}

// Parse unmarshals an ICS payload. Events carry a nil Start when DTSTART
// is absent or unparseable; the time match strategies treat that as
// "never matches".
func Parse(body []byte) (*Calendar, error) {
	src, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ical.Parse: %w", err)
	}

	cal := &Calendar{src: src}
	for _, ve := range src.Events() {
		event := Event{raw: ve}
		if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
			event.Summary = p.Value
		}
		if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
			event.Description = p.Value
		}
		if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
			event.Location = p.Value
		}
		if start, err := ve.GetStartAt(); err == nil {
			event.Start = &start
		}
		cal.Events = append(cal.Events, event)
	}
	return cal, nil
}

// calendar headers preserved when cloning into a per-course feed
var clonedHeaders = []string{
	"PRODID",
	"VERSION",
	"CALSCALE",
	"METHOD",
	"X-WR-CALDESC",
	"X-PUBLISHED-TTL",
}

// Feed is one per-course output calendar.
type Feed struct {
	cal *ics.Calendar
}

// NewFeed clones the upstream calendar headers into a fresh calendar named
// after the course.
func (c *Calendar) NewFeed(name string) *Feed {
	dst := &ics.Calendar{}
	for _, header := range clonedHeaders {
		for _, prop := range c.src.CalendarProperties {
			if strings.EqualFold(prop.IANAToken, header) {
				dst.CalendarProperties = append(dst.CalendarProperties, prop)
				break
			}
		}
	}
	dst.CalendarProperties = append(dst.CalendarProperties, ics.CalendarProperty{
		BaseProperty: ics.BaseProperty{
			IANAToken: "X-WR-CALNAME",
			Value:     name,
		},
	})
	return &Feed{cal: dst}
}

// Add copies an event into the feed with a replaced summary/description;
// every other property rides along untouched. A DESCRIPTION is always
// present in the output, some clients expect one.
func (f *Feed) Add(event Event, summary, description string) {
	ve := &ics.VEvent{}
	if event.raw != nil {
		for _, prop := range event.raw.Properties {
			if strings.EqualFold(prop.IANAToken, "SUMMARY") ||
				strings.EqualFold(prop.IANAToken, "DESCRIPTION") {
				continue
			}
			ve.Properties = append(ve.Properties, prop)
		}
	}
	ve.SetProperty(ics.ComponentPropertySummary, escapeText(summary))
	ve.SetProperty(ics.ComponentPropertyDescription, escapeText(description))
	f.cal.AddVEvent(ve)
}

// Serialize marshals the feed back into ICS wire format.
func (f *Feed) Serialize() string {
	return f.cal.Serialize()
}

// escapeText escapes TEXT property values per RFC 5545 §3.3.11.
func escapeText(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	).Replace(s)
}
