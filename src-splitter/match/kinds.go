package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// TimeStrategy matches on the event's start weekday and/or time-of-day
// range. The range end is exclusive. A legacy free-text timeslot can never
// match.
type TimeStrategy struct {
	priority int

	// legacy string-valued timeslot, kept so the spec round-trips but
	// unmatchable by contract
	raw bool

	dayChecked bool
	day        int // Monday=0 .. Sunday=6; -1 = unknown name, never equal

	rangeChecked bool
	rangeInvalid bool
	startMinute  int
	endMinute    int
}

func decodeTime(timeslot any, priority int) *TimeStrategy {
	s := &TimeStrategy{priority: priority}

	switch slot := timeslot.(type) {
	case nil:
		// no timeslot constraints at all: matches any event with a start time
	case string:
		s.raw = true
	case map[string]any:
		if day, ok := slot["day"]; ok {
			s.dayChecked = true
			switch d := day.(type) {
			case string:
				if n, ok := weekdayNames[strings.ToLower(d)]; ok {
					s.day = n
				} else {
					s.day = -1
				}
			case float64:
				s.day = int(d)
			default:
				s.day = -1
			}
		}

		startRaw, hasStart := slot["start_time"]
		endRaw, hasEnd := slot["end_time"]
		if hasStart && hasEnd {
			s.rangeChecked = true
			startMinute, okStart := parseClock(startRaw)
			endMinute, okEnd := parseClock(endRaw)
			if !okStart || !okEnd {
				s.rangeInvalid = true
			} else {
				s.startMinute = startMinute
				s.endMinute = endMinute
			}
		}
	default:
		// timeslot of any other shape is uninterpretable
		s.raw = true
	}
	return s
}

// Accepts "HH:MM" or "HHMM": the colon is stripped, the first two digits are
// the hour and the next two the minute.
func parseClock(raw any) (int, bool) {
	clock, ok := raw.(string)
	if !ok {
		return 0, false
	}
	clock = strings.ReplaceAll(clock, ":", "")
	if len(clock) < 4 {
		return 0, false
	}
	hour, err := strconv.Atoi(clock[:2])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(clock[2:4])
	if err != nil {
		return 0, false
	}
	return hour*60 + minute, true
}

func (s *TimeStrategy) Priority() int { return s.priority }

func (s *TimeStrategy) Matches(summary, description, location string, start *time.Time) bool {
	if start == nil || s.raw {
		return false
	}
	if s.dayChecked {
		// time.Weekday counts from Sunday, the rule schema from Monday
		weekday := (int(start.Weekday()) + 6) % 7
		if weekday != s.day {
			return false
		}
	}
	if s.rangeChecked {
		if s.rangeInvalid {
			return false
		}
		eventMinute := start.Hour()*60 + start.Minute()
		if !(s.startMinute <= eventMinute && eventMinute < s.endMinute) {
			return false
		}
	}
	return true
}

// TextStrategy matches a case-insensitive regex against the event's text:
// summary+description for the "description" kind, description only for the
// "url" kind.
type TextStrategy struct {
	priority       int
	re             *regexp.Regexp // nil = missing or invalid pattern
	includeSummary bool
}

func (s *TextStrategy) Priority() int { return s.priority }

func (s *TextStrategy) Matches(summary, description, location string, start *time.Time) bool {
	if s.re == nil {
		return false
	}
	text := description
	if s.includeSummary {
		text = summary + " " + description
	}
	return s.re.MatchString(text)
}

// LocationStrategy is a case-insensitive substring check on the event
// location.
type LocationStrategy struct {
	priority int
	needle   string
}

func (s *LocationStrategy) Priority() int { return s.priority }

func (s *LocationStrategy) Matches(summary, description, location string, start *time.Time) bool {
	if s.needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(location), strings.ToLower(s.needle))
}

// AllStrategy matches when every nested strategy matches, failing fast on
// the first miss. An empty child list is vacuously true; this asymmetry with
// AnyStrategy is part of the schema contract.
type AllStrategy struct {
	priority int
	children []Strategy
}

func (s *AllStrategy) Priority() int { return s.priority }

func (s *AllStrategy) Matches(summary, description, location string, start *time.Time) bool {
	for _, child := range s.children {
		if !child.Matches(summary, description, location, start) {
			return false
		}
	}
	return true
}

// AnyStrategy matches when at least one nested strategy matches, succeeding
// fast. An empty child list never matches.
type AnyStrategy struct {
	priority int
	children []Strategy
}

func (s *AnyStrategy) Priority() int { return s.priority }

func (s *AnyStrategy) Matches(summary, description, location string, start *time.Time) bool {
	for _, child := range s.children {
		if child.Matches(summary, description, location, start) {
			return true
		}
	}
	return false
}

// NeverStrategy stands in for an unknown strategy kind.
type NeverStrategy struct {
	priority int
}

func (s *NeverStrategy) Priority() int { return s.priority }

func (s *NeverStrategy) Matches(summary, description, location string, start *time.Time) bool {
	return false
}
