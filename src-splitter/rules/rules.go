// The `rules` package loads per-course rule documents into an in-memory
// rule set. Two legacy document shapes (schema A and B) and the unified
// event_types shape are supported; everything is normalized into CourseRules
// at load time and read-only afterwards.
package rules

import (
	"regexp"
	"strconv"
	"time"

	"icalsplit/src-splitter/match"
)

// Built-in fallbacks. The loader and the rewrite engine share these; they
// are compiled once and never mutated.
var (
	DefaultSummaryRegex = regexp.MustCompile(`(?i)\bLecture\s*(\d+)\b`)
	LabRegex            = regexp.MustCompile(`(?i)\bLab\s+(\d+)\b`)
	ExerciseRegex       = regexp.MustCompile(`(?i)\bExercise\s+(\d+)\b`)
)

const (
	DefaultTitleTemplate       = "{kind} {n} - {title} - {course}"
	DefaultDescriptionTemplate = "{module}\nCanvas: {canvas}\n\n{old_desc}"
)

// LegacyItem is one numbered entry of the legacy lecture/lab/exercise
// buckets.
type LegacyItem struct {
	Title  string
	Module string
}

// CourseRules is the complete rule set for one course code.
type CourseRules struct {
	Course string
	Canvas string

	// rewriting only applies when "(COURSE)" literally appears in the
	// summary
	RequireCourseInSummary bool
	SummaryRegex           *regexp.Regexp

	TitleTemplate       string
	DescriptionTemplate string

	EventTypes []*EventType

	Lectures  map[int]LegacyItem
	Labs      map[int]LegacyItem
	Exercises map[int]LegacyItem
}

// EventType describes one kind of recurring event within a course
// ("lecture", "seminar", ...) and how to recognize it in a summary.
type EventType struct {
	Type        string
	DisplayName string
	Unnumbered  bool
	Patterns    []*regexp.Regexp
	Items       []*EventItem
}

// Item returns the item with the given occurrence number (0 = unnumbered),
// or nil.
func (et *EventType) Item(number int) *EventItem {
	for _, item := range et.Items {
		if item.Number == number {
			return item
		}
	}
	return nil
}

// HasStrategies reports whether at least one item carries match strategies.
// Event types without any strategy-bearing item never filter events.
func (et *EventType) HasStrategies() bool {
	for _, item := range et.Items {
		if len(item.Strategies) > 0 {
			return true
		}
	}
	return false
}

// EventItem is one concrete occurrence of an event type ("Lecture 3").
type EventItem struct {
	Number     int // 0 = unnumbered
	Metadata   []Field
	Strategies []match.Strategy // sorted by ascending priority at load
}

// Meta returns the string form of a metadata value, or "" when absent.
func (it *EventItem) Meta(key string) string {
	for _, field := range it.Metadata {
		if field.Key == key {
			return field.Value.String()
		}
	}
	return ""
}

// Matches reports whether the event satisfies the item's strategies. An
// item with no strategies matches unconditionally; otherwise the first
// matching strategy (in priority order) wins and no further strategies are
// evaluated.
func (it *EventItem) Matches(summary, description, location string, start *time.Time) bool {
	if len(it.Strategies) == 0 {
		return true
	}
	for _, strategy := range it.Strategies {
		if strategy.Matches(summary, description, location, start) {
			return true
		}
	}
	return false
}

// Field is one metadata entry. Order follows a deterministic (sorted) key
// order so runs are reproducible.
type Field struct {
	Key   string
	Value Value
}

type ValueKind int

const (
	StringValue ValueKind = iota
	NumberValue
	BoolValue
)

// Value is the closed variant a metadata field can hold.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

func (v Value) String() string {
	switch v.Kind {
	case NumberValue:
		if v.Num == float64(int64(v.Num)) {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}
